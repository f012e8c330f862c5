package token

import (
	"maps"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"github.com/jrsteele09/go-session-keeper/internal/utils"
)

// Claims is the decoded, unverified payload of an access token.
type Claims map[string]any

// Decode extracts the claims of a JWT without checking its signature.
//
// The claims are only fit for display. Anything that makes authorization decisions
// from them must verify the token against the provider's published keys first.
func Decode(rawToken string) (Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.Wrapf(errors.ErrTokenDecode, "empty token")
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Join(errors.ErrTokenDecode, err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrapf(errors.ErrTokenDecode, "unexpected claims type %T", parsed.Claims)
	}
	return Claims(mapClaims), nil
}

// Clone returns a shallow copy so callers cannot mutate stored claims.
func (c Claims) Clone() Claims {
	if c == nil {
		return Claims{}
	}
	return maps.Clone(c)
}

// Identity derives the username (preferred_username, then email) and the
// display name (name, then username).
func Identity(c Claims) (username, displayName string) {
	username = utils.FirstNonEmpty(utils.ToString(c["preferred_username"]), utils.ToString(c["email"]))
	displayName = utils.FirstNonEmpty(utils.ToString(c["name"]), username)
	return username, displayName
}

// Subject returns the sub claim.
func Subject(c Claims) string {
	return utils.ToString(c["sub"])
}

// RealmRoles returns Keycloak's realm_access.roles. Roles are extracted for
// display only; nothing in this module enforces them.
func RealmRoles(c Claims) []string {
	realmAccess, ok := c["realm_access"].(map[string]any)
	if !ok {
		return nil
	}
	roles, ok := realmAccess["roles"].([]any)
	if !ok {
		return nil
	}
	return utils.ToStringSlice(roles)
}
