package config

import (
	"strings"
	"time"
)

const (
	keycloakServerURLVar    = "keycloak_server_url"
	keycloakRealmVar        = "keycloak_realm_name"
	keycloakClientIDVar     = "keycloak_client_id"
	keycloakClientSecretVar = "keycloak_client_secret_key"
	keycloakTimeoutVar      = "keycloak_timeout_sec"
	keycloakScopesVar       = "keycloak_scopes"
)

type ProviderConfig interface {
	GetProviderURL() string
	GetRealm() string
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetProviderTimeout() time.Duration
	GetScopes() []string
}

type Provider struct {
	src source
}

var _ ProviderConfig = Provider{}

func (p Provider) GetProviderURL() string {
	return strings.TrimRight(p.src.str(keycloakServerURLVar, ""), "/")
}

func (p Provider) GetRealm() string {
	return p.src.str(keycloakRealmVar, "")
}

// GetIssuerURL is the realm issuer used for OIDC discovery.
func (p Provider) GetIssuerURL() string {
	return p.GetProviderURL() + "/realms/" + p.GetRealm()
}

func (p Provider) GetClientID() string {
	return p.src.str(keycloakClientIDVar, "")
}

func (p Provider) GetClientSecret() string {
	return p.src.str(keycloakClientSecretVar, "")
}

// GetProviderTimeout bounds every call made to the identity provider.
func (p Provider) GetProviderTimeout() time.Duration {
	return p.src.seconds(keycloakTimeoutVar, 10*time.Second)
}

func (p Provider) GetScopes() []string {
	return strings.Fields(p.src.str(keycloakScopesVar, "openid profile email"))
}
