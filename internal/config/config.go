package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/jrsteele09/go-session-keeper/internal/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	ProviderConfig
	SessionConfig
	SecurityConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetRootPathPrefix() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Provider
	Session
	Security
}

// New loads configuration from the process environment.
func New() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("[config New] load env vars: %w", err)
	}
	return newFromKoanf(k), nil
}

func newFromKoanf(k *koanf.Koanf) mainConfig {
	src := source{k: k}
	return mainConfig{
		EnvVars:  EnvVars{src: src},
		Cors:     Cors{src: src},
		Provider: Provider{src: src},
		Session:  Session{src: src},
		Security: Security{src: src},
	}
}

// Validate fails when the identity provider cannot be addressed or a trusted
// proxy entry does not parse.
func (c mainConfig) Validate() error {
	required := map[string]string{
		keycloakServerURLVar: c.GetProviderURL(),
		keycloakRealmVar:     c.GetRealm(),
		keycloakClientIDVar:  c.GetClientID(),
	}
	var missing []string
	for key, value := range required {
		if value == "" {
			missing = append(missing, strings.ToUpper(key))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errors.ErrConfigRequired, strings.Join(sortedStrings(missing), ", "))
	}
	if _, invalid := parseTrustedProxies(c.Security.src.str(trustedProxiesVar, "")); len(invalid) > 0 {
		return fmt.Errorf("%w: %s: %s", errors.ErrConfigInvalid, strings.ToUpper(trustedProxiesVar), strings.Join(invalid, ", "))
	}
	return nil
}
