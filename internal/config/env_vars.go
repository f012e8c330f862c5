package config

import (
	"strings"
)

const (
	portEnvVar        = "port"
	appNameVar        = "app_name"
	envVar            = "env"
	logLevelVar       = "log_level"
	rootPathPrefixVar = "root_path_prefix"
)

type EnvVars struct {
	src source
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.src.str(portEnvVar, "8052")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.src.str(appNameVar, "Session Keeper")
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(e.src.str(envVar, "DEV"))
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.src.str(logLevelVar, "info"))
}

// GetRootPathPrefix returns the path the app is mounted on, without a trailing slash.
// The root mount is returned as "/".
func (e EnvVars) GetRootPathPrefix() string {
	prefix := strings.TrimRight(e.src.str(rootPathPrefixVar, "/"), "/")
	if prefix == "" {
		return "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
