package config

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
)

// source reads lower-cased environment keys out of koanf with defaults.
type source struct {
	k *koanf.Koanf
}

func (s source) str(key, defaultValue string) string {
	if s.k == nil {
		return defaultValue
	}
	value := strings.TrimSpace(s.k.String(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func (s source) integer(key string, defaultValue int) int {
	if s.k == nil || !s.k.Exists(key) {
		return defaultValue
	}
	value := s.k.Int(key)
	if value <= 0 {
		return defaultValue
	}
	return value
}

func (s source) seconds(key string, defaultValue time.Duration) time.Duration {
	secs := s.integer(key, 0)
	if secs == 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}

// nonNegativeSeconds accepts 0. Missing, unparsable or negative values give the default.
func (s source) nonNegativeSeconds(key string, defaultValue time.Duration) time.Duration {
	if s.k == nil || !s.k.Exists(key) {
		return defaultValue
	}
	secs, err := strconv.Atoi(strings.TrimSpace(s.k.String(key)))
	if err != nil || secs < 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}

func (s source) boolean(key string, defaultValue bool) bool {
	if s.k == nil || !s.k.Exists(key) {
		return defaultValue
	}
	switch strings.ToLower(s.k.String(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func sortedStrings(values []string) []string {
	sort.Strings(values)
	return values
}
