package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

const (
	rateLimitEnabledVar = "ratelimit_enabled"
	loginRequestsVar    = "ratelimit_login_requests"
	loginWindowVar      = "ratelimit_login_window_sec"
	loginBurstVar       = "ratelimit_login_burst"
	trustedProxiesVar   = "trusted_proxies"
)

type SecurityConfig interface {
	GetEnableRateLimiting() bool
	GetLoginRateLimit() (requests int, window time.Duration, burst int)
	GetTrustedProxies() TrustedProxies
}

type Security struct {
	src source
}

var _ SecurityConfig = Security{}

// TrustedProxies are the peers whose forwarding headers name the client.
type TrustedProxies []netip.Prefix

func (t TrustedProxies) Contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range t {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func (t TrustedProxies) String() string {
	proxies := make([]string, 0, len(t))
	for _, prefix := range t {
		proxies = append(proxies, prefix.String())
	}
	return strings.Join(proxies, ", ")
}

func (s Security) GetEnableRateLimiting() bool {
	return s.src.boolean(rateLimitEnabledVar, true)
}

// GetLoginRateLimit defaults to 5 attempts per minute per IP and username.
func (s Security) GetLoginRateLimit() (int, time.Duration, int) {
	return s.src.integer(loginRequestsVar, 5),
		s.src.seconds(loginWindowVar, time.Minute),
		s.src.integer(loginBurstVar, 5)
}

// GetTrustedProxies parses TRUSTED_PROXIES, a comma separated list of IPs and
// CIDRs. Invalid entries are skipped here and reported by Validate.
func (s Security) GetTrustedProxies() TrustedProxies {
	proxies, _ := parseTrustedProxies(s.src.str(trustedProxiesVar, ""))
	return proxies
}

func parseTrustedProxies(value string) (TrustedProxies, []string) {
	var proxies TrustedProxies
	var invalid []string
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		prefix, err := parseProxy(entry)
		if err != nil {
			invalid = append(invalid, entry)
			continue
		}
		proxies = append(proxies, prefix)
	}
	return proxies, invalid
}

func parseProxy(entry string) (netip.Prefix, error) {
	if strings.Contains(entry, "/") {
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("parse proxy CIDR: %w", err)
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("parse proxy IP: %w", err)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}
