package service

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

// hostnamePattern matches dot-separated DNS labels; plain "localhost" and
// dotted IPv4 literals match as well
var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?)*$`)

// aliasPattern restricts custom aliases to letters, digits, hyphens, underscores
var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// reservedAliases are codes that would collide with the HTTP surface
var reservedAliases = map[string]bool{
	"api":      true,
	"health":   true,
	"shorten":  true,
	"stats":    true,
	"urls":     true,
	"qrcode":   true,
	"auth":     true,
	"login":    true,
	"register": true,
	"admin":    true,
	"www":      true,
}

// validateURL checks the URL-shape rule: http/https scheme and a valid
// hostname, IP, or localhost, with an optional port and path
func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrInvalidURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}

	host := parsed.Hostname()
	if host == "" {
		return ErrInvalidURL
	}
	if net.ParseIP(host) == nil && !hostnamePattern.MatchString(host) {
		return ErrInvalidURL
	}

	return nil
}

// validateAlias checks a user-supplied custom short code
func validateAlias(alias string) error {
	if len(alias) < 3 || len(alias) > 20 {
		return ErrInvalidAlias
	}
	if !aliasPattern.MatchString(alias) {
		return ErrInvalidAlias
	}
	if reservedAliases[strings.ToLower(alias)] {
		return ErrInvalidAlias
	}
	return nil
}
