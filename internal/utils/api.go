package utils

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// ExtractIDFromParams returns the {id} path value of the request.
func ExtractIDFromParams(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}

// ParseIntParam reads a positive integer query parameter. A missing or empty
// value yields defaultValue; a malformed or non-positive one records a field
// error.
func ParseIntParam(params url.Values, key string, defaultValue int, fieldErrors map[string][]string) (int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	raw := strings.TrimSpace(params.Get(key))
	if raw == "" {
		return defaultValue, fieldErrors
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], "must be an integer")
		return defaultValue, fieldErrors
	}
	if value < 1 {
		fieldErrors[key] = append(fieldErrors[key], "must be at least 1")
		return defaultValue, fieldErrors
	}

	return value, fieldErrors
}

// ParseTrustedProxies parses proxy addresses given as single IPs or CIDR
// prefixes.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy prefix %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy address %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// ClientIP returns the address a request is rate limited under. That is the
// remote host, unless the remote host is a trusted proxy: then the
// X-Forwarded-For chain is walked from the right and the first hop that is
// not itself a trusted proxy wins.
func ClientIP(r *http.Request, trusted []netip.Prefix) string {
	remote := remoteHost(r.RemoteAddr)
	addr, err := netip.ParseAddr(remote)
	if err != nil || !isTrusted(addr, trusted) {
		return remote
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		hopAddr, err := netip.ParseAddr(hop)
		if err != nil {
			// the chain is garbled past this point
			return remote
		}
		if !isTrusted(hopAddr, trusted) {
			return hopAddr.Unmap().String()
		}
		remote = hopAddr.Unmap().String()
	}
	return remote
}

func remoteHost(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return strings.Trim(remoteAddr, "[]")
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
