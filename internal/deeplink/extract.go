// Package deeplink turns OAuth callback URLs into sessions. The provider
// normally appends tokens to the redirect URL fragment; some flows put them in
// the query string instead, and PKCE flows deliver a one-time code that only
// the provider can exchange.
package deeplink

import (
	"net/url"
	"strings"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ExtractTokens parses access/refresh tokens out of a callback URL. The
// fragment wins over the query string. Percent-decoding failures for a single
// key fall back to that key's raw value instead of failing the whole parse.
// Returns nil when no access_token key is present.
func ExtractTokens(raw string) *TokenPair {
	params := parseParams(raw)

	access, ok := params["access_token"]
	if !ok || access == "" {
		return nil
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: params["refresh_token"],
	}
}

func parseParams(raw string) map[string]string {
	var part string
	if _, frag, ok := strings.Cut(raw, "#"); ok {
		part = frag
	} else if _, query, ok := strings.Cut(raw, "?"); ok {
		part = query
	}

	params := map[string]string{}
	if part == "" {
		return params
	}
	for _, pair := range strings.Split(part, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		params[unescapeOrRaw(k)] = unescapeOrRaw(v)
	}
	return params
}

func unescapeOrRaw(s string) string {
	if dec, err := url.QueryUnescape(s); err == nil {
		return dec
	}
	return s
}

// AuthCode returns a PKCE authorization code if the callback carries one.
func AuthCode(raw string) string {
	return parseParams(raw)["code"]
}
