// Package auth implements bearer-token authentication for the HTTP API.
//
// Scopes gate what a token may do:
//
//	read             catalog, journal and event access
//	trigger:<LABEL>  submit one specific fault command
//	trigger:*        submit any fault command
//	*                everything
//
// Any trigger scope implies read.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	// ScopeRead grants read-only access to the catalog, journal and events.
	ScopeRead = "read"
	// ScopeTriggerAll grants submission of any fault command.
	ScopeTriggerAll = "trigger:*"
	// ScopeAll grants everything.
	ScopeAll = "*"

	triggerPrefix = "trigger:"
)

// TokenConfig is a named bearer token with a set of scopes. The name is what
// lands in the intent journal; the token itself never does.
type TokenConfig struct {
	Name   string
	Token  string
	Scopes []string
}

// Principal is an authenticated caller.
type Principal struct {
	Name   string
	Scopes map[string]struct{}
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

func ExtractBearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", errors.New("missing Authorization header")
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", errors.New("invalid Authorization header format")
	}

	token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func constantTimeEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Authenticate matches a presented bearer token against configured tokens.
// Unnamed tokens get a stable fingerprint so journal rows still attribute.
func Authenticate(presented string, tokens []TokenConfig) (Principal, bool) {
	for _, t := range tokens {
		if !constantTimeEqual(presented, t.Token) {
			continue
		}
		name := strings.TrimSpace(t.Name)
		if name == "" {
			name = Fingerprint(t.Token)
		}
		return Principal{
			Name:   name,
			Scopes: normalizeScopes(t.Scopes),
		}, true
	}
	return Principal{}, false
}

// Fingerprint derives a short non-reversible identifier from a token.
func Fingerprint(token string) string {
	sum := blake3.Sum256([]byte(token))
	return "token-" + hex.EncodeToString(sum[:4])
}

func normalizeScopes(scopes []string) map[string]struct{} {
	out := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out[s] = struct{}{}
	}

	// Trigger implies read.
	for s := range out {
		if s == ScopeAll || strings.HasPrefix(s, triggerPrefix) {
			out[ScopeRead] = struct{}{}
			break
		}
	}
	return out
}

func HasAnyScope(p Principal, required ...string) bool {
	if len(required) == 0 {
		return true
	}
	if _, ok := p.Scopes[ScopeAll]; ok {
		return true
	}
	for _, s := range required {
		if _, ok := p.Scopes[s]; ok {
			return true
		}
	}
	return false
}

// CanTrigger reports whether the principal may submit the given fault label.
func CanTrigger(p Principal, label string) bool {
	return HasAnyScope(p, ScopeTriggerAll, triggerPrefix+label)
}

// TriggerLabel splits a trigger:<LABEL> scope into its label. The wildcard
// and non-trigger scopes report false.
func TriggerLabel(scope string) (string, bool) {
	if !strings.HasPrefix(scope, triggerPrefix) {
		return "", false
	}
	label := strings.TrimPrefix(scope, triggerPrefix)
	if label == "" || label == "*" {
		return "", false
	}
	return label, true
}
