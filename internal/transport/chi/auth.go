package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/kailas-cloud/seqsearch/internal/hyperlink"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

const (
	bearerPrefix = "Bearer "
	// tokenParam carries the key on retrieval links, which browsers follow without headers.
	tokenParam = "token"
	challenge  = `Bearer realm="seqsearch"`
)

// keySet holds digests of the accepted API keys.
type keySet [][sha256.Size]byte

func newKeySet(apiKeys []string) keySet {
	keys := make(keySet, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, sha256.Sum256([]byte(k)))
		}
	}
	return keys
}

// contains compares against every key in constant time.
func (s keySet) contains(token string) bool {
	sum := sha256.Sum256([]byte(token))
	found := 0
	for _, k := range s {
		found |= subtle.ConstantTimeCompare(sum[:], k[:])
	}
	return found == 1
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// GET requests to the entries endpoint may pass the key as ?token= instead.
// If apiKeys is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := newKeySet(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, problem := credential(r)
			if problem == "" && !keys.contains(token) {
				problem = "invalid api key"
			}
			if problem != "" {
				w.Header().Set("WWW-Authenticate", challenge)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, problem)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// credential extracts the presented key, or describes why none was usable.
func credential(r *http.Request) (token, problem string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		if r.Method == http.MethodGet && r.URL.Path == hyperlink.EntriesPath {
			if t := r.URL.Query().Get(tokenParam); t != "" {
				return t, ""
			}
		}
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", "authorization header must use Bearer scheme"
	}
	return strings.TrimSpace(auth[len(bearerPrefix):]), ""
}
