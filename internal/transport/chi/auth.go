package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

const (
	codeUnauthorized = "unauthorized"
	bearerPrefix     = "Bearer "
)

// exemptPaths are routes that bypass authentication: probes, scraping and the greeting.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
	"/api/":    {},
}

// BearerAuthMiddleware guards the API with static Bearer keys.
// No non-empty keys disables authentication. CORS preflights are never challenged.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	var digests [][sha256.Size]byte
	for _, k := range apiKeys {
		if k != "" {
			digests = append(digests, sha256.Sum256([]byte(k)))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(digests) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := bearerToken(r)
			if msg == "" && !knownKey(digests, token) {
				msg = "invalid api key"
			}
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="govlens"`)
				writeError(w, http.StatusUnauthorized, codeUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token, or returns the reason the header is unusable.
func bearerToken(r *http.Request) (token, problem string) {
	auth := r.Header.Get("Authorization")
	switch {
	case auth == "":
		return "", "missing authorization header"
	case !strings.HasPrefix(auth, bearerPrefix):
		return "", "authorization header must use Bearer scheme"
	}
	return auth[len(bearerPrefix):], ""
}

// knownKey compares digests in constant time and visits every key, so timing
// reveals neither a key's prefix nor its position.
func knownKey(digests [][sha256.Size]byte, token string) bool {
	sum := sha256.Sum256([]byte(token))
	found := 0
	for i := range digests {
		found |= subtle.ConstantTimeCompare(digests[i][:], sum[:])
	}
	return found == 1
}
