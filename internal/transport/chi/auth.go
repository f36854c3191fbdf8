package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facilitydex/internal/logger"
)

const bearerPrefix = "Bearer "

// BearerAuthMiddleware guards the index-mutating routes (dataset import and
// reset). Search and listings are mounted outside it and stay public.
// With no non-empty key configured it passes everything through.
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
			token, reason := bearerToken(r.Header.Get("Authorization"))
			if reason == "" && !knownKey(digests, token) {
				reason = "invalid api key"
			}
			if reason != "" {
				logger.FromContext(r.Context()).Warn("rejected index write",
					zap.String("path", r.URL.Path),
					zap.String("reason", reason),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="facilitydex"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token, or explains why the header is unusable.
func bearerToken(header string) (token, reason string) {
	switch {
	case header == "":
		return "", "missing authorization header"
	case !strings.HasPrefix(header, bearerPrefix):
		return "", "authorization header must use Bearer scheme"
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), ""
}

// knownKey compares digests in constant time and checks every key.
func knownKey(digests [][sha256.Size]byte, token string) bool {
	sum := sha256.Sum256([]byte(token))
	found := 0
	for i := range digests {
		found |= subtle.ConstantTimeCompare(sum[:], digests[i][:])
	}
	return found == 1
}
