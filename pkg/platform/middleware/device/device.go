package device

import (
	"net/http"
	"strings"

	"riskgate/pkg/requestcontext"
)

const (
	HeaderName = "X-Device-ID"
	CookieName = "__Secure-Device-ID"
)

// Middleware records the device identifier the client presents, from the
// X-Device-ID header or the device cookie. Requests without one pass through
// untouched.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderName))
		if id == "" {
			if c, err := r.Cookie(CookieName); err == nil {
				id = strings.TrimSpace(c.Value)
			}
		}
		if id != "" {
			r = r.WithContext(requestcontext.WithDeviceID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
