package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/server/auth"
	"github.com/felixge/httpsnoop"
)

func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info(r.Context(), "handled", "method", r.Method, "url", r.URL.String(),
			"status", m.Code, "duration", m.Duration, "bytes", m.Written)
	})
}

// cors allows any origin and answers preflight requests itself.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+common.AccessTokenHeaderName)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken reads "Authorization: Bearer <jwt>", falling back to the
// access_token header the gRPC transport uses.
func bearerToken(r *http.Request) string {
	if v := r.Header.Get(common.AuthorizationHeaderName); v != "" {
		if token, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.Header.Get(common.AccessTokenHeaderName)
}

func (s *HTTPServer) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeError(w, r, http.StatusUnauthorized, "missing token")
			return
		}

		clientID, err := auth.GetClientIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.logger.Warn(r.Context(), "rejected token", "err", err)
			s.writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClientID(r.Context(), clientID)))
	})
}
