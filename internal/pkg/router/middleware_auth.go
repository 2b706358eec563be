package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/jwt"
)

func isPublic(r *http.Request, publicEndpoints map[string]map[string]struct{}) bool {
	s, ok := publicEndpoints[r.Method]
	if !ok {
		return false
	}
	_, skip := s[routePattern(r)]
	return skip
}

func middlewareAuthentication(verifier jwt.JWT, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r, publicEndpoints) {
				next.ServeHTTP(w, r)
				return
			}

			p := strings.Fields(r.Header.Get("Authorization"))
			if len(p) != 2 || !strings.EqualFold(p[0], "Bearer") {
				writeJSON(w, errorResponse{Message: "Authentication required", Code: goerror.CodeUnauthorized.String()}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(p[1])
			if err != nil {
				writeJSON(w, errorResponse{Message: "Invalid or expired token", Code: goerror.CodeUnauthorized.String()}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}

func middlewareAuthorization(enforcer *casbin.Enforcer, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		if enforcer == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r, publicEndpoints) {
				next.ServeHTTP(w, r)
				return
			}

			clm := jwt.GetAuth(r.Context())
			if clm == nil {
				writeJSON(w, errorResponse{Message: "Authentication required", Code: goerror.CodeUnauthorized.String()}, http.StatusUnauthorized)
				return
			}

			ok, err := enforcer.Enforce(clm.ClientID, routePattern(r), r.Method)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to enforce policy", "client_id", clm.ClientID, "error", err)
				writeJSON(w, errorResponse{Message: "Unknown Error", Code: goerror.CodeInternal.String()}, http.StatusInternalServerError)
				return
			}
			if !ok {
				writeJSON(w, errorResponse{Message: "Client is not allowed on this endpoint", Code: goerror.CodeForbidden.String()}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
