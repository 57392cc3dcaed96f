package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mkuznetsov/todo-api/pkg/respond"
)

type subjectKey struct{}

// Middleware достает bearer-токен, проверяет его и кладет subject в контекст
func Middleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthenticated(w, r, "missing bearer token")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthenticated(w, r, "authorization header must be: Bearer <token>")
				return
			}

			subject, err := verifier.Subject(token)
			if err != nil {
				switch {
				case errors.Is(err, ErrExpiredToken):
					unauthenticated(w, r, "token has expired")
				default:
					unauthenticated(w, r, "could not validate credentials")
				}
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthenticated(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respond.Error(w, r, http.StatusUnauthorized, "unauthenticated", detail)
}

// SubjectFrom возвращает идентификатор, положенный Middleware
func SubjectFrom(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey{}).(string)
	return subject
}
