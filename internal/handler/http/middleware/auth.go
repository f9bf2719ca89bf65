package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// Actor is the authenticated caller taken from the access token.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       string
}

// ActorFrom returns the caller stored by AuthRequired.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// WithActor stores a on ctx. Handler tests use it to skip token parsing.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != "access" {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}
			userID, _ := claims["user_id"].(string)
			if userID == "" {
				response.Unauthorized(w, "Token carries no user")
				return
			}

			actor := Actor{UserID: userID}
			actor.EmployeeID, _ = claims["employee_id"].(string)
			actor.Role, _ = claims["role"].(string)
			if actor.EmployeeID == "" {
				actor.EmployeeID = userID
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}
