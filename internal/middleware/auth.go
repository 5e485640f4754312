package middleware

import (
	"context"
	"net/http"
	"strings"

	"froid-storefront/internal/model"

	"github.com/rs/zerolog"
)

// TokenVerifier turns a bearer token into the actor it identifies.
type TokenVerifier interface {
	Actor(token string) (model.Actor, error)
}

type actorKey struct{}

// Authenticate attaches the acting user to the request. Requests without
// a bearer token proceed as guests; a token that fails verification is
// rejected so an expired customer session is never silently downgraded.
func Authenticate(verifier TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), model.Guest())))
				return
			}

			actor, err := verifier.Actor(token)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected access token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Your session has expired, please sign in again")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor stores actor on ctx.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored on ctx, or a guest.
func ActorFrom(ctx context.Context) model.Actor {
	if actor, ok := ctx.Value(actorKey{}).(model.Actor); ok {
		return actor
	}
	return model.Guest()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
