package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/utils/logging"
)

// ActorHeader carries the acting user in no-auth mode
const ActorHeader = "X-Actor-ID"

// actorMiddleware resolves the acting user of the request. With a secret, an
// HS256 bearer token is required and its subject is the actor. In no-auth
// mode the X-Actor-ID header is trusted as is.
func actorMiddleware(secret []byte, noAuth bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secret) == 0 && noAuth {
				ctx := model.ContextWithActor(r.Context(), r.Header.Get(ActorHeader))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			actorID, err := parseActorToken(raw, secret)
			if err != nil {
				logging.From(r.Context()).Warn("rejected bearer token", "error", err.Error())
				http.Error(w, "Invalid authentication token", http.StatusUnauthorized)
				return
			}

			ctx := model.ContextWithActor(r.Context(), actorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseActorToken(raw string, secret []byte) (string, error) {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, secret),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(10*time.Second),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse or verify JWT token")
	}
	if token.Subject() == "" {
		return "", goerr.New("sub claim not found in token")
	}
	return token.Subject(), nil
}
