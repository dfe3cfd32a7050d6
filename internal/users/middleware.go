package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/salesdesk/salesdesk/internal/shared"
)

// ActorLoader resolves the session's user id into a full actor and stores it
// in the request context. Requests without a valid session pass through with
// no actor; handlers decide whether that is acceptable.
type ActorLoader struct {
	Repo   RepositoryPort
	Logger *slog.Logger
}

// Handler wraps next with actor resolution.
func (l ActorLoader) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		raw := strings.TrimSpace(sess.User())
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if l.Logger != nil {
				l.Logger.Error("parse session user id", slog.String("value", raw))
			}
			next.ServeHTTP(w, r)
			return
		}
		actor, err := l.Repo.FindByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) && l.Logger != nil {
				l.Logger.Error("load session actor", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}
