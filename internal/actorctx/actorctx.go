package actorctx

import (
	"context"

	"github.com/staffhub-io/staffhub/internal/domain/user"
)

type ctxKey struct{}

// WithActor propagates the authenticated user on a plain context so code
// below the gin layer (repos, logging) can attribute work to an actor.
func WithActor(ctx context.Context, actor user.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

func ActorFrom(ctx context.Context) (user.User, bool) {
	v, ok := ctx.Value(ctxKey{}).(user.User)

	return v, ok && v.ID != ""
}
