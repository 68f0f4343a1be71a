package chat

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"chatrelay/internal/app/store"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/randx"
)

// Resolver decides the canonical display name assigned to a joining
// connection, resolving collisions deterministically.
type Resolver struct {
	store    store.Store
	registry *Registry
	logger   zerolog.Logger
}

// NewResolver creates a Resolver backed by the given datastore and registry.
func NewResolver(st store.Store, registry *Registry) *Resolver {
	return &Resolver{
		store:    st,
		registry: registry,
		logger:   logx.Logger().With().Str("component", "resolver").Logger(),
	}
}

// Resolve claims requestedName for a new connection and returns the backing
// user record.
//
// A name currently bound to a live connection counts as taken: the upsert is
// skipped and a fallback name (requestedName plus a short random suffix) is
// registered as a brand-new identity. The same fallback handles an upsert
// losing a unique-constraint race. There is no retry loop: if the fallback
// name is also rejected, the collision surfaces as an error. Callers must
// serialize Resolve with the subsequent Registry.Bind, otherwise two
// concurrent joins could both claim the requested name.
func (rs *Resolver) Resolve(ctx context.Context, requestedName string) (store.ChatUser, *errs.CustomError) {
	if !rs.registry.UsernameActive(requestedName) {
		user, err := rs.store.UpsertUser(ctx, requestedName)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, store.ErrUsernameTaken) {
			rs.logger.Error().Err(err).Str("username", requestedName).Msg("Identity upsert failed")
			return store.ChatUser{}, errs.NewError(errs.ErrDatastore)
		}
		rs.logger.Info().Str("username", requestedName).Msg("Identity upsert lost uniqueness race, falling back")
	}

	suffix, err := randx.NameSuffix()
	if err != nil {
		rs.logger.Error().Err(err).Msg("Failed to generate fallback name suffix")
		return store.ChatUser{}, errs.NewError(errs.ErrUnknown)
	}

	fallbackName := requestedName + "_" + suffix

	user, err := rs.store.CreateUser(ctx, fallbackName)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			rs.logger.Warn().Str("username", fallbackName).Msg("Fallback name also taken")
			return store.ChatUser{}, errs.NewError(errs.ErrUsernameTaken)
		}
		rs.logger.Error().Err(err).Str("username", fallbackName).Msg("Fallback identity insert failed")
		return store.ChatUser{}, errs.NewError(errs.ErrDatastore)
	}

	rs.logger.Info().
		Str("requested", requestedName).
		Str("assigned", user.Username).
		Msg("Identity collision resolved with fallback name")

	return user, nil
}
