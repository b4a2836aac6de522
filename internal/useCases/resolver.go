package useCases

import (
	"context"
	"fmt"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
	"github.com/larriantoniy/tg_report_bot/internal/ports"
)

type usernameResolver interface {
	ResolveUsername(ctx context.Context, username string) ([]domain.Entity, error)
}

// Resolver превращает строку оператора в ChannelReference
type Resolver struct {
	client usernameResolver
}

func NewResolver(client ports.ChannelClient) *Resolver {
	return &Resolver{client: client}
}

func (r *Resolver) Resolve(ctx context.Context, raw string) (domain.ChannelReference, error) {
	id := domain.ParseIdentifier(raw)
	switch id.Kind {
	case domain.IdentifierHandle:
		return r.ResolveHandle(ctx, id.Value)
	case domain.IdentifierInviteHash:
		return r.ResolveHash(ctx, id.Value)
	default:
		return domain.ChannelReference{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedIdentifier, id)
	}
}

func (r *Resolver) ResolveHandle(ctx context.Context, handle string) (domain.ChannelReference, error) {
	candidates, err := r.client.ResolveUsername(ctx, handle)
	if err != nil {
		return domain.ChannelReference{}, fmt.Errorf("%w: @%s: %w", domain.ErrResolution, handle, err)
	}
	if len(candidates) == 0 {
		return domain.ChannelReference{}, fmt.Errorf("%w: @%s: no such entity", domain.ErrResolution, handle)
	}

	entity := candidates[0]
	if !entity.Kind.IsChannel() {
		return domain.ChannelReference{}, fmt.Errorf("%w: @%s is a %s", domain.ErrNotAChannel, handle, entity.Kind)
	}

	return domain.ChannelReference{ID: entity.ID, AccessHash: entity.AccessHash}, nil
}

// ResolveHash is not implemented: resolving invite hashes would require
// joining or previewing the chat, which is not part of reporting.
func (r *Resolver) ResolveHash(_ context.Context, hash string) (domain.ChannelReference, error) {
	return domain.ChannelReference{}, fmt.Errorf("%w: invite hash %q", domain.ErrUnsupportedIdentifier, hash)
}
