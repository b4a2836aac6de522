package useCases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
	"github.com/larriantoniy/tg_report_bot/internal/ports"
)

// Membership подписывает аккаунт на каналы или отписывает от них.
type Membership struct {
	log      *slog.Logger
	client   ports.ChannelClient
	resolver *Resolver
	printer  *Printer
	sleep    Sleeper
}

func NewMembership(log *slog.Logger, client ports.ChannelClient, printer *Printer, sleep Sleeper) *Membership {
	return &Membership{
		log:      log,
		client:   client,
		resolver: NewResolver(client),
		printer:  printer,
		sleep:    sleep,
	}
}

func (m *Membership) Run(ctx context.Context, identifiers []string, action domain.MembershipAction, delay time.Duration) ([]domain.MembershipOutcome, error) {
	outcomes := make([]domain.MembershipOutcome, 0, len(identifiers))
	if len(identifiers) == 0 {
		return outcomes, nil
	}

	pacer := NewPacer(delay, m.sleep)
	err := pacer.Each(ctx, identifiers, func(i int, raw string) {
		outcome := domain.MembershipOutcome{Identifier: raw, Action: action}

		if err := m.apply(ctx, raw, action); err != nil {
			m.log.Error("membership change failed", "channel", raw, "action", action, "index", i, "error", err)
			outcome.Err = err
		} else {
			outcome.Success = true
			m.log.Info("membership changed", "channel", raw, "action", action)
			m.printer.Membership(raw, action.String())
		}
		outcomes = append(outcomes, outcome)
	})

	succeeded := 0
	for _, o := range outcomes {
		if o.Success {
			succeeded++
		}
	}
	m.printer.Summary(len(outcomes), succeeded)

	return outcomes, err
}

func (m *Membership) apply(ctx context.Context, raw string, action domain.MembershipAction) error {
	ch, err := m.resolver.Resolve(ctx, raw)
	if err != nil {
		return err
	}

	switch action {
	case domain.ActionJoin:
		return m.client.JoinChannel(ctx, ch)
	case domain.ActionLeave:
		return m.client.LeaveChannel(ctx, ch)
	default:
		return fmt.Errorf("unknown membership action %d", action)
	}
}
