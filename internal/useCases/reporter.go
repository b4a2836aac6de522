package useCases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
	"github.com/larriantoniy/tg_report_bot/internal/ports"
)

// historyWindow жалуемся всегда на самое свежее сообщение
const historyWindow = 1

// ErrReportRejected платформа ответила false на жалобу
var ErrReportRejected = errors.New("report was not accepted")

type Reporter struct {
	log      *slog.Logger
	client   ports.ChannelClient
	resolver *Resolver
	picker   *MessagePicker
	printer  *Printer
	sleep    Sleeper
}

func NewReporter(
	log *slog.Logger,
	client ports.ChannelClient,
	picker *MessagePicker,
	printer *Printer,
	sleep Sleeper,
) *Reporter {
	return &Reporter{
		log:      log,
		client:   client,
		resolver: NewResolver(client),
		picker:   picker,
		printer:  printer,
		sleep:    sleep,
	}
}

// Run reports the latest message of every channel in input order.
// Per-item failures end up in the outcome; only ctx cancellation stops the run.
func (r *Reporter) Run(ctx context.Context, identifiers []string, override string, delay time.Duration) ([]domain.ReportOutcome, error) {
	outcomes := make([]domain.ReportOutcome, 0, len(identifiers))
	if len(identifiers) == 0 {
		return outcomes, nil
	}

	r.log.Info("report run started", "channels", len(identifiers), "delay", delay)

	pacer := NewPacer(delay, r.sleep)
	err := pacer.Each(ctx, identifiers, func(i int, raw string) {
		message := r.picker.Pick(override)
		outcome := domain.ReportOutcome{Identifier: raw, Message: message}

		if err := r.reportOne(ctx, raw, message); err != nil {
			r.log.Error("report failed", "channel", raw, "index", i, "error", err)
			outcome.Err = err
		} else {
			outcome.Success = true
			r.log.Info("reported", "channel", raw, "message", message)
			r.printer.Reported(raw, message)
		}
		outcomes = append(outcomes, outcome)
	})

	succeeded := 0
	for _, o := range outcomes {
		if o.Success {
			succeeded++
		}
	}
	r.log.Info("report run finished", "processed", len(outcomes), "succeeded", succeeded)
	r.printer.Summary(len(outcomes), succeeded)

	return outcomes, err
}

func (r *Reporter) reportOne(ctx context.Context, raw, message string) error {
	ch, err := r.resolver.Resolve(ctx, raw)
	if err != nil {
		return err
	}
	r.log.Debug("channel resolved", "channel", raw, "channel_id", ch.ID)

	history, err := r.client.GetHistory(ctx, ch, historyWindow)
	if err != nil {
		return fmt.Errorf("get history: %w", err)
	}
	if len(history) == 0 {
		return domain.ErrEmptyHistory
	}
	latest := history[0]

	ok, err := r.client.Report(ctx, ch, []int64{latest.ID}, domain.ReportReasonViolence, message)
	if err != nil {
		return fmt.Errorf("report message %d: %w", latest.ID, err)
	}
	if !ok {
		return ErrReportRejected
	}
	return nil
}
