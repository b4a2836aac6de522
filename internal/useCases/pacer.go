package useCases

import (
	"context"
	"time"
)

// Sleeper ждёт d или отмену ctx
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Pacer обрабатывает элементы строго по одному с паузой между ними.
// Пауза нужна, чтобы не ловить антиспам Telegram, поэтому параллельности нет.
type Pacer struct {
	delay time.Duration
	sleep Sleeper
}

func NewPacer(delay time.Duration, sleep Sleeper) *Pacer {
	if sleep == nil {
		sleep = sleepCtx
	}
	return &Pacer{delay: delay, sleep: sleep}
}

// Each calls fn for every item in order and waits between items (N-1 waits).
// It stops early only when ctx is cancelled.
func (p *Pacer) Each(ctx context.Context, items []string, fn func(i int, item string)) error {
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		fn(i, item)

		if i == len(items)-1 {
			break
		}
		if err := p.sleep(ctx, p.delay); err != nil {
			return err
		}
	}
	return nil
}
