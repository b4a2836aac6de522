package ports

import "context"

// SessionLock гарантирует, что сессией пользуется один процесс
type SessionLock interface {
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}
