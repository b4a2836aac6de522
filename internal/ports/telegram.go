package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
)

// Connector открывает соединение с Telegram и загружает (или создаёт) сессию.
type Connector interface {
	Connect(ctx context.Context, cfg ConnectConfig) (ProtocolClient, error)
}

type ConnectConfig struct {
	AppID       int32
	AppHash     string
	SessionPath string
	Device      DeviceConfig
	Proxy       *ProxyConfig
	// Verbosity уровень -v, адаптер маппит его на свой лог
	Verbosity int
}

// LoginToken выдаётся после запроса кода и нужен для SignIn.
type LoginToken struct {
	Phone       string
	CodeTimeout time.Duration
}

// PasswordToken выдаётся, когда аккаунт защищён облачным паролем.
type PasswordToken struct {
	Hint string
}

// PasswordRequiredError returned by SignIn when the account has 2FA enabled.
type PasswordRequiredError struct {
	Token *PasswordToken
}

func (e *PasswordRequiredError) Error() string {
	if e.Token != nil && e.Token.Hint != "" {
		return fmt.Sprintf("password required (hint %q)", e.Token.Hint)
	}
	return "password required"
}

// ProtocolClient is the part of the protocol client the core needs:
// authentication, session persistence, teardown and channel operations.
type ProtocolClient interface {
	IsAuthorized(ctx context.Context) (bool, error)
	RequestLoginCode(ctx context.Context, phone string) (*LoginToken, error)
	// SignIn возвращает *PasswordRequiredError, если нужен второй фактор
	SignIn(ctx context.Context, token *LoginToken, code string) error
	CheckPassword(ctx context.Context, token *PasswordToken, password string) error

	SaveSession(path string) error
	SignOutAndDisconnect(ctx context.Context) error
	Disconnect() error

	ChannelClient
}

// ChannelClient операции над каналами, доступные пайплайнам.
type ChannelClient interface {
	// ResolveUsername возвращает кандидатов, пустой срез: ничего не найдено
	ResolveUsername(ctx context.Context, username string) ([]domain.Entity, error)
	GetHistory(ctx context.Context, ch domain.ChannelReference, limit int32) ([]domain.Message, error)
	Report(ctx context.Context, ch domain.ChannelReference, messageIDs []int64, reason domain.ReportReason, text string) (bool, error)
	JoinChannel(ctx context.Context, ch domain.ChannelReference) error
	LeaveChannel(ctx context.Context, ch domain.ChannelReference) error
}
