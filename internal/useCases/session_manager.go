package useCases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
	"github.com/larriantoniy/tg_report_bot/internal/ports"
)

type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAwaitingCode
	StateAwaitingPassword
	StateAuthenticated
	// StateDegraded: авторизованы, но сессию не удалось сохранить.
	// При закрытии делаем sign out, чтобы не оставлять живую сессию на сервере.
	StateDegraded
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateAwaitingPassword:
		return "awaiting_password"
	case StateAuthenticated:
		return "authenticated"
	case StateDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

type SessionManager struct {
	log       *slog.Logger
	connector ports.Connector
	prompter  ports.Prompter
	base      ports.ConnectConfig

	mu    sync.Mutex
	state SessionState
}

// NewSessionManager. base задаёт устройство, прокси и verbosity;
// app id/hash и путь к сессии приходят в Connect.
func NewSessionManager(log *slog.Logger, connector ports.Connector, prompter ports.Prompter, base ports.ConnectConfig) *SessionManager {
	return &SessionManager{
		log:       log,
		connector: connector,
		prompter:  prompter,
		base:      base,
		state:     StateUnauthenticated,
	}
}

func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *SessionManager) setState(s SessionState) {
	m.mu.Lock()
	prev := m.state
	m.state = s
	m.mu.Unlock()
	m.log.Debug("session state", "from", prev, "to", s)
}

// Connect returns an authenticated handle. Any rejection during sign-in is
// returned as is; there is no retry loop.
func (m *SessionManager) Connect(ctx context.Context, creds domain.Credentials, sessionPath string) (*SessionHandle, error) {
	cfg := m.base
	cfg.AppID = creds.AppID
	cfg.AppHash = creds.AppHash
	cfg.SessionPath = sessionPath

	m.log.Info("connecting to Telegram", "session", sessionPath)
	cli, err := m.connector.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	m.log.Info("connected")

	authorized, err := cli.IsAuthorized(ctx)
	if err != nil {
		m.disconnect(cli)
		return nil, fmt.Errorf("check authorization: %w", err)
	}
	if authorized {
		m.log.Debug("the client is authorized")
		m.setState(StateAuthenticated)
		return newSessionHandle(m.log, cli, false), nil
	}

	if err := m.signIn(ctx, cli, creds); err != nil {
		m.disconnect(cli)
		m.setState(StateUnauthenticated)
		return nil, err
	}
	m.setState(StateAuthenticated)
	m.log.Info("signed in")

	signOut := false
	if err := cli.SaveSession(sessionPath); err != nil {
		m.log.Error("failed to save the session, will sign out when done", "session", sessionPath, "error", err)
		m.setState(StateDegraded)
		signOut = true
	}

	return newSessionHandle(m.log, cli, signOut), nil
}

func (m *SessionManager) signIn(ctx context.Context, cli ports.ProtocolClient, creds domain.Credentials) error {
	m.log.Info("signing in")

	phone := strings.TrimSpace(creds.Phone)
	if phone == "" {
		p, err := m.prompter.Prompt("Enter your phone number (international format): ")
		if err != nil {
			return fmt.Errorf("read phone: %w", err)
		}
		phone = strings.TrimSpace(p)
	}

	token, err := cli.RequestLoginCode(ctx, phone)
	if err != nil {
		return fmt.Errorf("request login code: %w", err)
	}
	m.setState(StateAwaitingCode)

	code, err := m.prompter.Prompt("Enter the code you received: ")
	if err != nil {
		return fmt.Errorf("read code: %w", err)
	}

	err = cli.SignIn(ctx, token, strings.TrimSpace(code))
	if err == nil {
		return nil
	}

	var pwdErr *ports.PasswordRequiredError
	if !errors.As(err, &pwdErr) {
		return fmt.Errorf("sign in: %w", err)
	}
	m.setState(StateAwaitingPassword)

	pwdToken := pwdErr.Token
	if pwdToken == nil {
		pwdToken = &ports.PasswordToken{}
	}
	msg := "Enter the password: "
	if pwdToken.Hint != "" {
		msg = fmt.Sprintf("Enter the password (hint %s): ", pwdToken.Hint)
	}
	password, err := m.prompter.Password(msg)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	if err := cli.CheckPassword(ctx, pwdToken, strings.TrimSpace(password)); err != nil {
		return fmt.Errorf("check password: %w", err)
	}
	return nil
}

func (m *SessionManager) disconnect(cli ports.ProtocolClient) {
	if err := cli.Disconnect(); err != nil {
		m.log.Warn("disconnect failed", "error", err)
	}
}

// SessionHandle владеет авторизованным клиентом до Close.
type SessionHandle struct {
	log     *slog.Logger
	client  ports.ProtocolClient
	signOut bool

	once     sync.Once
	closeErr error
}

func newSessionHandle(log *slog.Logger, client ports.ProtocolClient, signOut bool) *SessionHandle {
	return &SessionHandle{log: log, client: client, signOut: signOut}
}

// Channels exposes only the channel operations of the client.
func (h *SessionHandle) Channels() ports.ChannelClient {
	return h.client
}

// WillSignOut reports whether Close will terminate the remote session.
func (h *SessionHandle) WillSignOut() bool {
	return h.signOut
}

// Close releases the session exactly once: sign out + disconnect when the
// session could not be saved, plain disconnect otherwise. Meant to be deferred.
func (h *SessionHandle) Close(ctx context.Context) error {
	h.once.Do(func() {
		if h.signOut {
			h.log.Info("signing out: session was not saved")
			h.closeErr = h.client.SignOutAndDisconnect(ctx)
		} else {
			h.closeErr = h.client.Disconnect()
		}
		if h.closeErr != nil {
			h.log.Error("session teardown failed", "sign_out", h.signOut, "error", h.closeErr)
		}
	})
	return h.closeErr
}
