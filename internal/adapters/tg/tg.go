package tg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zelenin/go-tdlib/client"
	"golang.org/x/time/rate"

	"github.com/larriantoniy/tg_report_bot/internal/adapters/netcheck"
	"github.com/larriantoniy/tg_report_bot/internal/adapters/sessionfile"
	"github.com/larriantoniy/tg_report_bot/internal/domain"
	"github.com/larriantoniy/tg_report_bot/internal/ports"
)

const (
	// сколько ждём закрытия TDLib после LogOut / Close
	closeTimeout = 15 * time.Second

	// не чаще запроса в 300мс, иначе быстро ловим FLOOD_WAIT
	requestInterval = 300 * time.Millisecond
	requestBurst    = 3
)

var (
	ErrNotAuthorized = errors.New("tdlib: client is not authorized")
	ErrNotRegistered = errors.New("tdlib: phone number is not registered, sign up in an official app first")
)

// Connector реализует ports.Connector поверх TDLib.
type Connector struct {
	log *slog.Logger
}

func NewConnector(log *slog.Logger) *Connector {
	return &Connector{log: log}
}

type authResult struct {
	cli *client.Client
	err error
}

// TelegramClient реализует ports.ProtocolClient.
// До авторизации client == nil, а текущее состояние лежит в pending.
type TelegramClient struct {
	client  *client.Client
	logger  *slog.Logger
	selfID  int64
	limiter *rate.Limiter

	auth     *stepAuthorizer
	done     chan authResult
	finished bool
	pending  client.AuthorizationState

	session *domain.Session
}

func (c *Connector) Connect(ctx context.Context, cfg ports.ConnectConfig) (ports.ProtocolClient, error) {
	sess, err := sessionfile.LoadOrCreate(cfg.SessionPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(sess.DatabaseDir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := os.MkdirAll(sess.FilesDir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir files dir: %w", err)
	}

	if _, err := client.SetLogVerbosityLevel(&client.SetLogVerbosityLevelRequest{
		NewVerbosityLevel: tdlibVerbosity(cfg.Verbosity),
	}); err != nil {
		c.log.Error("TDLib SetLogVerbosityLevel", "error", err)
	}

	netcheck.New(c.log).Run(cfg.Proxy)

	auth := newStepAuthorizer(tdParams(cfg, sess))
	t := &TelegramClient{
		logger:  c.log,
		auth:    auth,
		done:    make(chan authResult, 1),
		session: sess,
		limiter: rate.NewLimiter(rate.Every(requestInterval), requestBurst),
	}

	opts := proxyOptions(cfg.Proxy)
	go func() {
		cli, err := client.NewClient(auth, opts...)
		t.done <- authResult{cli: cli, err: err}
	}()

	st, err := t.await(ctx)
	if err != nil {
		c.log.Error("TDLib NewClient error", "session", cfg.SessionPath, "error", err)
		return nil, err
	}
	t.pending = st

	c.log.Debug("TDLib client started", "session", cfg.SessionPath, "authorized", t.client != nil)
	return t, nil
}

func tdParams(cfg ports.ConnectConfig, sess *domain.Session) *client.SetTdlibParametersRequest {
	d := cfg.Device
	if d.LangCode == "" {
		d.LangCode = "en"
	}
	if d.SystemVersion == "" {
		d.SystemVersion = "Windows 10"
	}
	if d.ApplicationVersion == "" {
		d.ApplicationVersion = "2.0"
	}
	if d.DeviceModel == "" {
		d.DeviceModel = "Desktop"
	}

	return &client.SetTdlibParametersRequest{
		UseTestDc:           false,
		DatabaseDirectory:   sess.DatabaseDir,
		FilesDirectory:      sess.FilesDir,
		UseFileDatabase:     true,
		UseChatInfoDatabase: true,
		UseMessageDatabase:  true,
		UseSecretChats:      false,
		ApiId:               cfg.AppID,
		ApiHash:             cfg.AppHash,
		SystemLanguageCode:  d.LangCode,
		DeviceModel:         d.DeviceModel,
		SystemVersion:       d.SystemVersion,
		ApplicationVersion:  d.ApplicationVersion,
	}
}

func proxyOptions(p *ports.ProxyConfig) []client.Option {
	if p == nil || !p.Enabled {
		return nil
	}
	return []client.Option{client.WithProxy(&client.AddProxyRequest{
		Server: p.Server,
		Port:   p.Port,
		Enable: true,
		Type: &client.ProxyTypeSocks5{
			Username: p.Username,
			Password: p.Password,
		},
	})}
}

// tdlibVerbosity: -v..-vvv оставляют TDLib на ошибках, дальше растём до INFO.
func tdlibVerbosity(v int) int32 {
	switch {
	case v <= 3:
		return 1
	case v == 4:
		return 2
	default:
		return 3
	}
}

// await ждёт следующее состояние авторизации, требующее ввода,
// либо завершения NewClient.
func (t *TelegramClient) await(ctx context.Context) (client.AuthorizationState, error) {
	states := t.auth.states
	for {
		select {
		case st, ok := <-states:
			if ok {
				return st, nil
			}
			// authorizer закрыт, результат придёт в done
			states = nil
		case res := <-t.done:
			return nil, t.finish(res)
		case <-ctx.Done():
			t.auth.Abort()
			return nil, ctx.Err()
		}
	}
}

func (t *TelegramClient) finish(res authResult) error {
	t.finished = true
	if res.err != nil {
		return fmt.Errorf("tdlib authorization: %w", res.err)
	}
	t.client = res.cli
	t.pending = nil

	me, err := res.cli.GetMe()
	if err != nil {
		t.logger.Warn("GetMe failed", "error", err)
		return nil
	}
	t.selfID = me.Id
	t.session.Phone = me.PhoneNumber

	t.logger.Info("TDLib client initialized and authorized", "self_id", me.Id)
	return nil
}

func (t *TelegramClient) answer(ctx context.Context, v string) error {
	select {
	case t.auth.answers <- v:
		return nil
	case res := <-t.done:
		if err := t.finish(res); err != nil {
			return err
		}
		return errors.New("tdlib: authorization finished unexpectedly")
	case <-ctx.Done():
		t.auth.Abort()
		return ctx.Err()
	}
}

func unexpectedState(st client.AuthorizationState) error {
	if st == nil {
		return errors.New("tdlib: no pending authorization step")
	}
	return fmt.Errorf("tdlib: unexpected authorization state %s", st.AuthorizationStateType())
}

func (t *TelegramClient) IsAuthorized(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return t.client != nil, nil
}

func (t *TelegramClient) RequestLoginCode(ctx context.Context, phone string) (*ports.LoginToken, error) {
	if _, ok := t.pending.(*client.AuthorizationStateWaitPhoneNumber); !ok {
		return nil, unexpectedState(t.pending)
	}
	if err := t.answer(ctx, phone); err != nil {
		return nil, err
	}

	st, err := t.await(ctx)
	if err != nil {
		return nil, fmt.Errorf("request login code: %w", err)
	}
	t.pending = st

	token := &ports.LoginToken{Phone: phone}
	if st == nil {
		// TDLib пустил без кода
		return token, nil
	}
	wc, ok := st.(*client.AuthorizationStateWaitCode)
	if !ok {
		return nil, unexpectedState(st)
	}
	if wc.CodeInfo != nil {
		token.CodeTimeout = time.Duration(wc.CodeInfo.Timeout) * time.Second
	}
	t.logger.Debug("login code requested", "code_timeout", token.CodeTimeout)
	return token, nil
}

func (t *TelegramClient) SignIn(ctx context.Context, _ *ports.LoginToken, code string) error {
	if t.client != nil {
		return nil
	}
	if _, ok := t.pending.(*client.AuthorizationStateWaitCode); !ok {
		return unexpectedState(t.pending)
	}
	if err := t.answer(ctx, code); err != nil {
		return err
	}

	st, err := t.await(ctx)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	t.pending = st

	switch s := st.(type) {
	case nil:
		return nil
	case *client.AuthorizationStateWaitPassword:
		return &ports.PasswordRequiredError{Token: &ports.PasswordToken{Hint: s.PasswordHint}}
	default:
		return unexpectedState(st)
	}
}

func (t *TelegramClient) CheckPassword(ctx context.Context, _ *ports.PasswordToken, password string) error {
	if _, ok := t.pending.(*client.AuthorizationStateWaitPassword); !ok {
		return unexpectedState(t.pending)
	}
	if err := t.answer(ctx, password); err != nil {
		return err
	}

	st, err := t.await(ctx)
	if err != nil {
		return fmt.Errorf("check password: %w", err)
	}
	t.pending = st
	if st != nil {
		return unexpectedState(st)
	}
	return nil
}

// SaveSession пишет дескриптор. Сами ключи TDLib уже сбросил в DatabaseDir.
func (t *TelegramClient) SaveSession(path string) error {
	if t.client == nil {
		return ErrNotAuthorized
	}
	t.session.Authorized = true
	t.session.UserID = t.selfID
	t.session.SavedAt = time.Now().UTC()

	if err := sessionfile.Save(path, t.session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	t.logger.Debug("session saved", "path", path)
	return nil
}

// SignOutAndDisconnect разлогинивает аккаунт: TDLib удаляет ключи
// и сам закрывает инстанс.
func (t *TelegramClient) SignOutAndDisconnect(ctx context.Context) error {
	if t.client == nil {
		return t.Disconnect()
	}

	listener := t.client.GetListener()
	defer listener.Close()

	if _, err := t.client.LogOut(); err != nil {
		t.logger.Error("LogOut failed", "error", err)
		t.client.Close()
		return fmt.Errorf("log out: %w", err)
	}

	timer := time.NewTimer(closeTimeout)
	defer timer.Stop()
	for {
		select {
		case update, ok := <-listener.Updates:
			if !ok {
				return nil
			}
			if isClosedUpdate(update) {
				t.logger.Info("signed out, session revoked")
				return nil
			}
		case <-timer.C:
			t.client.Close()
			return errors.New("tdlib: timeout waiting for log out")
		case <-ctx.Done():
			t.client.Close()
			return ctx.Err()
		}
	}
}

func isClosedUpdate(update client.Type) bool {
	upd, ok := update.(*client.UpdateAuthorizationState)
	if !ok {
		return false
	}
	_, closed := upd.AuthorizationState.(*client.AuthorizationStateClosed)
	return closed
}

// Disconnect закрывает инстанс, сессия остаётся валидной.
func (t *TelegramClient) Disconnect() error {
	if t.client != nil {
		t.client.Close()
		return nil
	}

	if t.finished {
		// NewClient уже вернул ошибку и сам закрыл инстанс
		return nil
	}

	// авторизация не дошла до конца: прерываем и ждём, пока NewClient вернётся
	t.auth.Abort()
	select {
	case res := <-t.done:
		if res.cli != nil {
			res.cli.Close()
		}
		return nil
	case <-time.After(closeTimeout):
		return errors.New("tdlib: timeout waiting for authorization to stop")
	}
}
