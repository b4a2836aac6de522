package useCases

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
	"github.com/larriantoniy/tg_report_bot/internal/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type reportCall struct {
	ch     domain.ChannelReference
	ids    []int64
	reason domain.ReportReason
	text   string
}

// fakeTelegram in-memory реализация ports.ProtocolClient
type fakeTelegram struct {
	entities   map[string][]domain.Entity
	resolveErr map[string]error
	history    map[int64][]domain.Message
	reportOK   bool
	reportErr  error

	authorized   bool
	signInErr    error
	passwordErr  error
	saveErr      error
	requestErr   error
	calls        []string
	reports      []reportCall
	joined       []int64
	left         []int64
	lastCode     string
	lastPassword string
	lastPhone    string
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{
		entities:   map[string][]domain.Entity{},
		resolveErr: map[string]error{},
		history:    map[int64][]domain.Message{},
		reportOK:   true,
	}
}

func (f *fakeTelegram) addChannel(username string, id int64, lastMsg int64) {
	f.entities[username] = []domain.Entity{{Kind: domain.EntityChannel, ID: id, AccessHash: id * 10, Title: username}}
	f.history[id] = []domain.Message{{ID: lastMsg, Text: "latest"}}
}

func (f *fakeTelegram) IsAuthorized(context.Context) (bool, error) {
	f.calls = append(f.calls, "is_authorized")
	return f.authorized, nil
}

func (f *fakeTelegram) RequestLoginCode(_ context.Context, phone string) (*ports.LoginToken, error) {
	f.calls = append(f.calls, "request_code")
	f.lastPhone = phone
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return &ports.LoginToken{Phone: phone}, nil
}

func (f *fakeTelegram) SignIn(_ context.Context, _ *ports.LoginToken, code string) error {
	f.calls = append(f.calls, "sign_in")
	f.lastCode = code
	return f.signInErr
}

func (f *fakeTelegram) CheckPassword(_ context.Context, _ *ports.PasswordToken, password string) error {
	f.calls = append(f.calls, "check_password")
	f.lastPassword = password
	return f.passwordErr
}

func (f *fakeTelegram) SaveSession(string) error {
	f.calls = append(f.calls, "save_session")
	return f.saveErr
}

func (f *fakeTelegram) SignOutAndDisconnect(context.Context) error {
	f.calls = append(f.calls, "sign_out_disconnect")
	return nil
}

func (f *fakeTelegram) Disconnect() error {
	f.calls = append(f.calls, "disconnect")
	return nil
}

func (f *fakeTelegram) ResolveUsername(_ context.Context, username string) ([]domain.Entity, error) {
	f.calls = append(f.calls, "resolve:"+username)
	if err := f.resolveErr[username]; err != nil {
		return nil, err
	}
	return f.entities[username], nil
}

func (f *fakeTelegram) GetHistory(_ context.Context, ch domain.ChannelReference, limit int32) ([]domain.Message, error) {
	f.calls = append(f.calls, "history")
	msgs := f.history[ch.ID]
	if int(limit) < len(msgs) {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (f *fakeTelegram) Report(_ context.Context, ch domain.ChannelReference, ids []int64, reason domain.ReportReason, text string) (bool, error) {
	f.calls = append(f.calls, "report")
	f.reports = append(f.reports, reportCall{ch: ch, ids: ids, reason: reason, text: text})
	return f.reportOK, f.reportErr
}

func (f *fakeTelegram) JoinChannel(_ context.Context, ch domain.ChannelReference) error {
	f.joined = append(f.joined, ch.ID)
	return nil
}

func (f *fakeTelegram) LeaveChannel(_ context.Context, ch domain.ChannelReference) error {
	f.left = append(f.left, ch.ID)
	return nil
}

func (f *fakeTelegram) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeConnector struct {
	client *fakeTelegram
	err    error
	cfg    ports.ConnectConfig
}

func (c *fakeConnector) Connect(_ context.Context, cfg ports.ConnectConfig) (ports.ProtocolClient, error) {
	c.cfg = cfg
	if c.err != nil {
		return nil, c.err
	}
	return c.client, nil
}

// scriptedPrompter отдаёт ответы по очереди
type scriptedPrompter struct {
	answers   []string
	passwords []string
	asked     []string
}

func (p *scriptedPrompter) Prompt(message string) (string, error) {
	p.asked = append(p.asked, message)
	if len(p.answers) == 0 {
		return "", errors.New("no more answers")
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) Password(message string) (string, error) {
	p.asked = append(p.asked, message)
	if len(p.passwords) == 0 {
		return "", errors.New("no more passwords")
	}
	a := p.passwords[0]
	p.passwords = p.passwords[1:]
	return a, nil
}

// recordingSleeper считает паузы вместо реального ожидания
type recordingSleeper struct {
	waits []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

// seqRand детерминированный Rand
type seqRand struct {
	seq []int
	i   int
}

func (r *seqRand) Intn(n int) int {
	v := r.seq[r.i%len(r.seq)] % n
	r.i++
	return v
}

func outputLines(b *strings.Builder) []string {
	out := strings.TrimSpace(b.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
