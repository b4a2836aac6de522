// Package command собирает CLI на urfave/cli/v2: report, join, leave.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/larriantoniy/tg_report_bot/internal/adapters/console"
	"github.com/larriantoniy/tg_report_bot/internal/adapters/redislock"
	"github.com/larriantoniy/tg_report_bot/internal/adapters/tg"
	"github.com/larriantoniy/tg_report_bot/internal/config"
	"github.com/larriantoniy/tg_report_bot/internal/domain"
	"github.com/larriantoniy/tg_report_bot/internal/logging"
	"github.com/larriantoniy/tg_report_bot/internal/ports"
	"github.com/larriantoniy/tg_report_bot/internal/useCases"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func init() {
	// -v занят под verbosity
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

// сколько даём на sign-out / disconnect, даже если ctx уже отменён
const teardownTimeout = 30 * time.Second

var (
	ErrChannelsRequired = errors.New("either --channels or --file is required")
	ErrChannelsConflict = errors.New("--channels and --file are mutually exclusive")
)

// Runtime то, что main отдаёт приложению. В тестах подменяется.
type Runtime struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Connector func(log *slog.Logger) ports.Connector
	Prompter  ports.Prompter
	Sleep     useCases.Sleeper
}

// DefaultRuntime работает с настоящим терминалом и TDLib.
func DefaultRuntime() *Runtime {
	return &Runtime{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Connector: func(log *slog.Logger) ports.Connector {
			return tg.NewConnector(log)
		},
	}
}

// App creates the CLI application.
func App(rt *Runtime) *cli.App {
	return &cli.App{
		Name:                   "reporter",
		Usage:                  "report Telegram channels from a user account",
		Version:                fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:                  globalFlags(),
		UseShortOptionHandling: true,
		Writer:                 rt.Stdout,
		ErrWriter:              rt.Stderr,
		Commands: []*cli.Command{
			ReportCommand(rt),
			MembershipCommand(rt, domain.ActionJoin),
			MembershipCommand(rt, domain.ActionLeave),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log verbosity, repeat to increase (-v error ... -vvvvv trace)",
			Count:   new(int),
		},
		&cli.StringFlag{
			Name:    "session",
			Usage:   "session file path",
			EnvVars: []string{"TG_SESSION"},
			Value:   config.DefaultSessionFile,
		},
		&cli.IntFlag{
			Name:    "id",
			Usage:   "Telegram API ID",
			EnvVars: []string{"TG_ID"},
		},
		&cli.StringFlag{
			Name:    "hash",
			Usage:   "Telegram API hash",
			EnvVars: []string{"TG_HASH"},
		},
		&cli.StringFlag{
			Name:    "phone",
			Usage:   "phone number for the first sign-in (prompted when empty)",
			EnvVars: []string{"TG_PHONE"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to YAML config",
			EnvVars: []string{"CONFIG_PATH"},
		},
	}
}

func channelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "channels",
			Usage: "channels to process: @handle, handle or t.me link",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "file with one channel per line",
		},
		&cli.IntFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "seconds to wait between channels",
			Value:   10,
		},
	}
}

// loadConfig: файл, поверх env, поверх флаги.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("session") || cfg.Session == "" {
		cfg.Session = c.String("session")
	}
	if c.IsSet("id") {
		cfg.ApiID = int32(c.Int("id"))
	}
	if c.IsSet("hash") {
		cfg.ApiHash = c.String("hash")
	}
	if c.IsSet("phone") {
		cfg.Phone = c.String("phone")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readChannels: ровно один из --channels / --file.
func readChannels(c *cli.Context) ([]string, error) {
	fromFlag := c.IsSet("channels")
	fromFile := c.IsSet("file")

	switch {
	case fromFlag && fromFile:
		return nil, ErrChannelsConflict
	case fromFile:
		return config.LoadChannels(c.String("file"))
	case fromFlag:
		return config.SplitChannels(c.StringSlice("channels")), nil
	default:
		return nil, ErrChannelsRequired
	}
}

func delayFor(c *cli.Context, cfg *config.AppConfig) time.Duration {
	if c.IsSet("timeout") || cfg.Report.Timeout <= 0 {
		return time.Duration(c.Int("timeout")) * time.Second
	}
	return cfg.Report.Timeout
}

// session общий каркас команд: конфиг, логгер, лок, авторизация.
type session struct {
	cfg      *config.AppConfig
	log      *slog.Logger
	channels []string
	delay    time.Duration
	handle   *useCases.SessionHandle

	cleanup []func()
}

func (s *session) close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
}

func openSession(c *cli.Context, rt *Runtime) (_ *session, err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	verbosity := c.Count("verbose")
	log, logCloser, err := logging.New(cfg.Env, verbosity, cfg.Log, rt.Stderr)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log = log.With("run_id", uuid.NewString(), "command", c.Command.Name)

	s := &session{cfg: cfg, log: log}
	s.cleanup = append(s.cleanup, func() { _ = logCloser.Close() })
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	s.channels, err = readChannels(c)
	if err != nil {
		return nil, err
	}
	s.delay = delayFor(c, cfg)

	ctx := c.Context
	if cfg.Redis.Addr != "" {
		release, err := acquireLock(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		s.cleanup = append(s.cleanup, release)
	}

	prompter := rt.Prompter
	if prompter == nil {
		prompter = console.NewPrompter(rt.Stdin, rt.Stdout)
	}

	mgr := useCases.NewSessionManager(log, rt.Connector(log), prompter, connectConfig(cfg, verbosity))
	handle, err := mgr.Connect(ctx, domain.Credentials{
		AppID:   cfg.ApiID,
		AppHash: cfg.ApiHash,
		Phone:   cfg.Phone,
	}, cfg.Session)
	if err != nil {
		return nil, err
	}
	s.handle = handle
	s.cleanup = append(s.cleanup, func() {
		tctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		// ошибку уже залогировал сам handle
		_ = handle.Close(tctx)
	})

	return s, nil
}

func acquireLock(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (func(), error) {
	rdb := redislock.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	var lock ports.SessionLock = redislock.New(rdb, cfg.Redis.LockTTL, log)

	key, err := filepath.Abs(cfg.Session)
	if err != nil {
		key = cfg.Session
	}

	release, err := lock.Acquire(ctx, key)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return func() {
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := release(rctx); err != nil {
			log.Warn("release session lock", "error", err)
		}
		_ = rdb.Close()
	}, nil
}

func connectConfig(cfg *config.AppConfig, verbosity int) ports.ConnectConfig {
	cc := ports.ConnectConfig{
		Device: ports.DeviceConfig{
			DeviceModel:        cfg.Device.Model,
			SystemVersion:      cfg.Device.System,
			ApplicationVersion: cfg.Device.AppVersion,
			LangCode:           cfg.Device.LangCode,
		},
		Verbosity: verbosity,
	}
	if cfg.Proxy.Enabled() {
		cc.Proxy = &ports.ProxyConfig{
			Enabled:  true,
			Server:   cfg.Proxy.Server,
			Port:     cfg.Proxy.Port,
			Username: cfg.Proxy.Username,
			Password: cfg.Proxy.Password,
		}
	}
	return cc
}
