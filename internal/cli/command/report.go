package command

import (
	"math/rand"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/larriantoniy/tg_report_bot/internal/useCases"
)

// ReportCommand creates the report command.
func ReportCommand(rt *Runtime) *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:    "message",
			Aliases: []string{"m"},
			Usage:   "report text; a random one from the catalog when empty",
		},
	}, channelFlags()...)

	return &cli.Command{
		Name:  "report",
		Usage: "report the latest message of each channel",
		Flags: flags,
		Action: func(c *cli.Context) error {
			s, err := openSession(c, rt)
			if err != nil {
				return err
			}
			defer s.close()

			picker := useCases.NewMessagePicker(s.cfg.Report.Reasons, rand.New(rand.NewSource(time.Now().UnixNano())))
			reporter := useCases.NewReporter(s.log, s.handle.Channels(), picker, useCases.NewPrinter(rt.Stdout), rt.Sleep)

			_, err = reporter.Run(c.Context, s.channels, c.String("message"), s.delay)
			return err
		},
	}
}
