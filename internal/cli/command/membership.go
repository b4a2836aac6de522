package command

import (
	"github.com/urfave/cli/v2"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
	"github.com/larriantoniy/tg_report_bot/internal/useCases"
)

// MembershipCommand creates join or leave.
func MembershipCommand(rt *Runtime, action domain.MembershipAction) *cli.Command {
	usage := "join channels"
	if action == domain.ActionLeave {
		usage = "leave channels"
	}

	return &cli.Command{
		Name:  action.String(),
		Usage: usage,
		Flags: channelFlags(),
		Action: func(c *cli.Context) error {
			s, err := openSession(c, rt)
			if err != nil {
				return err
			}
			defer s.close()

			m := useCases.NewMembership(s.log, s.handle.Channels(), useCases.NewPrinter(rt.Stdout), rt.Sleep)
			_, err = m.Run(c.Context, s.channels, action, s.delay)
			return err
		},
	}
}
