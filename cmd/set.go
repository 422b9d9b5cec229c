package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/smazurov/portled/internal/led"
	"github.com/smazurov/portled/internal/nats"
	"github.com/spf13/cobra"
)

// CreateSetCmd creates the set command.
func CreateSetCmd() *cobra.Command {
	var opts ledOptions
	var (
		id     int
		color  string
		blink  string
		reason string
		remote bool
		noWait bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the color and blink rate of one LED",
		Long: `Applies a state to one LED. By default the LED is driven directly through sysfs: ` +
			`both channels are forced off first, then the requested state is applied. ` +
			`With --remote the request is sent to a running portled service over NATS instead.`,
		Example: `  portled set --id 3 --color yellow --blink slow
  portled set --id 3 --color off --remote`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			state, err := led.ParseState(color, blink)
			if err != nil {
				return err
			}

			if remote {
				client, err := nats.Connect(opts.NatsURL, "portled-cli", logger)
				if err != nil {
					return err
				}
				defer client.Close()

				request := nats.SetMessage{
					Color:  state.Color.String(),
					Blink:  state.Blink.String(),
					Reason: reason,
				}
				if noWait {
					if err := client.Publish(id, request); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "LED %d: %s published\n", id, state)
					return nil
				}

				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
				defer cancel()
				if err := client.Set(ctx, id, request); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "LED %d: %s requested\n", id, state)
				return nil
			}

			m, err := opts.resolve(id, logger)
			if err != nil {
				return err
			}
			ctrl, err := led.NewIO(m, led.WithLogger(logger), led.WithBrightnessLimit(opts.LedsBrightnessLimit))
			if err != nil {
				return err
			}
			if err := ctrl.SetState(state); err != nil {
				return err
			}
			printApplied(cmd.OutOrStdout(), ctrl)
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().IntVar(&id, "id", 0, "LED index")
	cmd.Flags().StringVar(&color, "color", "", "Color: off, blue or yellow")
	cmd.Flags().StringVar(&blink, "blink", "off", "Blink rate: off, slow or fast")
	cmd.Flags().StringVar(&reason, "reason", "cli", "Reason recorded with a remote request")
	cmd.Flags().BoolVar(&remote, "remote", false, "Send the request to the running service over NATS")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "With --remote, publish without waiting for the service to accept")
	_ = cmd.MarkFlagRequired("color")
	return cmd
}

func printApplied(w io.Writer, l *led.IO) {
	s := l.State()
	paths := l.Paths()
	switch s.Color {
	case led.ColorBlue:
		fmt.Fprintf(w, "LED %d: %s (brightness %d at %s)\n", l.ID(), s, l.MaxBrightness(s.Color), paths.BluePath)
	case led.ColorYellow:
		fmt.Fprintf(w, "LED %d: %s (brightness %d at %s)\n", l.ID(), s, l.MaxBrightness(s.Color), paths.YellowPath)
	default:
		fmt.Fprintf(w, "LED %d: %s\n", l.ID(), s)
	}
	if l.BlinkDegraded() {
		fmt.Fprintf(w, "LED %d: blink attributes not writable, lit solid\n", l.ID())
	}
}
