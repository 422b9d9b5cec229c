package cmd

import (
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/smazurov/portled/internal/led"
	"github.com/smazurov/portled/internal/nats"
	"github.com/spf13/cobra"
)

// CreateStatusCmd creates the status command.
func CreateStatusCmd() *cobra.Command {
	var opts ledOptions
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configured LEDs and their sysfs attributes",
		Long: `Lists every LED mapping with the max brightness, brightness and trigger of both channels. ` +
			`Nothing is written. With --watch, state changes and request errors published by the running service ` +
			`are printed until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			if watch {
				client, err := nats.Connect(opts.NatsURL, "portled-cli-watch", logger)
				if err != nil {
					return err
				}
				defer client.Close()

				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				var mu sync.Mutex
				out := cmd.OutOrStdout()
				printLine := func(line string) {
					mu.Lock()
					defer mu.Unlock()
					fmt.Fprintln(out, line)
				}

				stopStates, err := client.WatchStates(func(m nats.StateMessage) {
					printLine(formatStateLine(m))
				})
				if err != nil {
					return err
				}
				defer stopStates()
				stopErrors, err := client.WatchErrors(func(m nats.ErrorMessage) {
					printLine(formatErrorLine(m))
				})
				if err != nil {
					return err
				}
				defer stopErrors()

				<-ctx.Done()
				return nil
			}

			mappings, err := led.LoadMappings(opts.source(), logger)
			if err != nil {
				return err
			}
			renderStatus(cmd.OutOrStdout(), mappings, opts.LedsBrightnessLimit)
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow state changes from the running service")
	return cmd
}

func formatStateLine(m nats.StateMessage) string {
	line := fmt.Sprintf("%s LED %d: %s/%s -> %s/%s", m.Timestamp, m.LedID, m.PreviousColor, m.PreviousBlink, m.Color, m.Blink)
	if m.BlinkDegraded {
		line += " (blink degraded)"
	}
	return line
}

func formatErrorLine(m nats.ErrorMessage) string {
	return fmt.Sprintf("%s LED %d: error %s: %s", m.Timestamp, m.LedID, m.Code, m.Message)
}

func renderStatus(w io.Writer, mappings []led.Mapping, limit int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Channel", "Path", "Max", "Brightness", "Trigger", "Error"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for _, m := range mappings {
		blue, yellow := led.Probe(m, limit)
		for _, ch := range []struct {
			name string
			info led.ChannelInfo
		}{{"blue", blue}, {"yellow", yellow}} {
			errText := ""
			if ch.info.Err != nil {
				errText = ch.info.Err.Error()
			}
			table.Append([]string{
				strconv.Itoa(m.ID),
				ch.name,
				ch.info.Path,
				strconv.Itoa(ch.info.MaxBrightness),
				strconv.Itoa(ch.info.Brightness),
				ch.info.Trigger,
				errText,
			})
		}
	}
	table.Render()
	fmt.Fprintf(w, "%d LEDs\n", len(mappings))
}
