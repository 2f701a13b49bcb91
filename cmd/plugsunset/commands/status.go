package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/plugsunset/internal/status"
	"github.com/jmylchreest/plugsunset/pkg/client"
)

// newStatusCommand creates the status command, which queries a running daemon
func newStatusCommand() *cobra.Command {
	var (
		apiURL    string
		parseable bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running scheduler",
		Long:  "Queries the status API of a running scheduler. The address defaults to api.listen_address.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp(cmd)
			if apiURL == "" {
				apiURL = a.cfg.API.ListenAddress
			}
			if apiURL == "" {
				return fmt.Errorf("no API address: pass --api or set api.listen_address")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			snap, err := client.New(a.logger, apiURL).GetStatus(ctx)
			if err != nil {
				return fmt.Errorf("failed to query %s: %w", apiURL, err)
			}

			if parseable {
				fmt.Fprintln(cmd.OutOrStdout(), StatusParseable(snap))
				return nil
			}
			return printStatus(cmd.OutOrStdout(), snap)
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "", "Status API address, e.g. http://127.0.0.1:8080")
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable key=value format")
	return cmd
}

func printStatus(out io.Writer, snap status.Snapshot) error {
	stamp := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format(time.DateTime)
	}
	relay := "-"
	if snap.RelayOn != nil {
		relay = onOff(*snap.RelayOn)
	}

	data := pterm.TableData{
		{"Alias", snap.Alias},
		{"Host", snap.Host},
		{"State", snap.State},
		{"Relay", relay},
		{"Applied", stamp(snap.AppliedAt)},
		{"Next", fmt.Sprintf("%s at %s", snap.NextState, stamp(snap.NextAt))},
		{"Failures", fmt.Sprint(snap.Failures)},
		{"Running since", snap.StartedAt.Format(time.DateTime)},
	}
	if snap.SunsetFallback {
		data = append(data, []string{"Sunset", "reusing last known time"})
	}
	if snap.LastError != "" {
		data = append(data, []string{"Last error", snap.LastError})
	}
	return pterm.DefaultTable.WithWriter(out).WithData(data).Render()
}
