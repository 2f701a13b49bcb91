package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/plugsunset/internal/errors"
	"github.com/jmylchreest/plugsunset/internal/schedule"
)

func newNextCommand() *cobra.Command {
	var (
		parseable bool
		count     int
		at        string
	)
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the state the plug should be in and the upcoming transitions",
		Long: "Computes the schedule without contacting the plug. " +
			"Use --at to see the plan from another moment, e.g. --at \"2024-06-21 19:30\".",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp(cmd)
			loc := a.cfg.Location.TimeLocation()

			clock := time.Now().In(loc)
			if at != "" {
				t, err := time.ParseInLocation("2006-01-02 15:04", at, loc)
				if err != nil {
					return errors.InvalidInputf("--at %q: expected YYYY-MM-DD HH:MM", at)
				}
				clock = t
			}
			if count < 1 {
				return errors.InvalidInputf("--count must be at least 1")
			}

			state, plan, err := planTransitions(a, clock, count)
			if err != nil {
				return err
			}
			return printPlan(cmd, clock, state, plan, parseable)
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable key=value format")
	cmd.Flags().IntVarP(&count, "count", "n", 4, "Number of transitions to show")
	cmd.Flags().StringVar(&at, "at", "", "Plan from this local time instead of now")
	return cmd
}

// planTransitions walks the schedule forward from start without touching a device
func planTransitions(a *app, start time.Time, count int) (schedule.PlugState, []schedule.Transition, error) {
	clock := start
	offHour, offMinute := a.cfg.Schedule.OffClock()
	loop := schedule.New(nil, newSunset(a), schedule.Options{
		Alias:     a.cfg.Device.Alias,
		OffHour:   offHour,
		OffMinute: offMinute,
		Now:       func() time.Time { return clock },
		Logger:    a.logger,
	})

	initial, err := loop.InitialState()
	if err != nil {
		return schedule.Off, nil, err
	}

	plan := make([]schedule.Transition, 0, count)
	state := initial
	for i := 0; i < count; i++ {
		tr := loop.Next(state)
		plan = append(plan, tr)
		clock = tr.At
		state = tr.State
	}
	return initial, plan, nil
}

func printPlan(cmd *cobra.Command, now time.Time, state schedule.PlugState, plan []schedule.Transition, parseable bool) error {
	out := cmd.OutOrStdout()
	if parseable {
		fmt.Fprintf(out, "now=%q state=%s\n", now.Format(time.RFC3339), state)
		for _, tr := range plan {
			fmt.Fprintln(out, TransitionParseable(tr))
		}
		return nil
	}

	fmt.Fprintf(out, "%s  plug should be %s\n\n", now.Format("Mon 2006-01-02 15:04 MST"), pterm.Bold.Sprint(state))
	data := pterm.TableData{{"State", "At", "In"}}
	for _, tr := range plan {
		when := tr.At.Format("Mon 2006-01-02 15:04")
		if tr.Fallback {
			when += " (last known sunset)"
		}
		data = append(data, []string{tr.State.String(), when, tr.At.Sub(now).Round(time.Minute).String()})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
}
