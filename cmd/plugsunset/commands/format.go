package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"github.com/jmylchreest/plugsunset/internal/schedule"
	"github.com/jmylchreest/plugsunset/internal/status"
	"github.com/jmylchreest/plugsunset/pkg/kasa"
)

// DeviceTableHeader is the header row of the discover table
func DeviceTableHeader() []string {
	return []string{"Alias", "Host", "Model", "MAC", "Relay"}
}

// DeviceTableRow returns one discover table row, with the alias in bold
func DeviceTableRow(d kasa.Device) []string {
	return []string{pterm.Bold.Sprint(d.Alias), d.Host, d.Model, d.MAC, onOff(d.On)}
}

// DeviceParseable returns the parseable key=value string for a device
func DeviceParseable(d kasa.Device) string {
	return fmt.Sprintf("alias=%q host=%q model=%q mac=%q deviceid=%q on=%v",
		d.Alias, d.Host, d.Model, d.MAC, d.DeviceID, d.On)
}

// TransitionParseable returns the parseable key=value string for a planned transition
func TransitionParseable(tr schedule.Transition) string {
	return fmt.Sprintf("state=%s at=%q unix=%d wait_seconds=%d fallback=%v",
		tr.State, tr.At.Format(time.RFC3339), tr.At.Unix(), int64(tr.Wait.Seconds()), tr.Fallback)
}

// StatusParseable returns the parseable key=value string for a daemon status
func StatusParseable(s status.Snapshot) string {
	relay := ""
	if s.RelayOn != nil {
		relay = onOff(*s.RelayOn)
	}
	next := ""
	if s.NextAt != nil {
		next = s.NextAt.Format(time.RFC3339)
	}
	return fmt.Sprintf("alias=%q host=%q state=%s relay=%s next_state=%s next_at=%q failures=%d fallback=%v",
		s.Alias, s.Host, s.State, relay, s.NextState, next, s.Failures, s.SunsetFallback)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
