package commands

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/plugsunset/pkg/kasa"
)

func newDiscoverCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List smart plugs answering on the local network",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp(cmd)
			d := kasa.NewBroadcastDiscoverer(a.logger)
			found, err := d.Discover(cmd.Context(), a.cfg.Discovery.Target, a.cfg.Discovery.Timeout)
			if err != nil {
				return err
			}
			return printDevices(cmd, found, parseable)
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable key=value format")
	return cmd
}

func printDevices(cmd *cobra.Command, found map[string]kasa.Device, parseable bool) error {
	out := cmd.OutOrStdout()
	devices := make([]kasa.Device, 0, len(found))
	for _, d := range found {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Host < devices[j].Host })

	if parseable {
		for _, d := range devices {
			fmt.Fprintln(out, DeviceParseable(d))
		}
		return nil
	}
	if len(devices) == 0 {
		fmt.Fprintln(out, "No plugs found")
		return nil
	}

	data := pterm.TableData{DeviceTableHeader()}
	for _, d := range devices {
		data = append(data, DeviceTableRow(d))
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
}
