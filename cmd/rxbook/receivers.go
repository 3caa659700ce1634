package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/search"
)

func newReceiversCmd(g *globalFlags) *cobra.Command {
	var (
		onlineOnly bool
		query      string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "receivers",
		Short: "List the receiver directory",
		Long: `List the receiver directory and its station markers.

Examples:
  rxbook receivers
  rxbook receivers --online
  rxbook receivers --filter "band:vhf mhz:<200"
  rxbook receivers --directory ~/receivers.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd, g)
			if err != nil {
				return err
			}
			dir, err := loadDirectory(cfg)
			if err != nil {
				return err
			}

			receivers := dir.Receivers
			if onlineOnly {
				receivers = search.Apply(receivers, search.PresetOnline())
			}
			if query != "" {
				receivers = search.Apply(receivers, search.ParseQuery(query))
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					BandwidthKHz float64                  `json:"bandwidth_khz"`
					Receivers    []receiver.Receiver      `json:"receivers"`
					Markers      []receiver.StationMarker `json:"markers"`
				}{dir.BandwidthKHz, receivers, dir.Markers})
			}

			printDirectory(cmd.OutOrStdout(), dir, receivers)
			return nil
		},
	}

	cmd.Flags().BoolVar(&onlineOnly, "online", false, "Only list online receivers")
	cmd.Flags().StringVar(&query, "filter", "", "Filter query (text, online, band:vhf, mhz:100-200)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

// formatMHz renders a frequency with an SI prefix, e.g. "145.675 MHz"
func formatMHz(mhz float64) string {
	return humanize.SIWithDigits(mhz*1e6, 3, "Hz")
}

func printDirectory(w io.Writer, dir *receiver.Directory, receivers []receiver.Receiver) {
	fmt.Fprintf(w, "\n  %-3s %-20s %-20s %-10s %-12s %s\n", "ID", "NAME", "LOCATION", "RANGE", "CENTER", "STATUS")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", 78))
	for _, r := range receivers {
		fmt.Fprintf(w, "  %-3d %-20s %-20s %-10s %-12s %s\n",
			r.ID, r.Name, r.Location, r.FrequencyRange, formatMHz(r.CenterMHz), strings.ToUpper(string(r.Status)))
	}

	fmt.Fprintf(w, "\n  %d of %d receivers online · span %s\n", dir.OnlineCount(), len(dir.Receivers), formatMHz(dir.BandwidthKHz/1000))

	if len(dir.Markers) > 0 {
		fmt.Fprintln(w, "\n  Station markers:")
		for _, m := range dir.Markers {
			fmt.Fprintf(w, "    %-8s %+7.1f kHz  %s\n", m.Callsign, m.OffsetKHz, m.Category)
		}
	}
	fmt.Fprintln(w)
}
