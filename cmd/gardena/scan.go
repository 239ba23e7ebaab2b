package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/gardena/internal/device"
	"github.com/srg/gardena/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for Gardena devices",
	Long: `Listens for advertisements of Gardena devices and lists them with the
product, serial number and pairing state decoded from the manufacturer data.

By default only devices advertising the Gardena service or the firmware
update service are shown; --services replaces that filter.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	scanDuration  time.Duration
	scanServices  []string
	scanAllowList []string
	scanBlockList []string
	scanJSON      bool
)

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 0, "Scan duration (default from config, 10s)")
	scanCmd.Flags().StringSliceVarP(&scanServices, "services", "s", nil, "Filter by service UUIDs instead of the Gardena services")
	scanCmd.Flags().StringSliceVar(&scanAllowList, "allow", nil, "Only show devices with these addresses")
	scanCmd.Flags().StringSliceVar(&scanBlockList, "block", nil, "Hide devices with these addresses")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output as JSON")
}

func runScan(cmd *cobra.Command, _ []string) error {
	var serviceUUIDs []string
	if len(scanServices) > 0 {
		var err error
		if serviceUUIDs, err = device.ValidateUUID(scanServices...); err != nil {
			return fmt.Errorf("invalid service UUID: %w", err)
		}
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	duration := scanDuration
	if duration <= 0 {
		duration = e.cfg.ScanTimeout
	}

	dev, err := newScanningDevice()
	if err != nil {
		return fmt.Errorf("failed to create BLE scanner: %w", err)
	}
	s, err := scanner.NewScanner(dev, e.logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	progress := NewCountdownProgressPrinter(cmd.ErrOrStderr(), "Scanning for Gardena devices", "Scanning", duration, "Processing results", "Failed")
	progress.Start()
	defer progress.Stop()

	devices, err := s.Scan(ctx, &scanner.ScanOptions{
		Duration:        duration,
		DuplicateFilter: false,
		ServiceUUIDs:    serviceUUIDs,
		AllowList:       scanAllowList,
		BlockList:       scanBlockList,
	}, progress.Callback())
	progress.Stop()
	if err != nil {
		return err
	}

	if scanJSON {
		entries := make([]scanEntry, 0, len(devices))
		for _, d := range devices {
			entries = append(entries, newScanEntry(d))
		}
		return writeJSON(cmd.OutOrStdout(), entries)
	}
	return displayDevices(cmd.OutOrStdout(), devices)
}

type scanEntry struct {
	Address        string   `json:"address"`
	Name           string   `json:"name,omitempty"`
	Product        string   `json:"product"`
	ProductName    string   `json:"product_name,omitempty"`
	Serial         *uint32  `json:"serial,omitempty"`
	Pairable       *bool    `json:"pairable,omitempty"`
	FirmwareUpdate bool     `json:"firmware_update"`
	RSSI           int      `json:"rssi"`
	Services       []string `json:"services,omitempty"`
}

func newScanEntry(d scanner.Device) scanEntry {
	entry := scanEntry{
		Address:        d.Address,
		Name:           d.Name,
		Product:        d.Product.String(),
		ProductName:    d.ProductName,
		FirmwareUpdate: d.Firmware,
		RSSI:           d.RSSI,
		Services:       d.Services,
	}
	if v, ok := d.Serial(); ok {
		entry.Serial = &v
	}
	if v, ok := d.Pairable(); ok {
		entry.Pairable = &v
	}
	return entry
}

func displayDevices(w io.Writer, devices []scanner.Device) error {
	if len(devices) == 0 {
		_, err := fmt.Fprintln(w, "No Gardena devices found.")
		return err
	}

	header := color.New(color.Bold)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = header.Fprintln(tw, "ADDRESS\tNAME\tPRODUCT\tSERIAL\tPAIRABLE\tRSSI")
	for _, d := range devices {
		product := d.ProductName
		if product == "" {
			product = "-"
		}
		if d.Firmware {
			product += " (firmware update)"
		}

		serial := "-"
		if v, ok := d.Serial(); ok {
			serial = strconv.FormatUint(uint64(v), 10)
		}
		pairable := "-"
		if v, ok := d.Pairable(); ok {
			pairable = strconv.FormatBool(v)
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Address, orDash(d.Name), product, serial, pairable, rssi(d.RSSI))
	}
	return tw.Flush()
}

func rssi(v int) string {
	s := fmt.Sprintf("%d dBm", v)
	switch {
	case v >= -60:
		return color.GreenString(s)
	case v >= -80:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
