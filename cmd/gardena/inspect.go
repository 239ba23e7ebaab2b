package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/gardena/inspector"
	"github.com/srg/gardena/internal/gardena"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <device-address>",
	Short: "Read every characteristic of a device",
	Long: `Connects to a device, lists the characteristics it exposes grouped by
service and reads the readable ones. Gardena characteristics are decoded,
anything else is shown as hex.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var (
	inspectJSON        bool
	inspectReadLimit   int
	inspectConcurrency int
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output as JSON")
	inspectCmd.Flags().IntVar(&inspectReadLimit, "read-limit", 64, "Max bytes shown in the hex preview (0 for no limit)")
	inspectCmd.Flags().IntVar(&inspectConcurrency, "concurrency", inspector.DefaultConcurrency, "Parallel reads over the connection")
}

func runInspect(cmd *cobra.Command, args []string) error {
	address := args[0]

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	names, err := gardena.DisplayNames(e.registry)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	sess, closeSession := e.openSession(address)
	defer closeSession()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	progress := NewProgressPrinter(cmd.ErrOrStderr(), fmt.Sprintf("Inspecting device %s", address), "Connecting", "Processing results", "Failed")
	progress.Start()
	defer progress.Stop()

	res, err := inspector.Inspect(ctx, sess, &inspector.InspectOptions{
		Concurrency: inspectConcurrency,
		ReadLimit:   inspectReadLimit,
		Names:       names,
	}, e.logger, progress.Callback())
	progress.Stop()
	if err != nil {
		return err
	}

	if inspectJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	return displayInspectResult(cmd.OutOrStdout(), address, res)
}

func displayInspectResult(w io.Writer, address string, res *inspector.InspectResult) error {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	_, _ = bold.Fprintf(w, "Device %s\n", address)
	for _, svc := range res.Services {
		_, _ = fmt.Fprintln(w)
		_, _ = color.New(color.FgCyan, color.Bold).Fprintf(w, "%s  %s\n", svc.UUID, orDash(svc.Name))

		for _, c := range svc.Characteristics {
			_, _ = fmt.Fprintf(w, "  %s  %s  ", c.UUID, orDash(c.Name))
			_, _ = faint.Fprintf(w, "[%s]", strings.Join(c.Properties, ","))
			_, _ = fmt.Fprintln(w)

			switch {
			case c.Error != "":
				_, _ = color.New(color.FgRed).Fprintf(w, "      error: %s\n", c.Error)
			case c.Value != "":
				_, _ = fmt.Fprintf(w, "      %s: %s\n", c.Kind, c.Value)
			case c.ValueHex != "":
				_, _ = fmt.Fprintf(w, "      hex: %s  %q\n", c.ValueHex, c.ValueASCII)
			}
		}
	}
	return nil
}
