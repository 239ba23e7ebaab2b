package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/gardena/internal/codec"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <device-address> <characteristic>...",
	Short: "Read characteristic values",
	Long: `Reads one or more characteristics over a single connection. A
characteristic is a uuid, a key ("battery_level"), a qualified key
("sensor.battery_level") or a display name ("Manual Watering Time").

Examples:
  gardena read C8:B9:61:00:00:01 unix_timestamp
  gardena read C8:B9:61:00:00:01 valve.state remaining_open_time --json
  gardena read C8:B9:61:00:00:01 2a19 --hex`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRead,
}

var (
	readHex  bool
	readJSON bool
)

func init() {
	readCmd.Flags().BoolVar(&readHex, "hex", false, "Print raw payloads as hex instead of decoding them")
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output as JSON")
}

type readEntry struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name,omitempty"`
	Hex   string `json:"hex,omitempty"`
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

func runRead(cmd *cobra.Command, args []string) error {
	address := args[0]

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	targets := make([]target, 0, len(args)-1)
	for _, ref := range args[1:] {
		t, err := resolveTarget(e.registry, ref)
		if err != nil {
			return err
		}
		targets = append(targets, t)
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	sess, closeSession := e.openSession(address)
	defer closeSession()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	entries := make([]readEntry, 0, len(targets))
	for _, t := range targets {
		entry := readEntry{UUID: t.uuid}
		if t.desc != nil {
			entry.Name = t.desc.Name()
		}

		data, err := sess.ReadRaw(ctx, t.uuid)
		if err == nil {
			entry.Hex = hex.EncodeToString(data)
			if t.desc != nil && !readHex {
				entry.Value, err = t.desc.DecodeValue(data)
			}
		}
		if err != nil {
			if len(targets) == 1 {
				return err
			}
			// Report error but continue with other characteristics
			entry.Value = nil
			entry.Error = FormatUserError(err)
			if !readJSON {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: error: %s\n", t.label(), entry.Error)
			}
			entries = append(entries, entry)
			continue
		}
		entries = append(entries, entry)

		if readJSON {
			continue
		}
		text := entry.Hex
		if entry.Value != nil {
			text = codec.FormatValue(entry.Value)
		}
		if len(targets) > 1 {
			_, _ = fmt.Fprintf(out, "%s: %s\n", t.label(), text)
		} else {
			_, _ = fmt.Fprintln(out, text)
		}
	}

	if readJSON {
		return writeJSON(out, entries)
	}
	return nil
}
