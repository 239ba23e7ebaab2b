package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/gardena/internal/codec"
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write <device-address> <characteristic> <value>",
	Short: "Write a characteristic value",
	Long: `Writes a value to a characteristic. The value is parsed for the
characteristic's type: decimal or 0x integers, true/false, text, comma
separated arrays, and timestamps as "now", unix seconds, RFC 3339 or
"2006-01-02 15:04:05" local time. Characteristics outside the catalogue take
hex bytes.

Examples:
  gardena write C8:B9:61:00:00:01 manual_watering_time 600
  gardena write C8:B9:61:00:00:01 custom_device_name "Back Yard"
  gardena write C8:B9:61:00:00:01 0000fff1-0000-1000-8000-00805f9b34fb "01 02" --without-response`,
	Args: cobra.ExactArgs(3),
	RunE: runWrite,
}

var writeWithoutResponse bool

func init() {
	writeCmd.Flags().BoolVar(&writeWithoutResponse, "without-response", false, "Do not wait for the device to acknowledge the write")
}

func runWrite(cmd *cobra.Command, args []string) error {
	address, ref, text := args[0], args[1], args[2]

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	t, err := resolveTarget(e.registry, ref)
	if err != nil {
		return err
	}

	var value any
	if t.desc != nil {
		value, err = codec.ParseFor(t.desc, text)
	} else {
		value, err = codec.ParseText(codec.KindBytes, text)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", text, err)
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	sess, closeSession := e.openSession(address)
	defer closeSession()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if err := sess.WriteValue(ctx, t.uuid, value, !writeWithoutResponse); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s = %s\n", t.label(), codec.FormatValue(value))
	return err
}
