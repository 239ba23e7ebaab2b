package main

import (
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/gardena/internal/codec"
	"github.com/srg/gardena/internal/gardena"
)

// charsCmd represents the chars command
var charsCmd = &cobra.Command{
	Use:   "chars",
	Short: "List the known Gardena characteristics",
	Long: `Lists every service and characteristic of the Gardena catalogue with its
uuid, key and value type. Keys and names are accepted wherever a command
takes a characteristic.`,
	Args: cobra.NoArgs,
	RunE: runChars,
}

var charsJSON bool

func init() {
	charsCmd.Flags().BoolVar(&charsJSON, "json", false, "Output as JSON")
}

type charEntry struct {
	Service string `json:"service"`
	Key     string `json:"key"`
	Name    string `json:"name"`
	UUID    string `json:"uuid"`
	Kind    string `json:"kind"`
}

func runChars(cmd *cobra.Command, _ []string) error {
	registry, err := gardena.NewRegistry()
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	if charsJSON {
		var entries []charEntry
		for _, svc := range registry.Services() {
			for _, c := range svc.Characteristics() {
				entries = append(entries, charEntry{
					Service: svc.Key(),
					Key:     c.Key(),
					Name:    c.Name(),
					UUID:    c.UUID(),
					Kind:    c.Kind().String(),
				})
			}
		}
		return writeJSON(cmd.OutOrStdout(), entries)
	}
	return displayCatalogue(cmd.OutOrStdout(), registry)
}

func displayCatalogue(w io.Writer, registry *codec.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, svc := range registry.Services() {
		if i > 0 {
			_, _ = io.WriteString(tw, "\n")
		}
		_, _ = color.New(color.Bold).Fprintf(tw, "%s\t%s\t%s\n", svc.Key(), svc.UUID(), svc.Name())
		for _, c := range svc.Characteristics() {
			_, _ = io.WriteString(tw, "  "+c.Key()+"\t"+c.UUID()+"\t"+c.Kind().String()+"\n")
		}
	}
	return tw.Flush()
}
