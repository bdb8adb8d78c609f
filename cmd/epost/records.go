package main

import (
	"context"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// recordsCmd represents the records command
var recordsCmd = &cobra.Command{
	Use:   "records INPUT",
	Short: "print the parsed records of a trace as JSON lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpRecords(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)
}

// dumpRecords validates the whole trace before printing anything.
func dumpRecords(ctx context.Context, cfg Config, input string, w io.Writer) error {
	records, err := readRecords(ctx, cfg, input)
	if err != nil {
		return err
	}
	enc := gojson.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
