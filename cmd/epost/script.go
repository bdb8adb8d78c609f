package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/luxxxlucy/epost/internal/errorutil"
	"github.com/luxxxlucy/epost/internal/perfscript"
	"github.com/luxxxlucy/epost/internal/storageprovider"
	"github.com/luxxxlucy/epost/internal/storageutil"
	"github.com/luxxxlucy/epost/internal/trace"
)

const scriptExtension = ".perf"

// scriptCmd represents the script command
var scriptCmd = &cobra.Command{
	Use:   "script [flags] INPUT",
	Short: "convert an egg trace to a linux perf script",
	Long: `Convert the EPOST_LOG lines of a trace into the text format printed by
"perf script", one sample per event, for use with flame graph tools.

INPUT and the output path are local paths, gs://bucket/object locations or
gocloud blob URLs. Objects ending in .lz4 are lz4 compressed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		output := outputPath
		if output == "" {
			output = defaultOutputPath(input)
		}
		_, err := convert(cmd.Context(), cfg, input, output)
		return err
	},
}

var outputPath string

func init() {
	rootCmd.AddCommand(scriptCmd)

	scriptCmd.Flags().StringVarP(&outputPath, "output_path", "o", "",
		"output path (defaults to the input path with a .perf extension)")
}

// defaultOutputPath swaps the extension of input for .perf, keeping a
// trailing .lz4.
func defaultOutputPath(input string) string {
	base := input
	suffix := ""
	if storageutil.IsCompressed(base) {
		suffix = filepath.Ext(base)
		base = strings.TrimSuffix(base, suffix)
	}
	output := strings.TrimSuffix(base, filepath.Ext(base)) + scriptExtension + suffix
	if output == input {
		output = base + scriptExtension + suffix
	}
	return output
}

// convert writes the perf script of input to output and returns the number
// of samples written. Nothing is written unless the whole input is valid.
func convert(ctx context.Context, cfg Config, input, output string) (int, error) {
	records, err := readRecords(ctx, cfg, input)
	if err != nil {
		return 0, err
	}
	for i, r := range records {
		log.Debug().
			Int("index", i).
			Str("time", r.Time).
			Stringer("kind", r.Kind).
			Str("frame", r.Frame().String()).
			Msg("record")
	}

	blocks, err := perfscript.Generate(records, cfg.perfOptions())
	if err != nil {
		return 0, err
	}

	out, err := storageprovider.Open(ctx, output)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errorutil.ErrIO, err)
	}
	defer out.Close()

	ctx, cancel := cfg.withIOTimeout(ctx)
	defer cancel()
	if err := storageutil.WriteBlocks(ctx, out.Handler, out.Key, blocks); err != nil {
		return 0, err
	}

	log.Info().
		Str("input", input).
		Str("output", output).
		Int("records", len(records)).
		Int("samples", len(blocks)).
		Msg("perf script written")
	return len(blocks), nil
}

func readRecords(ctx context.Context, cfg Config, input string) ([]trace.LogRecord, error) {
	in, err := storageprovider.Open(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errorutil.ErrIO, err)
	}
	defer in.Close()

	ctx, cancel := cfg.withIOTimeout(ctx)
	defer cancel()
	r, err := storageutil.NewReader(ctx, in.Handler, in.Key)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	log.Debug().Str("input", input).Int64("size_bytes", r.Size()).Msg("reading trace")
	records, err := trace.Parse(r, cfg.Signature)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return records, nil
}
