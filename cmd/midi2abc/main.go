// Package main is the entry point for the midi2abc CLI
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/james-see/midi2abc/pkg/api"
	"github.com/james-see/midi2abc/pkg/converter"
	"github.com/james-see/midi2abc/pkg/smf"
	"github.com/james-see/midi2abc/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks failures caused by how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{fmt.Errorf(format, args...)}
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

type app struct {
	vals    converter.OptionValues
	input   string
	output  string
	asJSON  bool
	port    int
	verbose bool
	logger  *zap.Logger
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit status:
// 0 on success, 2 for usage errors and 1 for anything else.
func execute(args []string, stdout, stderr io.Writer) int {
	a := &app{logger: zap.NewNop()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	_ = a.logger.Sync()
	if err == nil {
		return 0
	}

	fmt.Fprintln(stderr, "Error:", err)
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.Name())
		return 2
	}
	return 1
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "midi2abc [input.mid]",
		Short: "Transcribe Standard MIDI Files into ABC notation",
		Long: `midi2abc reads a Standard MIDI File and writes an ABC tune: header fields,
an estimated or given key, and a body quantized to sixteenth notes with
triplets, chords, ties, broken rhythms and accidentals.

Examples:
  midi2abc tune.mid
  midi2abc -f tune.mid -o tune.abc -m 6/8 --aux 8
  midi2abc tune.mid -k -2 --bpl 8 --nt
  midi2abc inspect tune.mid
  midi2abc tui
  midi2abc serve --port 8080`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:              usageArgs(cobra.MaximumNArgs(1)),
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setupLogging,
		RunE:              a.runTranscribe,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	f := root.Flags()
	f.StringVarP(&a.input, "file", "f", "", "Input MIDI file")
	f.StringVarP(&a.output, "output", "o", "", "Output ABC file (default: stdout)")

	pf := root.PersistentFlags()
	pf.BoolVar(&a.verbose, "verbose", false, "Log decoding and transcription details to stderr")
	pf.StringVarP(&a.vals.Key, "key", "k", "", "Key name or signed sharps count, e.g. G, f#m, -2 (default: estimated)")
	pf.StringVarP(&a.vals.Meter, "meter", "m", "", "Meter num/den (default: from file, else 3/4)")
	pf.StringVarP(&a.vals.Length, "length", "l", "", "Unit note length num/den (default: 1/16)")
	pf.IntVar(&a.vals.Aux, "aux", 0, "Unit note length denominator, overrides --length")
	pf.IntVar(&a.vals.BarsPerLine, "bpl", 4, "Bars per line")
	pf.StringVar(&a.vals.Title, "title", "", "T: field (default: first track name)")
	pf.StringVar(&a.vals.Source, "source", "", "S: field")
	pf.IntVarP(&a.vals.Index, "index", "x", 1, "X: reference number")
	pf.IntVar(&a.vals.Anacrusis, "anacrusis", 0, "Number of pickup notes before the first full bar")
	pf.StringVar(&a.vals.Channels, "channels", "0-15", "MIDI channels to transcribe, lo-hi or a single channel")
	pf.BoolVar(&a.vals.NoTriplets, "nt", false, "Disable triplets and broken rhythms")
	pf.BoolVar(&a.vals.NoBeamBreaks, "nbb", false, "Disable beam-break spacing")
	pf.BoolVar(&a.vals.SlurEighths, "s8", false, "Slur pairs of eighth notes")
	pf.BoolVar(&a.vals.SlurSixteenths, "s16", false, "Slur runs of sixteenth notes")
	pf.BoolVar(&a.vals.SlurTriplets, "st", false, "Slur triplets")

	inspectCmd := &cobra.Command{
		Use:   "inspect <input.mid>",
		Short: "Summarize the tracks, tempo, meter and key of a MIDI file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE:  a.runInspect,
	}
	inspectCmd.Flags().BoolVar(&a.asJSON, "json", false, "Print the summary as JSON")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive terminal UI",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  a.runTUI,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  a.runServe,
	}
	serveCmd.Flags().IntVarP(&a.port, "port", "p", 8080, "Server port")

	root.AddCommand(inspectCmd, tuiCmd, serveCmd)
	return root
}

func (a *app) setupLogging(cmd *cobra.Command, _ []string) error {
	if !a.verbose {
		return nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.install(l)
	return nil
}

func (a *app) install(l *zap.Logger) {
	a.logger = l
	smf.SetLogger(l)
	converter.SetLogger(l)
	api.SetLogger(l)
}

func (a *app) options() (converter.Options, error) {
	opts, err := a.vals.Options()
	if err != nil {
		return opts, &usageError{err}
	}
	return opts, nil
}

// readInput treats a missing file as a usage error.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &usageError{err}
	}
	return data, err
}

func (a *app) runTranscribe(cmd *cobra.Command, args []string) error {
	input := a.input
	if len(args) == 1 {
		if input != "" {
			return usageErrorf("input given twice: %s and %s", input, args[0])
		}
		input = args[0]
	}
	if input == "" {
		return usageErrorf("no input MIDI file; pass it as an argument or with -f")
	}

	opts, err := a.options()
	if err != nil {
		return err
	}
	conv := converter.New(opts)

	if a.output != "" {
		return a.convertFile(conv, input)
	}

	data, err := readInput(input)
	if err != nil {
		return err
	}
	out, err := conv.MIDIToABC(data)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// convertFile writes to -o. An output name that is not .abc, or an input
// that is neither MIDI by name nor by content, is a usage error.
func (a *app) convertFile(conv *converter.Converter, input string) error {
	if _, err := os.Stat(input); errors.Is(err, fs.ErrNotExist) {
		return &usageError{err}
	}

	err := conv.ConvertFile(input, a.output)
	switch {
	case errors.Is(err, converter.ErrUnknownFormat), errors.Is(err, converter.ErrUnsupportedConversion):
		return &usageError{err}
	case err != nil:
		return fmt.Errorf("%s: %w", input, err)
	}
	a.logger.Info("transcribed", zap.String("input", input), zap.String("output", a.output))
	return nil
}

func (a *app) runInspect(cmd *cobra.Command, args []string) error {
	data, err := readInput(args[0])
	if err != nil {
		return err
	}
	sum, err := converter.Inspect(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	if a.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), sum.String())
	return err
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	opts, err := a.options()
	if err != nil {
		return err
	}
	return tui.Run(opts)
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	if !a.verbose {
		l, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		a.install(l)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Starting API server on port %d...\n", a.port)
	fmt.Fprintf(cmd.OutOrStdout(), "Swagger docs available at http://localhost:%d/swagger/index.html\n", a.port)
	return api.StartServer(a.port)
}
