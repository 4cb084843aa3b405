// Package main provides the gridcalc command line: an expression
// calculator, an interactive sheet, a script runner and file conversion.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

// app carries the resolved settings from the root command to its
// subcommands
type app struct {
	configPath string
	rows       int
	columns    int
	logLevel   string

	cfg    Config
	logger zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "gridcalc",
		Short:        "Spreadsheet formula engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.IntVar(&a.rows, "rows", 0, "Number of sheet rows (default from config, 50)")
	flags.IntVar(&a.columns, "cols", 0, "Number of sheet columns, at most 26 (default from config, 26)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config, warn)")

	rootCmd.AddCommand(
		newExprCmd(a),
		newSheetCmd(a),
		newRunCmd(a),
		newConvertCmd(a),
	)
	return rootCmd
}

// setup loads the config file and applies flags that were set explicitly
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("rows") {
		cfg.Rows = a.rows
	}
	if flags.Changed("cols") {
		cfg.Columns = a.columns
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) newSheet() (*spreadsheet.Sheet, error) {
	return spreadsheet.New(a.cfg.Rows, a.cfg.Columns, spreadsheet.WithLogger(a.logger))
}

func newExprCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expr [expression]",
		Short: "Evaluate an expression with variables from a menu",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}
			menu, err := NewMenu(cmd.InOrStdin(), cmd.OutOrStdout(), initial)
			if err != nil {
				return err
			}
			return menu.Run()
		},
	}
}

func newSheetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sheet [file]",
		Short: "Edit a sheet interactively",
		Long: `Starts a line editor over an empty sheet, or over the xml or xlsx
file given as argument. Type help for the list of commands.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := a.newShell(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if err := sh.Exec("load " + args[0]); err != nil {
					return err
				}
			}
			return runInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), sh)
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>",
		Short: "Run sheet commands from a file, stopping at the first error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			sh, err := a.newShell(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runScript(f, args[0], sh)
		},
	}
}

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input.xml|input.xlsx> <output.xml|output.xlsx|output.html>",
		Short: "Convert a sheet between file formats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := a.newShell(io.Discard)
			if err != nil {
				return err
			}
			if err := sh.Exec("load " + args[0]); err != nil {
				return err
			}
			if err := sh.Exec("save " + args[1]); err != nil {
				return err
			}
			a.logger.Info().Str("from", args[0]).Str("to", args[1]).Msg("converted")
			return nil
		},
	}
}

func (a *app) newShell(out io.Writer) (*Shell, error) {
	sheet, err := a.newSheet()
	if err != nil {
		return nil, err
	}
	return NewShell(sheet, out, a.logger, a.cfg.SheetName), nil
}

// runInteractive reads commands until quit or end of input. errors are
// printed and the session goes on.
func runInteractive(in io.Reader, out io.Writer, sh *Shell) error {
	scanner := bufio.NewScanner(in)
	for !sh.Done() {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		if err := sh.Exec(scanner.Text()); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// runScript executes every line of a script and stops at the first error,
// reporting its line number
func runScript(r io.Reader, name string, sh *Shell) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for !sh.Done() && scanner.Scan() {
		line++
		if err := sh.Exec(scanner.Text()); err != nil {
			return fmt.Errorf("%s:%d: %s: %w", name, line, strings.TrimSpace(scanner.Text()), err)
		}
	}
	return scanner.Err()
}
