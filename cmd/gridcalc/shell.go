package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/vogtb/gridcalc/packages/persist"
	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

type command struct {
	usage string
	run   func(sh *Shell, args string) error
}

// commands is filled in init to allow help to list it
var commands map[string]command

func init() {
	commands = map[string]command{
		"set":    {"set <cell> <text>", (*Shell).set},
		"clear":  {"clear <cell>", (*Shell).clear},
		"get":    {"get <cell>...", (*Shell).get},
		"color":  {"color <cell>[,<cell>...] <AARRGGBB>", (*Shell).color},
		"undo":   {"undo", (*Shell).undo},
		"redo":   {"redo", (*Shell).redo},
		"deps":   {"deps <cell>", (*Shell).deps},
		"save":   {"save <file.xml|file.xlsx|file.html>", (*Shell).save},
		"export": {"export <file.xml|file.xlsx|file.html>", (*Shell).save},
		"load":   {"load <file.xml|file.xlsx>", (*Shell).load},
		"print":  {"print", (*Shell).print},
		"help":   {"help", (*Shell).help},
		"quit":   {"quit", (*Shell).quit},
	}
}

// Shell executes line commands against one sheet. edits go through a
// Runner so they are recorded for undo.
type Shell struct {
	runner    *spreadsheet.Runner
	out       io.Writer
	logger    zerolog.Logger
	sheetName string
	done      bool
}

// NewShell creates a shell over sheet printing to out
func NewShell(sheet *spreadsheet.Sheet, out io.Writer, logger zerolog.Logger, sheetName string) *Shell {
	sh := &Shell{
		out:       out,
		logger:    logger,
		sheetName: sheetName,
	}
	sh.runner = spreadsheet.NewRunner(sheet, sh.println)
	return sh
}

// Sheet returns the sheet the shell edits
func (sh *Shell) Sheet() *spreadsheet.Sheet {
	return sh.runner.Sheet()
}

// Done reports whether quit was executed
func (sh *Shell) Done() bool {
	return sh.done
}

// Exec runs one command line. blank lines and lines starting with '#' are
// ignored.
func (sh *Shell) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, args := cutWord(line)
	name = strings.ToLower(name)
	if name == "exit" {
		name = "quit"
	}

	cmd, exists := commands[name]
	if !exists {
		if guess := suggest(name, commandNames()); guess != "" {
			return fmt.Errorf("%w %q, did you mean %q?", ErrUnknownCommand, name, guess)
		}
		return fmt.Errorf("%w %q, try help", ErrUnknownCommand, name)
	}

	sh.logger.Debug().Str("command", name).Str("args", args).Msg("exec")
	return cmd.run(sh, args)
}

func (sh *Shell) println(line string) {
	fmt.Fprintln(sh.out, line)
}

// result hands back the runner error and clears it so the next command
// starts clean
func (sh *Shell) result() error {
	err := sh.runner.Err()
	sh.runner.Reset()
	return err
}

func (sh *Shell) set(args string) error {
	name, text := cutWord(args)
	if name == "" {
		return usageError("set")
	}
	sh.runner.Set(strings.ToUpper(name), text)
	return sh.result()
}

func (sh *Shell) clear(args string) error {
	name, rest := cutWord(args)
	if name == "" || rest != "" {
		return usageError("clear")
	}
	sh.runner.Clear(strings.ToUpper(name))
	return sh.result()
}

func (sh *Shell) get(args string) error {
	names := strings.Fields(strings.ToUpper(args))
	if len(names) == 0 {
		return usageError("get")
	}
	sh.runner.Log(names...)
	return sh.result()
}

func (sh *Shell) color(args string) error {
	targets, value := cutWord(args)
	if targets == "" || value == "" {
		return usageError("color")
	}
	color, err := spreadsheet.ParseColor(value)
	if err != nil {
		return err
	}
	names := strings.Split(strings.ToUpper(targets), ",")
	sh.runner.Paint(color, names...)
	return sh.result()
}

func (sh *Shell) undo(args string) error {
	cmd, ok := sh.Sheet().PeekUndo()
	if !ok {
		sh.println("nothing to undo")
		return nil
	}
	sh.runner.Undo()
	if err := sh.result(); err != nil {
		return err
	}
	sh.println("undid " + cmd.Describe())
	return nil
}

func (sh *Shell) redo(args string) error {
	cmd, ok := sh.Sheet().PeekRedo()
	if !ok {
		sh.println("nothing to redo")
		return nil
	}
	sh.runner.Redo()
	if err := sh.result(); err != nil {
		return err
	}
	sh.println("redid " + cmd.Describe())
	return nil
}

func (sh *Shell) deps(args string) error {
	name, rest := cutWord(args)
	if name == "" || rest != "" {
		return usageError("deps")
	}
	addr, err := spreadsheet.ParseAddress(strings.ToUpper(name))
	if err != nil {
		return err
	}

	precedents, err := sh.Sheet().Precedents(addr)
	if err != nil {
		return err
	}
	dependents, err := sh.Sheet().AllDependents(addr)
	if err != nil {
		return err
	}

	sh.println("reads:       " + joinNames(precedents))
	sh.println("affects:     " + joinNames(dependents))
	return nil
}

func (sh *Shell) save(args string) error {
	path := strings.TrimSpace(args)
	if path == "" {
		return usageError("save")
	}
	if err := saveFile(path, sh.Sheet(), sh.persistOptions()...); err != nil {
		return err
	}
	sh.println("saved " + path)
	return nil
}

func (sh *Shell) load(args string) error {
	path := strings.TrimSpace(args)
	if path == "" {
		return usageError("load")
	}
	unsupported, err := loadFile(path, sh.Sheet(), sh.persistOptions()...)
	if err != nil {
		return err
	}
	sh.println("loaded " + path)
	if len(unsupported) > 0 {
		sh.println("formulas kept as text: " + strings.Join(unsupported, ", "))
	}
	return nil
}

func (sh *Shell) print(args string) error {
	w := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CELL\tTEXT\tVALUE\tCOLOR")
	for _, cell := range sh.Sheet().NonEmptyCells() {
		text, _ := cell.Text()
		value, _ := cell.Value()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cell.Name(), text, value, spreadsheet.FormatColor(cell.BackgroundColor()))
	}
	return w.Flush()
}

func (sh *Shell) help(args string) error {
	for _, name := range commandNames() {
		sh.println("  " + commands[name].usage)
	}
	return nil
}

func (sh *Shell) quit(args string) error {
	sh.done = true
	return nil
}

func (sh *Shell) persistOptions() []persist.Option {
	return []persist.Option{
		persist.WithLogger(sh.logger),
		persist.WithSheetName(sh.sheetName),
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func usageError(name string) error {
	return fmt.Errorf("%w: %s", ErrUsage, commands[name].usage)
}

// cutWord splits off the first whitespace separated word and returns the
// trimmed remainder
func cutWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func joinNames(cells []*spreadsheet.Cell) string {
	if len(cells) == 0 {
		return "-"
	}
	names := make([]string, len(cells))
	for i, cell := range cells {
		names[i] = cell.Name()
	}
	return strings.Join(names, ", ")
}
