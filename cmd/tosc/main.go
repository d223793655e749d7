// tosc - TouchOSC layout tool
//
// Usage:
//
//	tosc decode [file]                    Print the markup of a .tosc layout
//	tosc encode [file]                    Compress markup into a .tosc layout
//	tosc dump [--json] [file]             Print the control tree
//	tosc validate [--strict] [file]       Check a layout and list problems
//	tosc find [filters] [file]            Print the paths of matching controls
//	tosc build <blueprint>                Compile a YAML or JSONC blueprint
//	tosc copy-script --from A --to B [file]
//	                                      Copy A's script to every child of B
//	tosc version                          Print version info
//
// If no file is given, or the file is "-", input is read from stdin.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/pflag"

	"github.com/AlbertoV5/tosclib/blueprint"
	"github.com/AlbertoV5/tosclib/codec"
	"github.com/AlbertoV5/tosclib/lexml"
	"github.com/AlbertoV5/tosclib/tosc"
)

const libVersion = "0.1.0"

// errInvalid makes validate exit non-zero without printing twice.
var errInvalid = errors.New("layout is invalid")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(os.Stderr, "tosc %s: %v\n", os.Args[1], err)
		}
		os.Exit(1)
	}
}

func run(cmd string, args []string, stdin io.Reader, stdout io.Writer) error {
	switch cmd {
	case "decode":
		return cmdDecode(args, stdin, stdout)
	case "encode":
		return cmdEncode(args, stdin, stdout)
	case "dump":
		return cmdDump(args, stdin, stdout)
	case "validate":
		return cmdValidate(args, stdin, stdout)
	case "find":
		return cmdFind(args, stdin, stdout)
	case "build":
		return cmdBuild(args, stdout)
	case "copy-script":
		return cmdCopyScript(args, stdin, stdout)
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "tosc %s\n", libVersion)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	}
	printUsage(os.Stderr)
	return fmt.Errorf("unknown command: %s", cmd)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `tosc - TouchOSC layout tool

Usage:
  tosc decode [--indent] [file]          Print the markup of a .tosc layout
  tosc encode [--level N] [file]         Compress markup into a .tosc layout
  tosc dump [--json] [file]              Print the control tree
  tosc validate [--strict] [--expect-fingerprint HEX] [file]
                                         Check a layout and list problems
  tosc find [--type T] [--name N] [--match RE] [--id ID] [file]
                                         Print the paths of matching controls
  tosc build <blueprint.yaml|.jsonc>     Compile a blueprint into a layout
  tosc copy-script --from A --to B [file]
                                         Copy A's script to every child of B
  tosc version                           Print version info

Common options:
  -o, --output FILE   Write to FILE instead of stdout
  -v, --verbose       Log parse details to stderr
  --max-size N        Limit on decompressed size in bytes

If no file is given, reads from stdin.

Examples:
  tosc decode --indent mixer.tosc > mixer.xml
  tosc encode mixer.xml -o mixer.tosc
  tosc find --type FADER mixer.tosc
  tosc build mixer.yaml -o mixer.tosc
`)
}

// ============================================================
// Shared Flags
// ============================================================

// common holds the flags every command accepts.
type common struct {
	output  string
	verbose bool
	maxSize int64
	level   int
}

func newFlagSet(name string, c *common) *pflag.FlagSet {
	fs := pflag.NewFlagSet("tosc "+name, pflag.ContinueOnError)
	fs.StringVarP(&c.output, "output", "o", "", "write to this file instead of stdout")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "log parse details to stderr")
	fs.Int64Var(&c.maxSize, "max-size", codec.MaxDecodedSize, "limit on decompressed size in bytes")
	fs.IntVar(&c.level, "level", codec.DefaultLevel, "compression level (-1 default, 0-9)")
	return fs
}

func (c *common) logger() *slog.Logger {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (c *common) parseOptions() tosc.ParseOptions {
	opts := tosc.DefaultParseOptions()
	opts.Logger = c.logger()
	return opts
}

func (c *common) codecOptions() []codec.Option {
	return []codec.Option{codec.WithMaxSize(c.maxSize), codec.WithLevel(c.level)}
}

// readInput reads the single positional argument, or stdin when there
// is none.
func readInput(fs *pflag.FlagSet, stdin io.Reader) ([]byte, error) {
	switch fs.NArg() {
	case 0:
		return io.ReadAll(stdin)
	case 1:
		if fs.Arg(0) == "-" {
			return io.ReadAll(stdin)
		}
		return os.ReadFile(fs.Arg(0))
	}
	return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(1))
}

// writeOutput writes data to the --output file or stdout.
func (c *common) writeOutput(stdout io.Writer, data []byte) error {
	if c.output == "" || c.output == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(c.output, data, 0o644)
}

func (c *common) load(fs *pflag.FlagSet, stdin io.Reader) (*tosc.Document, error) {
	data, err := readInput(fs, stdin)
	if err != nil {
		return nil, err
	}
	doc, err := tosc.LoadWithOptions(data, c.parseOptions(), c.codecOptions()...)
	if err != nil {
		return nil, err
	}
	c.logger().Debug("layout loaded",
		"controls", countControls(doc.Root()),
		"fingerprint", codec.FormatFingerprint(doc.Fingerprint()))
	return doc, nil
}

func countControls(root *tosc.Control) int {
	n := 0
	for range tosc.FindAll(root, tosc.Any) {
		n++
	}
	return n
}

// ============================================================
// Conversion Commands
// ============================================================

// cmdDecode: .tosc -> markup
func cmdDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	var c common
	indent := false
	fs := newFlagSet("decode", &c)
	fs.BoolVar(&indent, "indent", false, "indent the markup")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := readInput(fs, stdin)
	if err != nil {
		return err
	}
	root, err := codec.Decode(data, c.codecOptions()...)
	if err != nil {
		return err
	}
	if indent {
		return c.writeOutput(stdout, lexml.EmitIndent(root, "  "))
	}
	return c.writeOutput(stdout, lexml.Emit(root))
}

// cmdEncode: markup -> .tosc. The markup is checked against the schema
// unless --raw is given.
func cmdEncode(args []string, stdin io.Reader, stdout io.Writer) error {
	var c common
	raw := false
	fs := newFlagSet("encode", &c)
	fs.BoolVar(&raw, "raw", false, "skip the schema check")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := readInput(fs, stdin)
	if err != nil {
		return err
	}
	root, err := codec.DecodeMarkup(data)
	if err != nil {
		return err
	}
	if !raw {
		if _, err := tosc.ParseDocumentWithOptions(root, c.parseOptions()); err != nil {
			return err
		}
	}
	return c.writeOutput(stdout, codec.Encode(root, c.codecOptions()...))
}

// cmdBuild: blueprint -> .tosc
func cmdBuild(args []string, stdout io.Writer) error {
	var c common
	markup := false
	fs := newFlagSet("build", &c)
	fs.BoolVar(&markup, "markup", false, "write markup instead of a compressed layout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one blueprint file")
	}

	bp, err := blueprint.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	doc, err := blueprint.Build(bp)
	if err != nil {
		return err
	}
	c.logger().Debug("blueprint built", "file", fs.Arg(0), "controls", countControls(doc.Root()))
	if markup {
		return c.writeOutput(stdout, doc.Markup())
	}
	return c.writeOutput(stdout, doc.Save(c.codecOptions()...))
}

// ============================================================
// Inspection Commands
// ============================================================

// cmdDump prints one line per control, indented by depth.
func cmdDump(args []string, stdin io.Reader, stdout io.Writer) error {
	var c common
	asJSON := false
	fs := newFlagSet("dump", &c)
	fs.BoolVar(&asJSON, "json", false, "print the tree as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	doc, err := c.load(fs, stdin)
	if err != nil {
		return err
	}
	if asJSON {
		data, err := doc.JSON()
		if err != nil {
			return err
		}
		return c.writeOutput(stdout, append(data, '\n'))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "lexml version=%s\n", doc.Version)
	dumpControl(&b, doc.Root(), 1)
	return c.writeOutput(stdout, []byte(b.String()))
}

func dumpControl(b *strings.Builder, ctl *tosc.Control, depth int) {
	pad := strings.Repeat("  ", depth)
	if ctl.Opaque() {
		fmt.Fprintf(b, "%s%s (opaque) %s\n", pad, ctl.Type(), ctl.ID())
		return
	}
	fmt.Fprintf(b, "%s%s %q %s", pad, ctl.Type(), ctl.Name(), ctl.ID())
	if f, ok := ctl.Frame(); ok {
		fmt.Fprintf(b, " frame=%g,%g,%g,%g", f.X, f.Y, f.W, f.H)
	}
	if n := len(ctl.Messages()); n > 0 {
		fmt.Fprintf(b, " messages=%d", n)
	}
	b.WriteByte('\n')
	for _, ch := range ctl.Children() {
		dumpControl(b, ch, depth+1)
	}
}

// cmdValidate reports every problem found in the layout.
func cmdValidate(args []string, stdin io.Reader, stdout io.Writer) error {
	var c common
	strict := false
	expect := ""
	fs := newFlagSet("validate", &c)
	fs.BoolVar(&strict, "strict", false, "treat unknown content as errors")
	fs.StringVar(&expect, "expect-fingerprint", "", "fail unless the layout has this fingerprint")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var want [32]byte
	if expect != "" {
		h, err := codec.ParseFingerprint(expect)
		if err != nil {
			return err
		}
		want = h
	}
	doc, err := c.load(fs, stdin)
	if err != nil {
		return err
	}

	v := tosc.NewValidator()
	if strict {
		v = tosc.NewStrictValidator()
	}
	result := v.Validate(doc.Root())

	var b strings.Builder
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "error   %s [%s] %s\n", e.Path, e.Code, e.Message)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(&b, "warning %s [%s] %s\n", w.Path, w.Code, w.Message)
	}
	got := doc.Fingerprint()
	fmt.Fprintf(&b, "%d errors, %d warnings, fingerprint %s\n",
		len(result.Errors), len(result.Warnings), codec.FormatFingerprint(got))
	if err := c.writeOutput(stdout, []byte(b.String())); err != nil {
		return err
	}
	if !result.Valid {
		return errInvalid
	}
	if expect != "" && got != want {
		return fmt.Errorf("fingerprint mismatch: have %s, want %s",
			codec.FormatFingerprint(got), codec.FormatFingerprint(want))
	}
	return nil
}

// cmdFind prints the path, type and name of every control matching all
// given filters.
func cmdFind(args []string, stdin io.Reader, stdout io.Writer) error {
	var c common
	var typ, name, match, id string
	fs := newFlagSet("find", &c)
	fs.StringVar(&typ, "type", "", "control type, e.g. FADER")
	fs.StringVar(&name, "name", "", "exact control name")
	fs.StringVar(&match, "match", "", "regular expression matching the whole name")
	fs.StringVar(&id, "id", "", "control ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	preds := []tosc.Predicate{tosc.Any}
	if typ != "" {
		preds = append(preds, tosc.ByType(tosc.ControlType(strings.ToUpper(typ))))
	}
	if name != "" {
		preds = append(preds, tosc.ByName(name))
	}
	if match != "" {
		re, err := regexp.Compile(match)
		if err != nil {
			return fmt.Errorf("--match: %w", err)
		}
		preds = append(preds, tosc.MatchName(re))
	}
	if id != "" {
		preds = append(preds, tosc.ByID(id))
	}

	doc, err := c.load(fs, stdin)
	if err != nil {
		return err
	}
	var b strings.Builder
	for ctl := range tosc.FindAll(doc.Root(), tosc.And(preds...)) {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", ctl.Path(), ctl.Type(), ctl.Name())
	}
	return c.writeOutput(stdout, []byte(b.String()))
}

// ============================================================
// Editing Commands
// ============================================================

// cmdCopyScript copies the script property of one control to every
// child of a target group and writes the edited layout.
func cmdCopyScript(args []string, stdin io.Reader, stdout io.Writer) error {
	var c common
	var from, to string
	fs := newFlagSet("copy-script", &c)
	fs.StringVar(&from, "from", "", "name of the control holding the script")
	fs.StringVar(&to, "to", "", "name of the group whose children receive it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if from == "" || to == "" {
		return fmt.Errorf("--from and --to are required")
	}

	doc, err := c.load(fs, stdin)
	if err != nil {
		return err
	}
	src := tosc.FindFirst(doc.Root(), tosc.ByName(from))
	if src == nil {
		return fmt.Errorf("no control named %q", from)
	}
	dst := tosc.FindFirst(doc.Root(), tosc.ByName(to))
	if dst == nil {
		return fmt.Errorf("no control named %q", to)
	}

	log := c.logger()
	for _, child := range dst.Children() {
		if err := tosc.CopyProperty(src, child, "script"); err != nil {
			return fmt.Errorf("%s: %w", child.Path(), err)
		}
		log.Debug("script copied", "to", child.Name(), "path", child.Path().String())
	}
	return c.writeOutput(stdout, doc.Save(c.codecOptions()...))
}
