package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goforj/godump"
	"github.com/rs/zerolog"

	"linebasic/internal/ast"
	"linebasic/internal/code"
	"linebasic/internal/config"
	"linebasic/internal/diag"
	"linebasic/internal/fault"
	"linebasic/internal/format"
	"linebasic/internal/gfx"
	"linebasic/internal/lint"
	"linebasic/internal/repl"
	"linebasic/internal/runtimeio"
	"linebasic/internal/session"
	"linebasic/internal/tools"
	"linebasic/internal/vm"
)

const usage = `usage: basic [command] [arguments]

commands:
  repl                          interactive console (default)
  run [-interp] [-max-steps N] [-trace] [file|dir]
  asm [file|dir]                print the linked bytecode
  check <file|dir>...           report problems without running
  fmt [-w] [-renum] <file|dir>...
  build -o <image> [file|dir]   write a bytecode image
  exec [-max-steps N] <image>   run a bytecode image
  test [-interp] [file|dir]...  run *.test.bas files
  gfx [-max-steps N] [file|dir] run in a window
  init [-name <name>]           start a project in the current directory
  tools install [-bin <dir>]    build basic and basic-lsp`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches one command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runRepl(nil, stdin, stdout, stderr)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "repl":
		return runRepl(rest, stdin, stdout, stderr)
	case "run":
		return runProgram(rest, stdin, stdout, stderr)
	case "asm":
		return runAsm(rest, stdout, stderr)
	case "check":
		return runCheck(rest, stdout, stderr)
	case "fmt":
		return runFmt(rest, stdout, stderr)
	case "build":
		return runBuild(rest, stdout, stderr)
	case "exec":
		return runExec(rest, stdin, stdout, stderr)
	case "test":
		return runTest(rest, stdout, stderr)
	case "gfx":
		return runGfx(rest, stderr)
	case "init":
		return runInit(rest, stdout, stderr)
	case "tools":
		return runTools(rest, stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprintln(stdout, usage)
		return 0
	default:
		fmt.Fprintln(stderr, "unknown command:", cmd)
		fmt.Fprintln(stderr, usage)
		return 2
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runRepl(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("repl", stderr)
	maxSteps := fs.Int64("max-steps", 0, "stop a RUN after this many instructions (0 = no limit)")
	trace := fs.Bool("trace", false, "log every linked line and executed instruction to stderr")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		fmt.Fprintln(stderr, "usage: basic repl [-max-steps N] [-trace]")
		return 2
	}

	opts := repl.Options{
		Interactive: stdin == os.Stdin && runtimeio.IsInteractive(),
		MaxSteps:    *maxSteps,
	}
	if *trace {
		log := traceLogger(stderr)
		opts.Logger = &log
	}
	repl.Start(stdin, stdout, opts)
	return 0
}

// loaded is a program file read into a fresh session.
type loaded struct {
	path     string
	sess     *session.Session
	manifest *config.Manifest
}

func targetArg(fs *flag.FlagSet) (string, bool) {
	switch fs.NArg() {
	case 0:
		return ".", true
	case 1:
		return fs.Arg(0), true
	default:
		return "", false
	}
}

// load resolves target to a program file and submits every line of it.
// Lines that fail are reported on stderr and make the load fail.
func load(target string, trace bool, stderr io.Writer) (*loaded, error) {
	path, man, err := config.ResolveEntry(target)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sess := session.New()
	if trace {
		sess.SetLogger(traceLogger(stderr))
		sess.OnCompile = func(n uint64, cmd ast.Command) {
			godump.Dump(n, cmd)
		}
	}
	lineErrs, err := sess.Load(f)
	if err != nil {
		return nil, err
	}
	for _, le := range lineErrs {
		fmt.Fprintf(stderr, "%s:%s\n", path, le)
	}
	if len(lineErrs) > 0 {
		return nil, fmt.Errorf("%s: %d bad lines", path, len(lineErrs))
	}
	return &loaded{path: path, sess: sess, manifest: man}, nil
}

func traceLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(zerolog.TraceLevel).
		With().Timestamp().Logger()
}

// stepLimit picks the flag when given, then the manifest, then no limit.
func stepLimit(flagValue int64, man *config.Manifest) int64 {
	if flagValue >= 0 {
		return flagValue
	}
	if man != nil {
		return man.MaxSteps
	}
	return 0
}

// reportRuntime prints a run failure as its label, with the location when
// the fault came from a running program.
func reportRuntime(w io.Writer, err error) {
	var re *fault.RuntimeError
	if errors.As(err, &re) && re.Line >= 0 {
		fmt.Fprintf(w, "%s %s\n", fault.Label(err), re.Where())
		return
	}
	fmt.Fprintln(w, fault.Label(err))
}

func runProgram(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("run", stderr)
	interp := fs.Bool("interp", false, "run with the line interpreter instead of the bytecode machine")
	maxSteps := fs.Int64("max-steps", -1, "stop after this many steps (0 = no limit; default from basic.toml)")
	trace := fs.Bool("trace", false, "dump compiled lines and log every executed instruction to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	target, ok := targetArg(fs)
	if !ok {
		fmt.Fprintln(stderr, "usage: basic run [-interp] [-max-steps N] [-trace] [file|dir]")
		return 2
	}

	p, err := load(target, *trace, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "run error:", err)
		return 1
	}

	limit := stepLimit(*maxSteps, p.manifest)
	console := runtimeio.NewConsole(stdin, stdout)
	if *interp {
		err = p.sess.Interpret(console, limit)
	} else {
		p.sess.SetMaxSteps(limit)
		err = p.sess.Run(console)
	}
	if err != nil {
		reportRuntime(stderr, err)
		return 1
	}
	return 0
}

func runAsm(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("asm", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	target, ok := targetArg(fs)
	if !ok {
		fmt.Fprintln(stderr, "usage: basic asm [file|dir]")
		return 2
	}
	p, err := load(target, false, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "asm error:", err)
		return 1
	}
	if err := p.sess.Asm(stdout); err != nil {
		fmt.Fprintln(stderr, "asm error:", err)
		return 1
	}
	return 0
}

func runCheck(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: basic check <file|dir> [more...]")
		return 2
	}
	files, err := collectProgramFiles(args)
	if err != nil {
		fmt.Fprintln(stderr, "check error:", err)
		return 1
	}

	hadErrors := false
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stderr, "check error:", err)
			hadErrors = true
			continue
		}
		diags := lint.Check(string(b))
		for _, d := range diags {
			fmt.Fprintln(stdout, d.Format(path))
		}
		if diag.HasErrors(diags) {
			hadErrors = true
		}
	}
	if hadErrors {
		return 1
	}
	return 0
}

func runFmt(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("fmt", stderr)
	writeBack := fs.Bool("w", false, "write result to (source) file instead of stdout")
	renum := fs.Bool("renum", false, "renumber lines and their jump targets")
	start := fs.Uint64("start", 10, "first line number with -renum")
	step := fs.Uint64("step", 10, "line number gap with -renum")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: basic fmt [-w] [-renum [-start N] [-step N]] <file|dir>...")
		return 2
	}

	files, err := collectProgramFiles(fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, "fmt error:", err)
		return 1
	}
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stderr, "fmt error:", err)
			return 1
		}
		formatted, err := format.Format(string(b), format.Options{Renumber: *renum, Start: *start, Step: *step})
		if err != nil {
			fmt.Fprintf(stderr, "fmt error: %s: %v\n", path, err)
			return 1
		}
		if !*writeBack {
			fmt.Fprint(stdout, formatted)
			continue
		}
		if string(b) != formatted {
			if err := writeFileAtomic(path, []byte(formatted)); err != nil {
				fmt.Fprintln(stderr, "fmt error:", err)
				return 1
			}
			fmt.Fprintf(stdout, "formatted %s\n", path)
		}
	}
	return 0
}

func runBuild(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("build", stderr)
	out := fs.String("o", "", "image file to write")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	target, ok := targetArg(fs)
	if !ok || *out == "" {
		fmt.Fprintln(stderr, "usage: basic build -o <image> [file|dir]")
		return 2
	}

	p, err := load(target, false, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "build error:", err)
		return 1
	}
	lk, err := p.sess.Link()
	if err != nil {
		fmt.Fprintln(stderr, "build error:", err)
		return 1
	}
	for _, j := range lk.Dangling {
		fmt.Fprintf(stderr, "%s: warning: line %d jumps to missing line %d\n", p.path, j.Line, j.Target)
	}
	img := code.Image{Slots: p.sess.Machine().Variables().Names(), Program: lk.Program}
	if err := os.WriteFile(*out, code.Encode(img), 0o644); err != nil {
		fmt.Fprintln(stderr, "build error:", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s (%d instructions, %d variables)\n", *out, len(img.Program), len(img.Slots))
	return 0
}

func runExec(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("exec", stderr)
	maxSteps := fs.Int64("max-steps", 0, "stop after this many instructions (0 = no limit)")
	trace := fs.Bool("trace", false, "log every executed instruction to stderr")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: basic exec [-max-steps N] [-trace] <image>")
		return 2
	}

	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, "exec error:", err)
		return 1
	}
	img, err := code.Decode(b)
	if err != nil {
		fmt.Fprintln(stderr, "exec error:", err)
		return 1
	}

	m := vm.New()
	for _, name := range img.Slots {
		m.Slot(name)
	}
	m.SetMaxSteps(*maxSteps)
	if *trace {
		m.SetLogger(traceLogger(stderr))
	}
	if err := m.Run(img.Program, runtimeio.NewConsole(stdin, stdout)); err != nil {
		reportRuntime(stderr, err)
		return 1
	}
	return 0
}

func runGfx(args []string, stderr io.Writer) int {
	fs := newFlagSet("gfx", stderr)
	maxSteps := fs.Int64("max-steps", -1, "stop after this many instructions (0 = no limit; default from basic.toml)")
	scale := fs.Int("scale", 2, "window scale")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	target, ok := targetArg(fs)
	if !ok {
		fmt.Fprintln(stderr, "usage: basic gfx [-max-steps N] [-scale N] [file|dir]")
		return 2
	}

	p, err := load(target, false, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "gfx error:", err)
		return 1
	}
	p.sess.SetMaxSteps(stepLimit(*maxSteps, p.manifest))

	title := filepath.Base(p.path)
	if p.manifest != nil && p.manifest.Name != "" {
		title = p.manifest.Name
	}
	if err := gfx.Run(p.sess, gfx.Options{Title: title, Scale: *scale}); err != nil {
		reportRuntime(stderr, err)
		return 1
	}
	return 0
}

func runInit(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("init", stderr)
	name := fs.String("name", "", "project name (default: directory name)")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		fmt.Fprintln(stderr, "usage: basic init [-name <name>] [dir]")
		return 2
	}
	dir := "."
	if fs.NArg() == 1 {
		dir = fs.Arg(0)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintln(stderr, "init error:", err)
		return 1
	}
	if *name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			fmt.Fprintln(stderr, "init error:", err)
			return 1
		}
		*name = filepath.Base(abs)
	}

	created, err := config.Init(dir, *name)
	for _, path := range created {
		fmt.Fprintf(stdout, "created %s\n", path)
	}
	if err != nil {
		fmt.Fprintln(stderr, "init error:", err)
		return 1
	}
	if len(created) == 0 {
		fmt.Fprintf(stdout, "%s already initialized\n", dir)
	}
	return 0
}

func runTools(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] != "install" {
		fmt.Fprintln(stderr, "usage: basic tools install [-bin <dir>]")
		return 2
	}

	fs := newFlagSet("tools install", stderr)
	binDir := fs.String("bin", "bin", "output directory for tools")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 0 {
		fmt.Fprintln(stderr, "usage: basic tools install [-bin <dir>]")
		return 2
	}

	paths, err := tools.Install(tools.InstallOptions{BinDir: *binDir})
	if err != nil {
		fmt.Fprintln(stderr, "install error:", err)
		return 1
	}
	fmt.Fprintf(stdout, "installed: %s\n", strings.Join(paths, ", "))
	return 0
}

func isProgramFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".bas")
}

func collectProgramFiles(targets []string) ([]string, error) {
	var files []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, target)
			continue
		}

		err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if base := filepath.Base(path); base == ".git" || base == "bin" {
					return filepath.SkipDir
				}
				return nil
			}
			if isProgramFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".basicfmt-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
