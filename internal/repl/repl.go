package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"linebasic/internal/fault"
	"linebasic/internal/runtimeio"
	"linebasic/internal/session"
)

const prompt = "] "

type Options struct {
	// Interactive prints the banner and a prompt before each line.
	Interactive bool
	MaxSteps    int64
	Logger      *zerolog.Logger
	Session     *session.Session
}

// Start reads lines from in until QUIT or end of input. Numbered lines edit
// the program; anything else is a console command or a direct statement.
func Start(in io.Reader, out io.Writer, opts Options) {
	s := opts.Session
	if s == nil {
		s = session.New()
	}
	if opts.Logger != nil {
		s.SetLogger(*opts.Logger)
	}
	s.SetMaxSteps(opts.MaxSteps)

	console := runtimeio.NewConsole(in, out)
	r := &repl{s: s, out: out, console: console}

	if opts.Interactive {
		fmt.Fprint(out, "linebasic (QUIT or Ctrl+D to exit)\n")
	}
	for !r.quit {
		if opts.Interactive {
			fmt.Fprint(out, prompt)
		}
		line, err := runtimeio.ReadLine(console.Reader())
		if err != nil {
			if opts.Interactive {
				fmt.Fprint(out, "\n")
			}
			return
		}
		r.handle(line)
	}
}

type repl struct {
	s       *session.Session
	out     io.Writer
	console *runtimeio.Console
	quit    bool
}

func (r *repl) handle(line string) {
	line = strings.TrimLeft(line, " \t")
	if line == "" {
		return
	}
	ok, err := r.s.Submit(line)
	if ok {
		r.report(err)
		return
	}
	r.report(r.command(line))
}

func (r *repl) command(line string) error {
	fields := strings.Fields(line)
	word := fields[0]
	bare := len(fields) == 1

	switch word {
	case "ASM":
		if !bare {
			return &fault.SyntaxError{Col: len(word) + 2}
		}
		return r.s.Asm(r.out)
	case "CLEAR":
		r.s.Clear()
	case "HELP":
		fmt.Fprintln(r.out, "Sorry, not implemented.")
	case "LIST":
		return r.s.List(r.out)
	case "QUIT":
		if !bare {
			return &fault.SyntaxError{Col: len(word) + 2}
		}
		r.quit = true
	case "RUN":
		if !bare {
			return &fault.SyntaxError{Col: len(word) + 2}
		}
		return r.s.Run(r.console)
	case "INPUT", "PRINT", "LET":
		return r.s.Immediate(line, r.console)
	default:
		return &fault.SyntaxError{Col: 1}
	}
	return nil
}

func (r *repl) report(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(r.out, fault.Label(err))
	if errors.Is(err, fault.ErrEndOfFile) {
		r.quit = true
	}
}
