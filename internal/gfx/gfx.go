// Package gfx runs a stored program in a window: PRINT output scrolls up a
// text screen and INPUT reads what is typed until Enter.
package gfx

import (
	"errors"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"linebasic/internal/fault"
	"linebasic/internal/gfx/screen"
	"linebasic/internal/session"
)

const (
	glyphW = 7
	glyphH = 13
	margin = 4
)

var (
	background = color.RGBA{0x10, 0x18, 0x20, 0xff}
	foreground = color.RGBA{0x9c, 0xf0, 0x9c, 0xff}
)

// ErrInterrupted is returned by Run when the window closes while the
// program is still executing.
var ErrInterrupted = errors.New("INTERRUPTED")

type Options struct {
	Title string
	Cols  int
	Rows  int
	Scale int
}

func (o *Options) defaults() {
	if o.Title == "" {
		o.Title = "linebasic"
	}
	if o.Cols <= 0 {
		o.Cols = 64
	}
	if o.Rows <= 0 {
		o.Rows = 24
	}
	if o.Scale <= 0 {
		o.Scale = 2
	}
}

type console struct {
	opts   Options
	screen *screen.Screen
	lines  chan string
	done   chan error

	closeOnce sync.Once
	status    string
	finished  bool
	err       error
	runes     []rune
}

// Run opens the window and executes the session's program on its own
// goroutine. Closing the window ends pending input with END OF FILE.
// The returned error is the program's, not the window's, or ErrInterrupted
// when the window went away first.
func Run(sess *session.Session, opts Options) error {
	opts.defaults()

	c := &console{
		opts:   opts,
		screen: screen.New(opts.Rows),
		lines:  make(chan string, 1),
		done:   make(chan error, 1),
		status: "RUNNING",
	}
	io := screen.NewChanIO(c.screen, c.lines)

	go func() {
		c.done <- sess.Run(io)
	}()

	w, h := c.size()
	ebiten.SetWindowSize(w*opts.Scale, h*opts.Scale)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(c); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return c.result()
}

// result reports how the program ended. A program that finished on the
// last frame is still collected before falling back to ErrInterrupted.
func (c *console) result() error {
	if !c.finished {
		select {
		case err := <-c.done:
			c.finish(err)
		default:
			return ErrInterrupted
		}
	}
	return c.err
}

func (c *console) size() (int, int) {
	return c.opts.Cols*glyphW + 2*margin, (c.opts.Rows+1)*glyphH + 2*margin
}

func (c *console) finish(err error) {
	c.finished = true
	c.err = err
	switch {
	case err == nil:
		c.status = "DONE"
	case errors.Is(err, fault.ErrEndOfFile):
		c.status = fault.Label(err)
	default:
		c.screen.Println(fault.Label(err))
		c.status = "STOPPED"
	}
	c.status += " - ESC TO CLOSE"
}

func (c *console) closeInput() {
	c.closeOnce.Do(func() { close(c.lines) })
}

func (c *console) Update() error {
	c.runes = ebiten.AppendInputChars(c.runes[:0])
	for _, r := range c.runes {
		c.screen.Type(r)
	}
	if repeating(ebiten.KeyBackspace) {
		c.screen.Backspace()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		if line, ok := c.screen.Submit(); ok {
			c.lines <- line
		}
	}

	if !c.finished {
		select {
		case err := <-c.done:
			c.finish(err)
		default:
		}
	}

	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		c.closeInput()
		return ebiten.Termination
	}
	return nil
}

func (c *console) Draw(dst *ebiten.Image) {
	dst.Fill(background)
	for i, line := range c.screen.Snapshot() {
		text.Draw(dst, line, basicfont.Face7x13, margin, margin+(i+1)*glyphH-2, foreground)
	}
	_, h := c.size()
	ebitenutil.DebugPrintAt(dst, c.status, margin, h-margin-glyphH-2)
}

func (c *console) Layout(outsideWidth, outsideHeight int) (int, int) {
	return c.size()
}

// repeating reports a key press and then auto-repeat while it is held.
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	if d == 1 {
		return true
	}
	return d >= 30 && d%4 == 0
}
