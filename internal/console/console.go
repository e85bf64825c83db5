// Package console drives an editing session from a line-oriented event
// script, one input event per line:
//
//	press 120 340      left button down at data coordinates
//	move 130 350       pointer motion
//	release            left button up
//	rpress 120 340     right button down (delete point)
//	enter | backspace | up | down | left | right | shift
//	save | end | quit
//	zoom 2 800 500     zoom the view by a factor around a point
//	pan 10 -5          shift the view in screen pixels
//
// Blank lines and lines starting with '#' are skipped. End of input
// behaves like closing the editor window.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ivlev/bezreel/internal/bezier"
	"github.com/ivlev/bezreel/internal/session"
)

// tracer writes to trace with key 'bezreel.console'
func tracer() tracing.Trace {
	return tracing.Select("bezreel.console")
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArguments      = errors.New("bad arguments")
)

type command struct {
	args int
	run  func(s *session.Session, a []float64) (session.Status, error)
}

func point(a []float64) bezier.Point {
	return bezier.Point{X: a[0], Y: a[1]}
}

func simple(f func(s *session.Session) session.Status) command {
	return command{run: func(s *session.Session, _ []float64) (session.Status, error) {
		return f(s), nil
	}}
}

var commands = map[string]command{
	"press": {args: 2, run: func(s *session.Session, a []float64) (session.Status, error) {
		return s.AddOrDragStart(point(a)), nil
	}},
	"move": {args: 2, run: func(s *session.Session, a []float64) (session.Status, error) {
		return s.DragMove(point(a)), nil
	}},
	"rpress": {args: 2, run: func(s *session.Session, a []float64) (session.Status, error) {
		return s.DeletePoint(point(a)), nil
	}},
	"release":   simple((*session.Session).DragEnd),
	"enter":     simple((*session.Session).CommitOrEdit),
	"backspace": simple((*session.Session).DeleteCurve),
	"up":        simple((*session.Session).MoveSelectionUp),
	"down":      simple((*session.Session).MoveSelectionDown),
	"shift":     simple((*session.Session).AutoComposite),
	"left": simple(func(s *session.Session) session.Status {
		return s.ChangeFrame(-1)
	}),
	"right": simple(func(s *session.Session) session.Status {
		return s.ChangeFrame(1)
	}),
	"save": {run: func(s *session.Session, _ []float64) (session.Status, error) {
		return s.SaveFrame()
	}},
	"end": {run: func(s *session.Session, _ []float64) (session.Status, error) {
		return session.Changed, s.EndSession(true)
	}},
	"quit": {run: func(s *session.Session, _ []float64) (session.Status, error) {
		return session.Changed, s.EndSession(false)
	}},
	"zoom": {args: 3, run: func(s *session.Session, a []float64) (session.Status, error) {
		if a[0] <= 0 {
			return session.Rejected, nil
		}
		s.SetView(s.View().Zoom(a[0], bezier.Point{X: a[1], Y: a[2]}))
		return session.Changed, nil
	}},
	"pan": {args: 2, run: func(s *session.Session, a []float64) (session.Status, error) {
		s.SetView(s.View().Pan(a[0], a[1]))
		return session.Changed, nil
	}},
}

// rejections explains refused operations to the user.
var rejections = map[string]string{
	"save":  "cannot save while a curve is in progress; press enter or delete its points first",
	"shift": "the mug needs exactly 3 points: origin, up, right",
	"zoom":  "zoom factor must be positive",
}

// Driver feeds script lines into a session.
type Driver struct {
	Session *session.Session
	// Out receives user-facing notices; nil discards them.
	Out io.Writer
}

// Exec runs a single command line.
func (d *Driver) Exec(line string) (session.Status, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return session.Unchanged, nil
	}
	name := strings.ToLower(fields[0])
	cmd, ok := commands[name]
	if !ok {
		return session.Unchanged, fmt.Errorf("%w %q", ErrUnknownCommand, fields[0])
	}
	if len(fields)-1 != cmd.args {
		return session.Unchanged, fmt.Errorf("%w: %s takes %d numbers, got %d", ErrArguments, name, cmd.args, len(fields)-1)
	}
	args := make([]float64, cmd.args)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return session.Unchanged, fmt.Errorf("%w: %s: %q is not a number", ErrArguments, name, f)
		}
		args[i] = v
	}
	st, err := cmd.run(d.Session, args)
	if st == session.Rejected {
		d.notify("[!] %s", rejections[name])
	}
	tracer().P("cmd", name).Debugf("%s", st)
	return st, err
}

// Run reads commands from r until the session ends, input runs out or ctx
// is cancelled. Running out of input ends the session without playback.
func (d *Driver) Run(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := d.Exec(sc.Text()); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if ended, _ := d.Session.Ended(); ended {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("line %d: %w", n+1, err)
	}
	tracer().Infof("input closed after %d lines", n)
	return d.Session.EndSession(false)
}

func (d *Driver) notify(format string, args ...any) {
	if d.Out != nil {
		fmt.Fprintf(d.Out, format+"\n", args...)
	}
}
