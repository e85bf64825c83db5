// Package session implements the frame editing state machine: point-level
// edits on an in-progress curve, promotion into the frame's drawing,
// re-editing and deletion of finished curves, and saving frames into a reel.
//
// Every operation runs to completion synchronously. Operations that change
// visible state call the Redrawer exactly once with the post-mutation state.
package session

import (
	"fmt"
	"image"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ivlev/bezreel/internal/bezier"
	"github.com/ivlev/bezreel/internal/canvas"
)

// tracer writes to trace with key 'bezreel.session'
func tracer() tracing.Trace {
	return tracing.Select("bezreel.session")
}

// Status is the outcome of a session operation.
type Status int

const (
	// Unchanged means the operation had nothing to do.
	Unchanged Status = iota
	// Changed means state was mutated and a redraw was issued.
	Changed
	// Rejected means a user-level precondition was not met (e.g. saving
	// with an unfinished curve). Callers should tell the user.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Reel is the frame sequence a session edits against.
type Reel interface {
	Len() int
	Frame(i int) image.Image
	Put(i int, img image.Image) error
}

// FrameRenderer rasterizes a finished drawing onto a blank canvas.
type FrameRenderer interface {
	RenderFrame(d bezier.Drawing) image.Image
}

// Redrawer displays the current editing state.
type Redrawer interface {
	Redraw(s Snapshot)
}

// DrawingStore persists drawings: the one each saved frame was rendered
// from, and the working drawing at the end of a session.
type DrawingStore interface {
	RecordFrame(index int, d bezier.Drawing) error
	SaveDrawing(d bezier.Drawing) error
}

// Snapshot is a copy of the session state for display.
type Snapshot struct {
	InProgress bezier.Curve
	Drawing    bezier.Drawing
	Cursor     int
	Dragged    int
	Frame      int
	FrameCount int
	Background image.Image
}

// Selected returns the index of the selected curve, or -1 in append mode.
func (s Snapshot) Selected() int {
	if s.Cursor < len(s.Drawing) {
		return s.Cursor
	}
	return -1
}

// Options configures a Session. Reel and Renderer are required.
type Options struct {
	Reel      Reel
	Renderer  FrameRenderer
	Redrawer  Redrawer
	Store     DrawingStore
	View      canvas.View
	Tolerance float64
}

// Session is the editing state of one frame-editing pass.
type Session struct {
	inProgress bezier.Curve
	drawing    bezier.Drawing
	cursor     int
	dragged    int
	frame      int

	reel      Reel
	renderer  FrameRenderer
	redrawer  Redrawer
	store     DrawingStore
	view      canvas.View
	tolerance float64

	ended bool
	play  bool
}

// New starts a session on the given drawing. Editing begins on the last
// frame of the reel with the cursor in append mode.
func New(drawing bezier.Drawing, opts Options) *Session {
	if opts.Reel == nil || opts.Renderer == nil {
		panic("session: Reel and Renderer are required")
	}
	if opts.Reel.Len() == 0 {
		panic("session: reel must hold at least the placeholder frame")
	}
	if opts.View == (canvas.View{}) {
		opts.View = canvas.DefaultView()
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = canvas.DefaultTolerance
	}
	s := &Session{
		drawing:   drawing.Clone(),
		dragged:   -1,
		frame:     opts.Reel.Len() - 1,
		reel:      opts.Reel,
		renderer:  opts.Renderer,
		redrawer:  opts.Redrawer,
		store:     opts.Store,
		view:      opts.View,
		tolerance: opts.Tolerance,
	}
	s.cursor = len(s.drawing)
	tracer().Infof("session started on frame %d with %d curves", s.frame, len(s.drawing))
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		InProgress: s.inProgress.Clone(),
		Drawing:    s.drawing.Clone(),
		Cursor:     s.cursor,
		Dragged:    s.dragged,
		Frame:      s.frame,
		FrameCount: s.reel.Len(),
		Background: s.reel.Frame(s.frame),
	}
}

// Ended reports whether EndSession was called, and if so whether the user
// asked for playback.
func (s *Session) Ended() (ended, play bool) {
	return s.ended, s.play
}

// Redraw issues a redraw of the current state without mutating it.
func (s *Session) Redraw() {
	if s.redrawer != nil {
		s.redrawer.Redraw(s.Snapshot())
	}
}

// SetView replaces the data-to-screen view used for hit-testing.
func (s *Session) SetView(v canvas.View) {
	s.view = v
	s.Redraw()
}

// View returns the current view.
func (s *Session) View() canvas.View {
	return s.view
}

// AddOrDragStart grabs the in-progress point under p, or appends p as a new
// point and grabs that.
func (s *Session) AddOrDragStart(p bezier.Point) Status {
	if !canvas.Contains(p) {
		return Unchanged
	}
	if i := s.view.Nearest(s.inProgress, p, s.tolerance); i >= 0 {
		s.dragged = i
		tracer().P("point", i).Debugf("drag start")
		return Unchanged
	}
	s.inProgress = append(s.inProgress, p)
	s.dragged = len(s.inProgress) - 1
	return s.changed("add point %v", p)
}

// DragMove moves the grabbed point to p.
func (s *Session) DragMove(p bezier.Point) Status {
	if s.dragged < 0 || !canvas.Contains(p) {
		return Unchanged
	}
	s.inProgress[s.dragged] = p
	return s.changed("move point %d to %v", s.dragged, p)
}

// DragEnd releases the grabbed point.
func (s *Session) DragEnd() Status {
	s.dragged = -1
	return Unchanged
}

// DeletePoint removes the in-progress point under p.
func (s *Session) DeletePoint(p bezier.Point) Status {
	if !canvas.Contains(p) {
		return Unchanged
	}
	i := s.view.Nearest(s.inProgress, p, s.tolerance)
	if i < 0 {
		return Unchanged
	}
	s.inProgress = append(s.inProgress[:i], s.inProgress[i+1:]...)
	switch {
	case s.dragged == i:
		s.dragged = -1
	case s.dragged > i:
		s.dragged--
	}
	return s.changed("delete point %d", i)
}

// CommitOrEdit finishes the in-progress curve if it has at least two points.
// Otherwise the selected curve is taken out of the drawing for re-editing;
// a lone transient point is discarded in that case.
func (s *Session) CommitOrEdit() Status {
	if s.inProgress.Drawable() {
		s.drawing = append(s.drawing, s.inProgress)
		s.inProgress = nil
		s.dragged = -1
		s.cursor = len(s.drawing)
		return s.changed("commit curve %d", len(s.drawing)-1)
	}
	if s.cursor >= len(s.drawing) {
		return Unchanged
	}
	i := s.cursor
	s.inProgress = s.drawing[i].Clone()
	s.drawing = append(s.drawing[:i:i], s.drawing[i+1:]...)
	s.dragged = -1
	s.cursor = len(s.drawing)
	return s.changed("edit curve %d", i)
}

// DeleteCurve removes the selected curve, or the last one in append mode.
func (s *Session) DeleteCurve() Status {
	if len(s.drawing) == 0 {
		return Unchanged
	}
	i := s.cursor
	if i == len(s.drawing) {
		i--
	}
	s.drawing = append(s.drawing[:i:i], s.drawing[i+1:]...)
	s.cursor = len(s.drawing)
	return s.changed("delete curve %d", i)
}

// MoveSelectionUp moves the cursor towards the first curve.
func (s *Session) MoveSelectionUp() Status {
	if s.cursor == 0 {
		return Unchanged
	}
	s.cursor--
	return s.changed("select %d", s.cursor)
}

// MoveSelectionDown moves the cursor towards append mode.
func (s *Session) MoveSelectionDown() Status {
	if s.cursor >= len(s.drawing) {
		return Unchanged
	}
	s.cursor++
	return s.changed("select %d", s.cursor)
}

// ChangeFrame moves the background frame by delta within the reel. The
// in-progress curve is kept.
func (s *Session) ChangeFrame(delta int) Status {
	next := min(max(s.frame+delta, 0), s.reel.Len()-1)
	if next == s.frame {
		return Unchanged
	}
	s.frame = next
	return s.changed("show frame %d", s.frame)
}

// AutoComposite turns exactly three in-progress points (origin, up, right)
// into the eight curves of the mug glyph.
func (s *Session) AutoComposite() Status {
	if len(s.inProgress) != 3 {
		tracer().P("points", len(s.inProgress)).Infof("composite needs exactly 3 points")
		return Rejected
	}
	p := s.inProgress
	s.drawing = append(s.drawing, compositeMug(p[0], p[1], p[2])...)
	s.inProgress = nil
	s.dragged = -1
	s.cursor = len(s.drawing)
	return s.changed("composite mug from %v %v %v", p[0], p[1], p[2])
}

// SaveFrame renders the drawing on a blank canvas and stores it at the frame
// after the active one, which then becomes active. It is rejected while a
// curve is in progress.
func (s *Session) SaveFrame() (Status, error) {
	if len(s.inProgress) > 0 {
		tracer().Infof("save rejected: unfinished curve with %d points", len(s.inProgress))
		return Rejected, nil
	}
	next := s.frame + 1
	img := s.renderer.RenderFrame(s.drawing.Clone())
	if err := s.reel.Put(next, img); err != nil {
		return Unchanged, fmt.Errorf("save frame %d: %w", next, err)
	}
	s.frame = next
	var err error
	if s.store != nil {
		if rerr := s.store.RecordFrame(next, s.drawing.Clone()); rerr != nil {
			err = fmt.Errorf("record frame %d: %w", next, rerr)
		}
	}
	return s.changed("saved frame %d", next), err
}

// EndSession closes the session. The drawing is persisted whether or not
// the user asked for playback.
func (s *Session) EndSession(play bool) error {
	s.ended = true
	s.play = play
	tracer().P("play", play).Infof("session ended with %d curves", len(s.drawing))
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveDrawing(s.drawing.Clone()); err != nil {
		return fmt.Errorf("persist drawing: %w", err)
	}
	return nil
}

func (s *Session) changed(format string, args ...any) Status {
	s.check()
	tracer().Debugf(format, args...)
	s.Redraw()
	return Changed
}

func (s *Session) check() {
	assert(s.cursor >= 0 && s.cursor <= len(s.drawing), "cursor %d outside [0,%d]", s.cursor, len(s.drawing))
	assert(s.dragged >= -1 && s.dragged < len(s.inProgress), "dragged index %d outside in-progress curve", s.dragged)
	assert(s.frame >= 0 && s.frame < s.reel.Len(), "frame %d outside reel of %d", s.frame, s.reel.Len())
	for i, c := range s.drawing {
		assert(c.Drawable(), "curve %d has %d points", i, len(c))
	}
}

func assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("session: "+format, args...))
	}
}
