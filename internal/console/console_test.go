package console

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/bezreel/internal/bezier"
	"github.com/ivlev/bezreel/internal/reel"
	"github.com/ivlev/bezreel/internal/renderer"
	"github.com/ivlev/bezreel/internal/session"
	"github.com/ivlev/bezreel/internal/source"
)

type memStore struct {
	saved  bezier.Drawing
	frames map[int]bezier.Drawing
}

func (m *memStore) RecordFrame(i int, d bezier.Drawing) error {
	if m.frames == nil {
		m.frames = map[int]bezier.Drawing{}
	}
	m.frames[i] = d
	return nil
}

func (m *memStore) SaveDrawing(d bezier.Drawing) error {
	m.saved = d
	return nil
}

func newDriver(t *testing.T, d bezier.Drawing) (*Driver, *reel.Reel, *memStore, *bytes.Buffer) {
	t.Helper()
	r := reel.New(image.Image(source.Blank()))
	st := &memStore{}
	s := session.New(d, session.Options{
		Reel:     r,
		Renderer: renderer.New(0, 0),
		Store:    st,
	})
	out := &bytes.Buffer{}
	return &Driver{Session: s, Out: out}, r, st, out
}

func TestScriptDrawsAndSaves(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	drv, r, st, _ := newDriver(t, nil)
	script := `
# a line and a save
press 100 100
release
press 500 100
move 520 110
release
enter
save
end
press 1 1
`
	require.NoError(t, drv.Run(context.Background(), strings.NewReader(script)))

	want := bezier.Drawing{{{X: 100, Y: 100}, {X: 520, Y: 110}}}
	assert.Equal(t, want, st.saved)
	assert.Equal(t, want, st.frames[1])
	assert.Equal(t, 2, r.Len())
	ended, play := drv.Session.Ended()
	assert.True(t, ended)
	assert.True(t, play)
	assert.Empty(t, drv.Session.Snapshot().InProgress, "lines after end are not read")
}

func TestEOFClosesWithoutPlayback(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	drv, _, st, _ := newDriver(t, bezier.Drawing{{{X: 1, Y: 1}, {X: 2, Y: 2}}})
	require.NoError(t, drv.Run(context.Background(), strings.NewReader("up\nbackspace\n")))
	ended, play := drv.Session.Ended()
	assert.True(t, ended)
	assert.False(t, play)
	assert.Empty(t, st.saved)
}

func TestRejectionsAreReported(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	drv, r, _, out := newDriver(t, nil)
	st, err := drv.Exec("press 10 10")
	require.NoError(t, err)
	assert.Equal(t, session.Changed, st)

	st, err = drv.Exec("save")
	require.NoError(t, err)
	assert.Equal(t, session.Rejected, st)
	assert.Equal(t, 1, r.Len())

	st, _ = drv.Exec("shift")
	assert.Equal(t, session.Rejected, st)
	assert.Contains(t, out.String(), "in progress")
	assert.Contains(t, out.String(), "exactly 3 points")
}

func TestMugFromScript(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	drv, _, _, _ := newDriver(t, nil)
	for _, line := range []string{"press 100 100", "release", "press 100 300", "release", "press 300 100", "release", "SHIFT"} {
		_, err := drv.Exec(line)
		require.NoError(t, err, line)
	}
	snap := drv.Session.Snapshot()
	assert.Len(t, snap.Drawing, 8)
	assert.Empty(t, snap.InProgress)
}

func TestViewCommands(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	drv, _, _, _ := newDriver(t, nil)
	before := drv.Session.View()
	_, err := drv.Exec("zoom 2 800 500")
	require.NoError(t, err)
	assert.NotEqual(t, before, drv.Session.View())
	st, err := drv.Exec("zoom 0 1 1")
	require.NoError(t, err)
	assert.Equal(t, session.Rejected, st)
	_, err = drv.Exec("pan 10 -5")
	assert.NoError(t, err)
}

func TestScriptErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cases := map[string]error{
		"jump":          ErrUnknownCommand,
		"press 1":       ErrArguments,
		"press one two": ErrArguments,
		"enter 3":       ErrArguments,
	}
	for line, want := range cases {
		drv, _, _, _ := newDriver(t, nil)
		err := drv.Run(context.Background(), strings.NewReader("enter\n"+line+"\n"))
		if !errors.Is(err, want) {
			t.Errorf("%q: expected %v, got %v", line, want, err)
			continue
		}
		assert.Contains(t, err.Error(), "line 2")
	}
}
