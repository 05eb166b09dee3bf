package border

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/onair-indicator/pkg/display"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
)

type fakeSurface struct {
	frame    indicator.Frame
	shown    bool
	color    indicator.Color
	disposed bool
}

func (this *fakeSurface) Show() error { this.shown = true; return nil }

func (this *fakeSurface) Hide() error { this.shown = false; return nil }

func (this *fakeSurface) Move(f indicator.Frame) error { this.frame = f; return nil }

func (this *fakeSurface) SetColor(c indicator.Color) error { this.color = c; return nil }

func (this *fakeSurface) Dispose() error { this.disposed = true; return nil }

type fakeScreens struct {
	frames []indicator.Frame
}

func (this *fakeScreens) Frames() ([]indicator.Frame, error) {
	return this.frames, nil
}

type surfaceFactory struct {
	created []*fakeSurface
	fail    bool
}

func (this *surfaceFactory) create(f indicator.Frame) (indicator.Surface, error) {
	if this.fail {
		return nil, assert.AnError
	}
	result := &fakeSurface{frame: f}
	this.created = append(this.created, result)
	return result, nil
}

func twoScreens() *fakeScreens {
	return &fakeScreens{frames: []indicator.Frame{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 0, Width: 2560, Height: 1440},
	}}
}

func TestNew_createsFourBandSurfacesPerScreen(t *testing.T) {
	factory := &surfaceFactory{}
	instance, err := New(NewConfiguration(), twoScreens(), factory.create)
	require.NoError(t, err)

	require.Len(t, factory.created, 8)
	assert.Equal(t, indicator.Frame{X: 0, Y: 0, Width: 1920, Height: 6}, factory.created[0].frame)
	assert.Equal(t, indicator.Frame{X: 0, Y: 1074, Width: 1920, Height: 6}, factory.created[1].frame)
	assert.Equal(t, indicator.Frame{X: 0, Y: 6, Width: 6, Height: 1068}, factory.created[2].frame)
	assert.Equal(t, indicator.Frame{X: 1914, Y: 6, Width: 6, Height: 1068}, factory.created[3].frame)
	assert.Equal(t, indicator.Frame{X: 1920, Y: 0, Width: 2560, Height: 6}, factory.created[4].frame)
	assert.False(t, instance.Visible())
}

func TestBorder_thicknessShapesTheBands(t *testing.T) {
	conf := NewConfiguration()
	conf.Thickness = 10
	factory := &surfaceFactory{}
	screens := &fakeScreens{frames: []indicator.Frame{{X: 100, Y: 200, Width: 800, Height: 600}}}

	_, err := New(conf, screens, factory.create)
	require.NoError(t, err)

	require.Len(t, factory.created, 4)
	assert.Equal(t, indicator.Frame{X: 100, Y: 200, Width: 800, Height: 10}, factory.created[0].frame)
	assert.Equal(t, indicator.Frame{X: 100, Y: 790, Width: 800, Height: 10}, factory.created[1].frame)
	assert.Equal(t, indicator.Frame{X: 100, Y: 210, Width: 10, Height: 580}, factory.created[2].frame)
	assert.Equal(t, indicator.Frame{X: 890, Y: 210, Width: 10, Height: 580}, factory.created[3].frame)
}

func TestBorder_oversizedThicknessClampsInsteadOfOverlapping(t *testing.T) {
	conf := NewConfiguration()
	conf.Thickness = 2000
	factory := &surfaceFactory{}
	screens := &fakeScreens{frames: []indicator.Frame{{X: 0, Y: 0, Width: 100, Height: 80}}}

	_, err := New(conf, screens, factory.create)
	require.NoError(t, err)

	// Clamped to half the smaller edge; the side bands are left with no
	// area and are omitted.
	require.Len(t, factory.created, 2)
	assert.Equal(t, indicator.Frame{X: 0, Y: 0, Width: 100, Height: 40}, factory.created[0].frame)
	assert.Equal(t, indicator.Frame{X: 0, Y: 40, Width: 100, Height: 40}, factory.created[1].frame)
}

func TestNew_surfaceCreationFailureFailsRegistration(t *testing.T) {
	factory := &surfaceFactory{fail: true}
	_, err := New(NewConfiguration(), twoScreens(), factory.create)
	assert.Error(t, err)
}

func TestBorder_followsActivity(t *testing.T) {
	factory := &surfaceFactory{}
	instance, err := New(NewConfiguration(), twoScreens(), factory.create)
	require.NoError(t, err)

	require.NoError(t, instance.Update(indicator.NewContext(display.StateCameraActive, nil)))
	assert.True(t, instance.Visible())
	assert.True(t, factory.created[0].shown)
	assert.True(t, factory.created[1].shown)

	require.NoError(t, instance.Update(indicator.NewContext(display.StateIdle, nil)))
	assert.False(t, factory.created[0].shown)
	assert.False(t, factory.created[1].shown)
}

func TestBorder_suppressedStatesStayHidden(t *testing.T) {
	factory := &surfaceFactory{}
	instance, err := New(NewConfiguration(), twoScreens(), factory.create)
	require.NoError(t, err)

	require.NoError(t, instance.Update(indicator.NewContext(display.StateSuppressedActive, nil)))
	assert.False(t, instance.Visible())
	assert.False(t, factory.created[0].shown)
}

func TestBorder_muteWinsOverShow(t *testing.T) {
	factory := &surfaceFactory{}
	instance, err := New(NewConfiguration(), twoScreens(), factory.create)
	require.NoError(t, err)

	require.NoError(t, instance.Mute())
	require.NoError(t, instance.Show())
	assert.False(t, instance.Visible())

	require.NoError(t, instance.Unmute())
	assert.True(t, instance.Visible())
	assert.True(t, factory.created[0].shown)
}

func TestBorder_refreshRebuildsKeepingVisibility(t *testing.T) {
	factory := &surfaceFactory{}
	screens := twoScreens()
	instance, err := New(NewConfiguration(), screens, factory.create)
	require.NoError(t, err)

	require.NoError(t, instance.Update(indicator.NewContext(display.StateMicActive, nil)))
	require.True(t, instance.Visible())

	screens.frames = screens.frames[:1]
	require.NoError(t, instance.Refresh())

	// The old surfaces are gone, the new ones are visible again.
	for _, old := range factory.created[:8] {
		assert.True(t, old.disposed)
	}
	require.Len(t, factory.created, 12)
	assert.True(t, factory.created[8].shown)
	assert.True(t, instance.Visible())
}

func TestBorder_disposeReleasesEverything(t *testing.T) {
	factory := &surfaceFactory{}
	instance, err := New(NewConfiguration(), twoScreens(), factory.create)
	require.NoError(t, err)

	require.NoError(t, instance.Update(indicator.NewContext(display.StateBothActive, nil)))
	require.NoError(t, instance.Dispose())

	for _, v := range factory.created {
		assert.True(t, v.disposed)
	}
	assert.False(t, instance.Visible())
}
