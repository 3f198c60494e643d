package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ErrClosed is returned by Render once a window close was requested.
var ErrClosed = errors.New("sim: window closed")

// Display owns the window, renderer, input and frame pacing. It reads world
// state but never mutates it, and only runs strictly between ticks.
type Display struct {
	window *glfw.Window
	rend   *Renderer
	input  *Input

	interval time.Duration
	last     time.Time
	titleAt  time.Time

	buf []float32
}

func NewDisplay(lanes, fps int) (*Display, error) {
	w := int(RoadLength)
	h := int(float64(lanes)*LaneWidth + RoadOffset + LaneWidth/2)
	window, err := initWindow(w, h)
	if err != nil {
		return nil, err
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}

	fbW, fbH := window.GetFramebufferSize()
	rend, err := NewRenderer(fbW, fbH)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	return &Display{
		window:   window,
		rend:     rend,
		input:    NewInput(),
		interval: time.Second / time.Duration(fps),
	}, nil
}

// Frame runs the per-frame event/pacing/draw sequence: poll events, honor
// close and pause requests, enforce the minimum tick duration, draw, and
// pause on a fresh collision.
func (d *Display) Frame(e *Env) error {
	glfw.PollEvents()
	if d.window.ShouldClose() || d.window.GetKey(glfw.KeyEscape) == glfw.Press {
		return ErrClosed
	}
	if d.input.JustReleased(d.window, glfw.MouseButtonLeft) {
		if err := d.pause(); err != nil {
			return err
		}
	}

	d.pace(d.interval)
	d.draw(e)

	if time.Since(d.titleAt) > 250*time.Millisecond {
		d.titleAt = time.Now()
		d.window.SetTitle(fmt.Sprintf("Traffic simulator, episode %d (%d cars, tick %d)",
			e.Episode(), len(e.Vehicles()), e.Tick()))
	}

	if e.Collision() != nil {
		PlaySound(SoundCrash)
		if err := d.pause(); err != nil {
			return err
		}
	}
	return nil
}

// pace sleeps away whatever remains of the frame interval.
func (d *Display) pace(interval time.Duration) {
	if !d.last.IsZero() {
		if wait := interval - time.Since(d.last); wait > 0 {
			time.Sleep(wait)
		}
	}
	d.last = time.Now()
}

// pause blocks, polling at a reduced rate, until the next mouse release or a
// close request.
func (d *Display) pause() error {
	PlaySound(SoundClick)
	for {
		d.pace(time.Second / PausePollFPS)
		glfw.PollEvents()
		if d.window.ShouldClose() || d.window.GetKey(glfw.KeyEscape) == glfw.Press {
			return ErrClosed
		}
		if d.input.JustReleased(d.window, glfw.MouseButtonLeft) {
			PlaySound(SoundClick)
			return nil
		}
	}
}

func (d *Display) draw(e *Env) {
	d.rend.BeginFrame()

	buf := d.buf[:0]
	for _, lane := range e.Lanes() {
		buf = appendDashedLine(buf, 0, lane.Min, RoadLength, LaneLineW, colWhite)
		buf = appendDashedLine(buf, 0, lane.Max, RoadLength, LaneLineW, colWhite)
		buf = appendDashedLine(buf, 0, lane.Mid, RoadLength, MidLineW, colRed)
	}
	for _, v := range e.Vehicles() {
		buf = appendRect(buf, v.Back(), v.Pos.Y(), v.Length, v.Width, vehicleColor(v))
	}
	d.buf = buf

	d.rend.DrawRects(buf)
	d.window.SwapBuffers()
}

func vehicleColor(v *Vehicle) RGB {
	switch {
	case v.Collided:
		return colRed
	case v.Passing():
		return colMagenta
	case v.Braked():
		return colYellow
	}
	return colCyan
}

func (d *Display) Destroy() {
	d.rend.Destroy()
	d.window.Destroy()
	glfw.Terminate()
}
