package sim

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Input edge-detects key presses and mouse button releases between polls.
type Input struct {
	prevMouse map[glfw.MouseButton]bool
	prevKeys  map[glfw.Key]bool
}

func NewInput() *Input {
	return &Input{
		prevMouse: make(map[glfw.MouseButton]bool),
		prevKeys:  make(map[glfw.Key]bool),
	}
}

func (in *Input) JustPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

// JustReleased reports a release edge for the given mouse button.
func (in *Input) JustReleased(window *glfw.Window, btn glfw.MouseButton) bool {
	down := window.GetMouseButton(btn) == glfw.Press
	jr := !down && in.prevMouse[btn]
	in.prevMouse[btn] = down
	return jr
}
