package sim

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

type RGB struct {
	R, G, B uint8
}

var (
	colWhite   = RGB{255, 255, 255}
	colRed     = RGB{255, 0, 0}
	colCyan    = RGB{0, 255, 255}
	colMagenta = RGB{255, 0, 255}
	colYellow  = RGB{255, 255, 0}
)

// Enough for the lane markings plus a full road of vehicles.
const maxRectVerts = 4096 * 6

// glOffset converts a byte offset to unsafe.Pointer for OpenGL VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

// Renderer draws the world as a streaming batch of colored quads with a
// single rect program.
type Renderer struct {
	prog uint32
	vao  uint32
	vbo  uint32

	uResolution int32
}

func NewRenderer(fbW, fbH int) (*Renderer, error) {
	prog, err := linkProgram(rectVertSrc, rectFragSrc)
	if err != nil {
		return nil, fmt.Errorf("rect program: %w", err)
	}
	r := &Renderer{prog: prog}

	// Streaming VBO: 5 floats per vertex (x, y, r, g, b).
	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	stride := int32(5 * 4)
	gl.BufferData(gl.ARRAY_BUFFER, maxRectVerts*int(stride), nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, glOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, glOffset(2*4))

	gl.UseProgram(prog)
	r.uResolution = gl.GetUniformLocation(prog, gl.Str("uResolution\x00"))
	gl.Uniform2f(r.uResolution, float32(fbW), float32(fbH))

	gl.BindVertexArray(0)
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	gl.ClearColor(0, 0, 0, 1)
	return r, nil
}

func (r *Renderer) BeginFrame() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.prog)
	gl.BindVertexArray(r.vao)
}

// DrawRects uploads and draws a vertex batch built with appendRect.
func (r *Renderer) DrawRects(buf []float32) {
	if len(buf) == 0 {
		return
	}
	n := len(buf) / 5
	if n > maxRectVerts {
		n = maxRectVerts
		buf = buf[:n*5]
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(buf)*4, gl.Ptr(&buf[0]))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(n))
}

func (r *Renderer) Destroy() {
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteProgram(r.prog)
}

// appendRect appends the two triangles of an axis-aligned rect.
func appendRect(buf []float32, x, y, w, h float64, col RGB) []float32 {
	x0, y0 := float32(x), float32(y)
	x1, y1 := float32(x+w), float32(y+h)
	cr := float32(col.R) / 255
	cg := float32(col.G) / 255
	cb := float32(col.B) / 255
	return append(buf,
		x0, y0, cr, cg, cb,
		x1, y0, cr, cg, cb,
		x1, y1, cr, cg, cb,
		x0, y0, cr, cg, cb,
		x1, y1, cr, cg, cb,
		x0, y1, cr, cg, cb,
	)
}

// appendDashedLine appends a horizontal dashed line centered on y as a run
// of short rects.
func appendDashedLine(buf []float32, x, y, length, thickness float64, col RGB) []float32 {
	for x0 := x; x0 < x+length; x0 += DashLength + DashGap {
		w := math.Min(DashLength, x+length-x0)
		buf = appendRect(buf, x0, y-thickness/2, w, thickness, col)
	}
	return buf
}
