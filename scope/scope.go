// Package scope draws sample buffers as oscilloscope style traces on a
// display, one pane per channel.
package scope

import (
	"image/color"

	"tinygo.org/x/drivers"
)

var (
	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Black = color.RGBA{A: 0xff}
)

// Rect is a display area in pixels.
type Rect struct {
	X, Y, W, H int16
}

// Scope renders traces on a display.
type Scope struct {
	disp       drivers.Displayer
	Foreground color.RGBA
	Background color.RGBA
	// Gap is the number of blank rows between panes.
	Gap int16
}

// New returns a scope drawing white on black on d.
func New(d drivers.Displayer) *Scope {
	return &Scope{disp: d, Foreground: White, Background: Black, Gap: 2}
}

// Bounds returns the whole display area.
func (s *Scope) Bounds() Rect {
	w, h := s.disp.Size()
	return Rect{W: w, H: h}
}

// Panes splits the display into n stacked panes of equal height.
func (s *Scope) Panes(n int) []Rect {
	b := s.Bounds()
	if n <= 0 {
		return nil
	}
	h := (b.H - s.Gap*int16(n-1)) / int16(n)
	panes := make([]Rect, n)
	for i := range panes {
		panes[i] = Rect{X: b.X, Y: b.Y + int16(i)*(h+s.Gap), W: b.W, H: h}
	}
	return panes
}

// Clear fills r with the background color.
func (s *Scope) Clear(r Rect) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			s.disp.SetPixel(x, y, s.Background)
		}
	}
}

// Trace clears r and draws one period of samples across its width, sample
// value 0 on the bottom row and 255 on the top row. Consecutive columns are
// joined by vertical segments so steps stay visible.
func (s *Scope) Trace(r Rect, samples []byte) {
	s.Clear(r)
	if len(samples) == 0 || r.W <= 0 || r.H <= 0 {
		return
	}
	prev := int16(-1)
	for dx := int16(0); dx < r.W; dx++ {
		v := samples[int(dx)*len(samples)/int(r.W)]
		y := r.Y + r.H - 1 - int16(int(v)*int(r.H-1)/255)
		lo, hi := y, y
		if prev >= 0 {
			if prev < lo {
				lo = prev
			}
			if prev > hi {
				hi = prev
			}
		}
		for yy := lo; yy <= hi; yy++ {
			s.disp.SetPixel(r.X+dx, yy, s.Foreground)
		}
		prev = y
	}
}

// Show draws each buffer in its own pane, top to bottom, and updates the
// display.
func (s *Scope) Show(buffers ...[]byte) error {
	for i, r := range s.Panes(len(buffers)) {
		s.Trace(r, buffers[i])
	}
	return s.disp.Display()
}
