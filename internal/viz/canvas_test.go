package viz

import (
	"strings"
	"testing"
)

func TestCanvasPoint(t *testing.T) {
	c := NewCanvas(10, 5, 0, 1, 0, 1)

	c.Point(0.5, 0.5)
	if !strings.ContainsFunc(c.String(), func(r rune) bool { return r > 0x2800 }) {
		t.Error("expected a lit dot after Point")
	}

	c.Clear()
	for _, r := range c.String() {
		if r != 0x2800 && r != '\n' {
			t.Fatal("expected empty canvas after Clear")
		}
	}
}

func TestCanvasDropsOutOfView(t *testing.T) {
	c := NewCanvas(10, 5, 0, 1, 0, 1)
	c.Point(2, 2)
	c.Point(-1, 0.5)
	for _, r := range c.String() {
		if r != 0x2800 && r != '\n' {
			t.Fatal("out-of-view points should not draw")
		}
	}
}

func TestCanvasPolyline(t *testing.T) {
	c := NewCanvas(20, 10, 0, 10, 0, 10)
	c.Polyline([]float64{0, 5, 10}, []float64{0, 10, 0})

	lit := 0
	for _, r := range c.String() {
		if r > 0x2800 && r != '\n' {
			lit++
		}
	}
	if lit < 10 {
		t.Errorf("expected a drawn path, only %d cells lit", lit)
	}
}
