// Package tui animates a solved trajectory in the terminal: the planar
// path of the first two states on a Braille canvas with a moving marker
// and a live state/input readout.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/flatgen/internal/viz"
)

const (
	canvasCols = 70
	canvasRows = 18
	frameRate  = 30
)

type tickMsg time.Time

// Playback is a tea.Model stepping through precomputed trajectory
// samples. It never re-solves; all data is evaluated up front.
type Playback struct {
	title      string
	times      []float64
	states     [][]float64
	inputs     [][]float64
	stateNames []string
	inputNames []string

	canvas  *viz.Canvas
	idx     int
	playing bool
	done    bool
}

func NewPlayback(title string, times []float64, states, inputs [][]float64, stateNames, inputNames []string) *Playback {
	xmin, xmax := bounds(states, 0)
	ymin, ymax := bounds(states, 1)

	return &Playback{
		title:      title,
		times:      times,
		states:     states,
		inputs:     inputs,
		stateNames: stateNames,
		inputNames: inputNames,
		canvas:     viz.NewCanvas(canvasCols, canvasRows, xmin, xmax, ymin, ymax),
		playing:    true,
	}
}

// bounds pads the sample range of state component i so the path never
// hugs the canvas border. Flat ranges get a unit of headroom.
func bounds(states [][]float64, i int) (lo, hi float64) {
	lo, hi = 0, 1
	for k, x := range states {
		if i >= len(x) {
			continue
		}
		if k == 0 || x[i] < lo {
			lo = x[i]
		}
		if k == 0 || x[i] > hi {
			hi = x[i]
		}
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func (p *Playback) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (p *Playback) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return p, tea.Quit
		case " ":
			p.playing = !p.playing
		case "r":
			p.idx = 0
			p.done = false
			p.playing = true
		}
	case tickMsg:
		if p.playing && !p.done {
			p.idx++
			if p.idx >= len(p.times) {
				p.idx = len(p.times) - 1
				p.done = true
			}
		}
		return p, tick()
	}
	return p, nil
}

func (p *Playback) View() string {
	p.canvas.Clear()

	// Full path so far, plus a marker at the current sample.
	xs := make([]float64, p.idx+1)
	ys := make([]float64, p.idx+1)
	for k := 0; k <= p.idx; k++ {
		xs[k] = p.states[k][0]
		if len(p.states[k]) > 1 {
			ys[k] = p.states[k][1]
		}
	}
	p.canvas.Polyline(xs, ys)
	p.canvas.Point(xs[p.idx], ys[p.idx])

	status := viz.Playing.Render("playing")
	if p.done {
		status = viz.Paused.Render("done")
	} else if !p.playing {
		status = viz.Paused.Render("paused")
	}

	var b strings.Builder
	b.WriteString(viz.Title.Render(p.title))
	b.WriteString("  ")
	b.WriteString(status)
	b.WriteByte('\n')
	b.WriteString(viz.Frame.Render(p.canvas.String()))
	b.WriteByte('\n')
	b.WriteString(p.readout())
	b.WriteByte('\n')
	b.WriteString(viz.Hint.Render("space pause · r restart · q quit"))
	b.WriteByte('\n')
	return b.String()
}

func (p *Playback) readout() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s %s",
		viz.Label.Render("t"), viz.Value.Render(fmt.Sprintf("%6.2f", p.times[p.idx]))))
	for i, name := range p.stateNames {
		if i >= len(p.states[p.idx]) {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %s",
			viz.Label.Render(name), viz.Value.Render(fmt.Sprintf("%8.3f", p.states[p.idx][i]))))
	}
	for i, name := range p.inputNames {
		if i >= len(p.inputs[p.idx]) {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %s",
			viz.Label.Render(name), viz.Value.Render(fmt.Sprintf("%8.3f", p.inputs[p.idx][i]))))
	}
	return strings.Join(parts, "  ")
}
