package gioui

import (
	"image"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
)

type (
	// StepGrid shows the pattern as one column per step. Dragging in a
	// column sets the pitch of the step; the button under the column toggles
	// the step in manual mode.
	StepGrid struct {
		model    *tracker.Model
		Selected int
		cells    [rws.NumSteps]stepCell
	}

	stepCell struct {
		enable   widget.Clickable
		dragging bool
	}
)

var stepGap = unit.Dp(3)
var stepButtonHeight = unit.Dp(28)

func NewStepGrid(model *tracker.Model) *StepGrid {
	return &StepGrid{model: model}
}

func (g *StepGrid) Layout(gtx C, th *Theme, snap tracker.PlayerSnapshot) D {
	children := make([]layout.FlexChild, 0, rws.NumSteps)
	inLoop := snap.InLoop()
	for i := range rws.NumSteps {
		children = append(children, layout.Flexed(1, func(gtx C) D {
			return layout.UniformInset(stepGap).Layout(gtx, func(gtx C) D {
				return g.layoutStep(gtx, th, snap, i, inLoop[i])
			})
		}))
	}
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
}

func (g *StepGrid) layoutStep(gtx C, th *Theme, snap tracker.PlayerSnapshot, i int, inLoop bool) D {
	cell := &g.cells[i]
	step := snap.Pattern[i]
	manual := snap.Params.ManualStepMode
	for cell.enable.Clicked(gtx) {
		g.Selected = i
		g.model.StepEnabled(i).Toggle()
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexed(1, func(gtx C) D {
			return g.layoutBar(gtx, th, snap, i, inLoop)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			gtx.Constraints.Max.Y = gtx.Dp(stepButtonHeight)
			text := rws.NoteName(int(rws.NoteFor(snap.Params.Root, step.Value)))
			if manual && !step.Enabled {
				text = "off"
			}
			btn := LowEmphasisButton(th.Material, &cell.enable, text)
			btn.TextSize = th.Step.TextSize
			btn.Inset = layout.UniformInset(unit.Dp(2))
			switch {
			case !manual:
				gtx = gtx.Disabled()
				btn.Color = mediumEmphasisTextColor
			case !step.Enabled:
				btn.Color = th.Step.Off
			}
			return btn.Layout(gtx)
		}),
	)
}

// layoutBar draws the step value as a bar growing up or down from the
// middle line, which is the root note.
func (g *StepGrid) layoutBar(gtx C, th *Theme, snap tracker.PlayerSnapshot, i int, inLoop bool) D {
	cell := &g.cells[i]
	size := gtx.Constraints.Max
	valueAt := func(y float32) int {
		rel := 1 - y/float32(max(size.Y, 1))
		return rws.MinStepValue + int(rel*float32(rws.MaxStepValue-rws.MinStepValue)+0.5)
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{Target: cell, Kinds: pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch e.Kind {
		case pointer.Press:
			cell.dragging = true
			g.Selected = i
			g.model.StepValue(i).Set(valueAt(e.Position.Y))
		case pointer.Drag:
			if cell.dragging {
				g.model.StepValue(i).Set(valueAt(e.Position.Y))
			}
		case pointer.Release, pointer.Cancel:
			cell.dragging = false
		}
	}

	step := snap.Pattern[i]
	bg := backgroundColor
	if inLoop {
		bg = th.Step.Loop
	}
	paint.FillShape(gtx.Ops, bg, clip.Rect{Max: size}.Op())
	if i == g.Selected {
		paint.FillShape(gtx.Ops, th.Step.Selected, clip.Rect{Max: size}.Op())
	}
	mid := size.Y / 2
	paint.FillShape(gtx.Ops, th.Step.Root, clip.Rect{Min: image.Pt(0, mid), Max: image.Pt(size.X, mid+1)}.Op())
	barColor := th.Step.Bar
	switch {
	case snap.Playing && snap.ActualStep == i:
		barColor = th.Step.Playing
	case !inLoop || (snap.Params.ManualStepMode && !step.Enabled):
		barColor = th.Step.Off
	}
	h := step.Value * (size.Y / 2) / rws.MaxStepValue
	top, bottom := mid-h, mid
	if h < 0 {
		top, bottom = mid, mid-h
	}
	if top == bottom {
		bottom = top + 2
	}
	paint.FillShape(gtx.Ops, barColor, clip.Rect{Min: image.Pt(size.X/6, top), Max: image.Pt(size.X-size.X/6, bottom)}.Op())

	area := clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops)
	event.Op(gtx.Ops, cell)
	area.Pop()
	return D{Size: size}
}
