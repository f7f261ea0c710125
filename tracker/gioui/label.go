package gioui

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

// LabelStyle is a single line label with a drop shadow, readable over the
// step bars.
type LabelStyle struct {
	Text       string
	Color      color.NRGBA
	ShadeColor color.NRGBA
	Alignment  layout.Direction
	TextSize   unit.Sp
	Theme      *material.Theme
}

func (l LabelStyle) Layout(gtx C) D {
	return l.Alignment.Layout(gtx, func(gtx C) D {
		gtx.Constraints.Min = image.Point{}
		label := material.Label(l.Theme, l.TextSize, l.Text)
		label.MaxLines = 1
		if l.ShadeColor.A > 0 {
			shade := label
			shade.Color = l.ShadeColor
			offs := op.Offset(image.Pt(1, 1)).Push(gtx.Ops)
			shade.Layout(gtx)
			offs.Pop()
		}
		label.Color = l.Color
		return label.Layout(gtx)
	})
}

func Label(th *Theme, str string, c color.NRGBA) layout.Widget {
	return LabelStyle{Text: str, Color: c, Alignment: layout.W, TextSize: th.Material.TextSize, Theme: th.Material}.Layout
}
