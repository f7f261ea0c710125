package gioui

import (
	"math"

	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/davidfrivas/RandomWalkSeq/tracker"
)

type (
	// IntSlider edits a tracker.Int with a slider and step buttons.
	IntSlider struct {
		Int   tracker.Int
		float widget.Float
		dec   widget.Clickable
		inc   widget.Clickable
	}

	// BoolSwitch edits a tracker.Bool.
	BoolSwitch struct {
		Bool   tracker.Bool
		widget widget.Bool
	}
)

var sliderLabelWidth = unit.Dp(96)
var sliderValueWidth = unit.Dp(72)

func NewIntSlider(v tracker.Int) *IntSlider { return &IntSlider{Int: v} }

func (s *IntSlider) Layout(gtx C, th *Theme, label string) D {
	r := s.Int.Range()
	span := max(r.Max-r.Min, 1)
	if s.float.Update(gtx) {
		s.Int.Set(r.Min + int(math.Round(float64(s.float.Value)*float64(span))))
	}
	for s.dec.Clicked(gtx) {
		s.Int.Add(-1)
	}
	for s.inc.Clicked(gtx) {
		s.Int.Add(1)
	}
	if !s.float.Dragging() {
		s.float.Value = float32(s.Int.Value()-r.Min) / float32(span)
	}
	enabled := s.Int.Enabled()
	if !enabled {
		gtx = gtx.Disabled()
	}
	textColor := highEmphasisTextColor
	if !enabled {
		textColor = disabledTextColor
	}
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min.X = gtx.Dp(sliderLabelWidth)
			return Label(th, label, textColor)(gtx)
		}),
		layout.Flexed(1, material.Slider(th.Material, &s.float).Layout),
		layout.Rigid(IconButton(th.Material, &s.dec, icons.ContentRemove, "Decrease "+label, enabled).Layout),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min.X = gtx.Dp(sliderValueWidth)
			return LabelStyle{Text: s.Int.String(), Color: textColor, Alignment: layout.Center, TextSize: th.Material.TextSize, Theme: th.Material}.Layout(gtx)
		}),
		layout.Rigid(IconButton(th.Material, &s.inc, icons.ContentAdd, "Increase "+label, enabled).Layout),
	)
}

func NewBoolSwitch(v tracker.Bool) *BoolSwitch { return &BoolSwitch{Bool: v} }

func (s *BoolSwitch) Layout(gtx C, th *Theme, label string) D {
	if s.widget.Update(gtx) {
		s.Bool.Set(s.widget.Value)
	}
	s.widget.Value = s.Bool.Value()
	enabled := s.Bool.Enabled()
	textColor := highEmphasisTextColor
	if !enabled {
		gtx = gtx.Disabled()
		textColor = disabledTextColor
	}
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min.X = gtx.Dp(sliderLabelWidth)
			return Label(th, label, textColor)(gtx)
		}),
		layout.Rigid(material.Switch(th.Material, &s.widget, label).Layout),
	)
}
