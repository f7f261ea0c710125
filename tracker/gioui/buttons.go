package gioui

import (
	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
)

type (
	// ActionClickable runs its action when clicked, if the action is
	// enabled at that time.
	ActionClickable struct {
		Clickable widget.Clickable
		TipArea   component.TipArea
		Action    tracker.Action
	}

	// BoolClickable toggles a tracker.Bool when clicked.
	BoolClickable struct {
		Clickable widget.Clickable
		TipArea   component.TipArea
		Bool      tracker.Bool
	}
)

func NewActionClickable(a tracker.Action) *ActionClickable {
	return &ActionClickable{Action: a}
}

func (a *ActionClickable) update(gtx C) {
	for a.Clickable.Clicked(gtx) {
		if a.Action.Enabled() {
			a.Action.Do()
		}
	}
}

func NewBoolClickable(b tracker.Bool) *BoolClickable {
	return &BoolClickable{Bool: b}
}

func (b *BoolClickable) update(gtx C) {
	for b.Clickable.Clicked(gtx) {
		if b.Bool.Enabled() {
			b.Bool.Toggle()
		}
	}
}

func ActionIcon(gtx C, th *Theme, a *ActionClickable, icon []byte, tip string) layout.Widget {
	a.update(gtx)
	btn := IconButton(th.Material, &a.Clickable, icon, tip, a.Action.Enabled())
	return withTip(th, &a.TipArea, tip, btn.Layout)
}

func ActionButton(gtx C, th *Theme, a *ActionClickable, text string) material.ButtonStyle {
	a.update(gtx)
	ret := LowEmphasisButton(th.Material, &a.Clickable, text)
	if !a.Action.Enabled() {
		ret.Color = disabledTextColor
	}
	return ret
}

// ToggleIcon shows offIcon or onIcon depending on the value of the Bool.
func ToggleIcon(gtx C, th *Theme, b *BoolClickable, offIcon, onIcon []byte, offTip, onTip string) layout.Widget {
	b.update(gtx)
	icon, tip := offIcon, offTip
	if b.Bool.Value() {
		icon, tip = onIcon, onTip
	}
	btn := IconButton(th.Material, &b.Clickable, icon, tip, b.Bool.Enabled())
	return withTip(th, &b.TipArea, tip, btn.Layout)
}

// withTip shows the tip when w is hovered or long-pressed.
func withTip(th *Theme, area *component.TipArea, tip string, w layout.Widget) layout.Widget {
	return func(gtx C) D {
		return area.Layout(gtx, component.PlatformTooltip(th.Material, tip), w)
	}
}

func IconButton(th *material.Theme, w *widget.Clickable, icon []byte, tip string, enabled bool) material.IconButtonStyle {
	ret := material.IconButton(th, w, widgetForIcon(icon), tip)
	ret.Background = transparent
	ret.Inset = layout.UniformInset(unit.Dp(6))
	if enabled {
		ret.Color = primaryColor
	} else {
		ret.Color = disabledTextColor
	}
	return ret
}

func LowEmphasisButton(th *material.Theme, w *widget.Clickable, text string) material.ButtonStyle {
	ret := material.Button(th, w, text)
	ret.Color = th.Palette.Fg
	ret.Background = transparent
	ret.Inset = layout.UniformInset(unit.Dp(6))
	return ret
}

func HighEmphasisButton(th *material.Theme, w *widget.Clickable, text string) material.ButtonStyle {
	ret := material.Button(th, w, text)
	ret.Color = th.Palette.ContrastFg
	ret.Background = th.Palette.ContrastBg
	ret.Inset = layout.UniformInset(unit.Dp(6))
	return ret
}
