package gioui

import (
	"image"

	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
)

type (
	// Dialog is a modal question with up to three answers. Escape cancels.
	Dialog struct {
		BtnOk     *ActionClickable
		BtnAlt    *ActionClickable
		BtnCancel *ActionClickable
	}

	DialogStyle struct {
		dialog *Dialog
		Title  string
		Text   string
		Inset  layout.Inset
		Theme  *Theme
		labels [3]string
	}
)

func NewDialog(ok, alt, cancel tracker.Action) *Dialog {
	return &Dialog{
		BtnOk:     NewActionClickable(ok),
		BtnAlt:    NewActionClickable(alt),
		BtnCancel: NewActionClickable(cancel),
	}
}

func ConfirmDialog(th *Theme, dialog *Dialog, title, text, ok, alt string) DialogStyle {
	return DialogStyle{
		dialog: dialog,
		Title:  title,
		Text:   text,
		Inset:  layout.Inset{Top: unit.Dp(12), Bottom: unit.Dp(12), Left: unit.Dp(20), Right: unit.Dp(20)},
		Theme:  th,
		labels: [3]string{ok, alt, "Cancel"},
	}
}

func (d *DialogStyle) Layout(gtx C) D {
	for {
		e, ok := gtx.Event(key.Filter{Name: key.NameEscape})
		if !ok {
			break
		}
		if e, ok := e.(key.Event); ok && e.State == key.Press {
			d.dialog.BtnCancel.Action.Do()
		}
	}
	paint.Fill(gtx.Ops, dialogBgColor)
	th := d.Theme
	return layout.Center.Layout(gtx, func(gtx C) D {
		content := func(gtx C) D {
			return d.Inset.Layout(gtx, func(gtx C) D {
				return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(material.H6(th.Material, d.Title).Layout),
					layout.Rigid(func(gtx C) D {
						return layout.Inset{Top: unit.Dp(12), Bottom: unit.Dp(12)}.Layout(gtx, material.Body1(th.Material, d.Text).Layout)
					}),
					layout.Rigid(func(gtx C) D {
						return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
							layout.Rigid(HighEmphasisButton(th.Material, &d.dialog.BtnOk.Clickable, d.labels[0]).Layout),
							layout.Rigid(ActionButton(gtx, th, d.dialog.BtnAlt, d.labels[1]).Layout),
							layout.Rigid(ActionButton(gtx, th, d.dialog.BtnCancel, d.labels[2]).Layout),
						)
					}),
				)
			})
		}
		d.dialog.BtnOk.update(gtx)
		return layout.Stack{}.Layout(gtx,
			layout.Expanded(func(gtx C) D {
				paint.FillShape(gtx.Ops, popupSurfaceColor, clip.UniformRRect(image.Rectangle{Max: gtx.Constraints.Min}, gtx.Dp(6)).Op(gtx.Ops))
				return D{Size: gtx.Constraints.Min}
			}),
			layout.Stacked(content),
		)
	})
}
