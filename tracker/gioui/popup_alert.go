package gioui

import (
	"image"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
)

// PopupAlert shows the alerts of the model as toasts stacked below the top
// right corner of the window. A fading toast slides out to the right.
type PopupAlert struct {
	alerts *tracker.Alerts
	last   time.Time
}

var (
	toastWidth = unit.Dp(280)
	toastGap   = unit.Dp(6)
	toastInset = layout.UniformInset(unit.Dp(8))
)

func NewPopupAlert(alerts *tracker.Alerts) *PopupAlert {
	return &PopupAlert{alerts: alerts, last: time.Now()}
}

func (th *Theme) alertStyle(p tracker.AlertPriority) PopupAlertStyle {
	switch p {
	case tracker.Warning:
		return th.Alert.Warning
	case tracker.Error:
		return th.Alert.Error
	}
	return th.Alert.Info
}

func (a *PopupAlert) Layout(gtx C, th *Theme) D {
	now := time.Now()
	if a.alerts.Update(now.Sub(a.last)) {
		gtx.Execute(op.InvalidateCmd{At: now.Add(50 * time.Millisecond)})
	}
	a.last = now
	width := min(gtx.Dp(toastWidth), gtx.Constraints.Max.X)
	gap := gtx.Dp(toastGap)
	y := gap
	for _, alert := range a.alerts.Iterate {
		tgtx := gtx
		tgtx.Constraints = layout.Constraints{
			Min: image.Pt(width, 0),
			Max: image.Pt(width, gtx.Constraints.Max.Y),
		}
		macro := op.Record(gtx.Ops)
		dims := toast(tgtx, th, th.alertStyle(alert.Priority), alert.Message)
		call := macro.Stop()
		x := gtx.Constraints.Max.X - int(float64(width+gap)*alert.FadeLevel)
		offs := op.Offset(image.Pt(x, y)).Push(gtx.Ops)
		call.Add(gtx.Ops)
		offs.Pop()
		y += int(float64(dims.Size.Y+gap) * alert.FadeLevel)
	}
	return D{}
}

func toast(gtx C, th *Theme, style PopupAlertStyle, message string) D {
	return layout.Stack{}.Layout(gtx,
		layout.Expanded(func(gtx C) D {
			rr := gtx.Dp(unit.Dp(4))
			paint.FillShape(gtx.Ops, style.Bg, clip.UniformRRect(image.Rectangle{Max: gtx.Constraints.Min}, rr).Op(gtx.Ops))
			return D{Size: gtx.Constraints.Min}
		}),
		layout.Stacked(func(gtx C) D {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return toastInset.Layout(gtx, LabelStyle{
				Text:      message,
				Color:     style.Text,
				Alignment: layout.W,
				TextSize:  th.Material.TextSize,
				Theme:     th.Material,
			}.Layout)
		}),
	)
}
