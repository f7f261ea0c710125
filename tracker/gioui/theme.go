package gioui

import (
	"image/color"

	"gioui.org/font/gofont"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

type (
	Theme struct {
		Material *material.Theme
		Alert    struct {
			Info, Warning, Error PopupAlertStyle
		}
		Step struct {
			Bar, Root, Off, Playing, Selected, Loop color.NRGBA
			TextSize                                unit.Sp
		}
	}

	PopupAlertStyle struct {
		Bg   color.NRGBA
		Text color.NRGBA
	}
)

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
var black = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
var transparent = color.NRGBA{A: 0}

var primaryColor = color.NRGBA{R: 206, G: 147, B: 216, A: 255}
var secondaryColor = color.NRGBA{R: 128, G: 222, B: 234, A: 255}

var highEmphasisTextColor = color.NRGBA{R: 222, G: 222, B: 222, A: 222}
var mediumEmphasisTextColor = color.NRGBA{R: 153, G: 153, B: 153, A: 153}
var disabledTextColor = color.NRGBA{R: 255, G: 255, B: 255, A: 97}

var backgroundColor = color.NRGBA{R: 18, G: 18, B: 18, A: 255}
var surfaceColor = color.NRGBA{R: 37, G: 37, B: 38, A: 255}
var popupSurfaceColor = color.NRGBA{R: 50, G: 50, B: 51, A: 255}
var dialogBgColor = color.NRGBA{R: 0, G: 0, B: 0, A: 224}

var errorColor = color.NRGBA{R: 207, G: 102, B: 121, A: 255}
var warningColor = color.NRGBA{R: 251, G: 192, B: 45, A: 255}

func NewTheme() *Theme {
	th := &Theme{Material: material.NewTheme()}
	th.Material.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	th.Material.Palette = material.Palette{
		Bg:         backgroundColor,
		Fg:         highEmphasisTextColor,
		ContrastBg: primaryColor,
		ContrastFg: black,
	}
	th.Material.TextSize = unit.Sp(14)
	th.Alert.Info = PopupAlertStyle{Bg: popupSurfaceColor, Text: highEmphasisTextColor}
	th.Alert.Warning = PopupAlertStyle{Bg: warningColor, Text: black}
	th.Alert.Error = PopupAlertStyle{Bg: errorColor, Text: black}
	th.Step.Bar = primaryColor
	th.Step.Root = mediumEmphasisTextColor
	th.Step.Off = disabledTextColor
	th.Step.Playing = secondaryColor
	th.Step.Selected = color.NRGBA{R: 100, G: 140, B: 255, A: 48}
	th.Step.Loop = surfaceColor
	th.Step.TextSize = unit.Sp(12)
	return th
}
