package gui

import (
	"image"
	"image/color"

	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

var (
	colorBG      = color.NRGBA{R: 30, G: 30, B: 34, A: 255}
	colorPanel   = color.NRGBA{R: 45, G: 45, B: 50, A: 255}
	colorText    = color.NRGBA{R: 240, G: 240, B: 245, A: 255}
	colorTextDim = color.NRGBA{R: 140, G: 140, B: 150, A: 255}
	colorAccent  = color.NRGBA{R: 88, G: 166, B: 255, A: 255}
	colorError   = color.NRGBA{R: 255, G: 100, B: 100, A: 255}
	colorDanger  = color.NRGBA{R: 220, G: 50, B: 50, A: 255}
	colorSuccess = color.NRGBA{R: 80, G: 200, B: 120, A: 255}
	colorWarning = color.NRGBA{R: 255, G: 180, B: 0, A: 255}
)

func drawTitle(gtx layout.Context, th *material.Theme, title string) layout.Dimensions {
	lbl := material.Label(th, unit.Sp(24), title)
	lbl.Color = colorText
	lbl.Font.Weight = font.Bold
	return lbl.Layout(gtx)
}

func drawText(gtx layout.Context, th *material.Theme, size unit.Sp, s string, col color.NRGBA) layout.Dimensions {
	lbl := material.Label(th, size, s)
	lbl.Color = col
	return lbl.Layout(gtx)
}

// drawPanel lays content out first so the background fits it.
func drawPanel(gtx layout.Context, content layout.Widget) layout.Dimensions {
	macro := op.Record(gtx.Ops)
	dims := layout.UniformInset(unit.Dp(12)).Layout(gtx, content)
	call := macro.Stop()

	rr := gtx.Dp(unit.Dp(10))
	paint.FillShape(gtx.Ops, colorPanel, clip.UniformRRect(image.Rectangle{Max: dims.Size}, rr).Op(gtx.Ops))
	call.Add(gtx.Ops)
	return dims
}

// drawField is a labelled single line editor with its validation message.
func drawField(gtx layout.Context, th *material.Theme, label string, ed *widget.Editor, errMsg string) layout.Dimensions {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return drawText(gtx, th, unit.Sp(12), label, colorTextDim)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return drawPanel(gtx, func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min.X = gtx.Constraints.Max.X
				e := material.Editor(th, ed, "")
				e.TextSize = unit.Sp(15)
				e.Color = colorText
				e.HintColor = colorTextDim
				return e.Layout(gtx)
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if errMsg == "" {
				return layout.Dimensions{}
			}
			return layout.Inset{Top: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return drawText(gtx, th, unit.Sp(11), errMsg, colorError)
			})
		}),
	)
}

func drawButton(gtx layout.Context, th *material.Theme, btn *widget.Clickable, label string, bg color.NRGBA, enabled bool) layout.Dimensions {
	fg := colorText
	if !enabled {
		fg = colorTextDim
		bg = colorPanel
		gtx = gtx.Disabled()
	}

	macro := op.Record(gtx.Ops)
	dims := material.Clickable(gtx, btn, func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{
			Top: unit.Dp(10), Bottom: unit.Dp(10),
			Left: unit.Dp(20), Right: unit.Dp(20),
		}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				lbl := material.Label(th, unit.Sp(14), label)
				lbl.Color = fg
				lbl.Font.Weight = font.Medium
				return lbl.Layout(gtx)
			})
		})
	})
	call := macro.Stop()

	rr := gtx.Dp(unit.Dp(8))
	paint.FillShape(gtx.Ops, bg, clip.UniformRRect(image.Rectangle{Max: dims.Size}, rr).Op(gtx.Ops))
	call.Add(gtx.Ops)
	return dims
}

// drawLink is a text-only button.
func drawLink(gtx layout.Context, th *material.Theme, btn *widget.Clickable, label string) layout.Dimensions {
	return material.Clickable(gtx, btn, func(gtx layout.Context) layout.Dimensions {
		return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			lbl := material.Label(th, unit.Sp(13), label)
			lbl.Color = colorAccent
			lbl.Alignment = text.Middle
			return lbl.Layout(gtx)
		})
	})
}

// levelColor goes green, yellow, red as the input gets louder.
func levelColor(level float32) color.NRGBA {
	switch {
	case level > 0.7:
		return colorError
	case level > 0.4:
		return colorWarning
	default:
		return colorSuccess
	}
}

// drawLevelBar renders a horizontal microphone level meter.
func drawLevelBar(gtx layout.Context, level float32) layout.Dimensions {
	width := gtx.Constraints.Max.X
	height := gtx.Dp(unit.Dp(8))
	rr := height / 2

	paint.FillShape(gtx.Ops, colorPanel, clip.UniformRRect(image.Rectangle{Max: image.Pt(width, height)}, rr).Op(gtx.Ops))

	level = max(0, min(level, 1))
	if fill := int(level * float32(width)); fill > 0 {
		paint.FillShape(gtx.Ops, levelColor(level), clip.UniformRRect(image.Rectangle{Max: image.Pt(fill, height)}, rr).Op(gtx.Ops))
	}
	return layout.Dimensions{Size: image.Pt(width, height)}
}

func drawToast(gtx layout.Context, th *material.Theme, msg string) layout.Dimensions {
	gtx.Constraints.Min.X = gtx.Constraints.Max.X
	return drawPanel(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min.X = gtx.Constraints.Max.X
		lbl := material.Label(th, unit.Sp(13), msg)
		lbl.Color = colorText
		lbl.Alignment = text.Middle
		return lbl.Layout(gtx)
	})
}

// submitted drains ed's events and reports whether Enter was pressed.
func submitted(gtx layout.Context, ed *widget.Editor) bool {
	hit := false
	for {
		e, ok := ed.Update(gtx)
		if !ok {
			return hit
		}
		if _, ok := e.(widget.SubmitEvent); ok {
			hit = true
		}
	}
}

func singleLine(ed *widget.Editor, mask rune) {
	ed.SingleLine = true
	ed.Submit = true
	ed.Mask = mask
}
