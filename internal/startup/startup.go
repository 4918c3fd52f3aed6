// Package startup shows a small window while the speech model downloads
// and loads.
package startup

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"vapajomi/internal/i18n"
	"vapajomi/internal/models"
)

var (
	colorBG     = color.NRGBA{R: 30, G: 30, B: 34, A: 255}
	colorText   = color.NRGBA{R: 240, G: 240, B: 245, A: 255}
	colorDim    = color.NRGBA{R: 140, G: 140, B: 150, A: 255}
	colorAccent = color.NRGBA{R: 88, G: 166, B: 255, A: 255}
)

// Window is the loading window. It is safe for concurrent use.
type Window struct {
	mu      sync.Mutex
	window  *app.Window
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	status    string
	substatus string
	// fraction is the download progress, negative while unknown.
	fraction float64
}

// New creates a hidden loading window.
func New() *Window {
	return &Window{status: i18n.T("startup_status"), fraction: -1}
}

// Show opens the window.
func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.window = new(app.Window)

	go w.runEventLoop(w.window, w.stopCh, w.doneCh)
}

// Hide closes the window and waits briefly for it to go away.
func (w *Window) Hide() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
	case <-time.After(time.Second):
	}
}

// SetStatus replaces both status lines and shows the spinner.
func (w *Window) SetStatus(status, substatus string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.substatus = substatus
	w.fraction = -1
}

// SetProgress reports model download progress.
func (w *Window) SetProgress(p models.Progress) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = i18n.T("startup_downloading")
	w.substatus = progressText(p)
	w.fraction = float64(p.Fraction())
	if p.Total <= 0 && !p.Done {
		w.fraction = -1
	}
}

func (w *Window) snapshot() (string, string, float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status, w.substatus, w.fraction
}

func progressText(p models.Progress) string {
	const mb = 1 << 20
	if p.Total <= 0 {
		return fmt.Sprintf("%.1f MB", float64(p.Downloaded)/mb)
	}
	return fmt.Sprintf("%.1f / %.1f MB", float64(p.Downloaded)/mb, float64(p.Total)/mb)
}

func (w *Window) runEventLoop(win *app.Window, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	win.Option(
		app.Title(i18n.T("app_name")),
		app.Size(unit.Dp(320), unit.Dp(160)),
		app.MinSize(unit.Dp(320), unit.Dp(160)),
		app.MaxSize(unit.Dp(320), unit.Dp(160)),
	)

	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				win.Perform(system.ActionClose)
				return
			case <-ticker.C:
				win.Invalidate()
			}
		}
	}()

	th := material.NewTheme()
	var ops op.Ops
	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			return
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.draw(gtx, th)
			e.Frame(gtx.Ops)
		}
	}
}

func (w *Window) draw(gtx layout.Context, th *material.Theme) layout.Dimensions {
	paint.FillShape(gtx.Ops, colorBG, clip.Rect{Max: gtx.Constraints.Max}.Op())

	status, substatus, fraction := w.snapshot()

	return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if fraction < 0 {
					return drawSpinner(gtx)
				}
				gtx.Constraints.Min.X = gtx.Dp(unit.Dp(240))
				gtx.Constraints.Max.X = gtx.Constraints.Min.X
				bar := material.ProgressBar(th, float32(fraction))
				bar.Color = colorAccent
				return bar.Layout(gtx)
			}),

			layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),

			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Label(th, unit.Sp(14), status)
				lbl.Color = colorText
				lbl.Font.Weight = font.Medium
				lbl.Alignment = text.Middle
				return lbl.Layout(gtx)
			}),

			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if substatus == "" {
					return layout.Dimensions{}
				}
				return layout.Inset{Top: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					lbl := material.Label(th, unit.Sp(11), substatus)
					lbl.Color = colorDim
					lbl.Alignment = text.Middle
					return lbl.Layout(gtx)
				})
			}),
		)
	})
}

func drawSpinner(gtx layout.Context) layout.Dimensions {
	size := gtx.Dp(unit.Dp(40))
	thickness := gtx.Dp(unit.Dp(3))

	angle := float64(time.Now().UnixMilli()%1000) / 1000.0 * 2 * math.Pi
	center := image.Pt(size/2, size/2)
	radius := size/2 - thickness
	dot := thickness / 2

	const segments = 12
	for i := range segments {
		a := angle + float64(i)*2*math.Pi/segments
		x := center.X + int(float64(radius)*math.Cos(a))
		y := center.Y + int(float64(radius)*math.Sin(a))

		col := colorAccent
		col.A = uint8(255 - i*20)
		ellipse := clip.Ellipse{Min: image.Pt(x-dot, y-dot), Max: image.Pt(x+dot, y+dot)}
		paint.FillShape(gtx.Ops, col, ellipse.Op(gtx.Ops))
	}

	return layout.Dimensions{Size: image.Pt(size, size)}
}
