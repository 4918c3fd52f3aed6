package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

const iconSize = 64

var (
	colorIdle       = color.RGBA{128, 128, 128, 255}
	colorListening  = color.RGBA{220, 50, 50, 255}
	colorProcessing = color.RGBA{230, 160, 50, 255}
)

var (
	iconsOnce sync.Once
	icons     map[State][]byte
)

// icon returns the PNG for state, drawn once on first use.
func icon(state State) []byte {
	iconsOnce.Do(func() {
		icons = map[State][]byte{
			StateIdle:       drawIcon(colorIdle),
			StateListening:  drawIcon(colorListening),
			StateProcessing: drawIcon(colorProcessing),
		}
	})
	return icons[state]
}

// drawIcon paints a microphone head with a short stem.
func drawIcon(c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	cx, cy := iconSize/2, iconSize/2-6
	const radius = 18

	for y := range iconSize {
		for x := range iconSize {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.SetRGBA(x, y, c)
			}
		}
	}
	for y := cy + radius; y < min(cy+radius+10, iconSize); y++ {
		for x := cx - 3; x <= cx+3; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	// Encoding an in-memory RGBA image cannot fail.
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
