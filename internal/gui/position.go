package gui

import (
	"strconv"
	"strings"
)

func centered(screenW, screenH, width, height int) (x, y int) {
	return max(0, (screenW-width)/2), max(0, (screenH-height)/2)
}

// parseGeometry reads xdotool's "width height" output.
func parseGeometry(s string) (width, height int) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, 0
	}
	width, _ = strconv.Atoi(parts[0])
	height, _ = strconv.Atoi(parts[1])
	return width, height
}
