//go:build linux

package gui

import (
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// centerWindow moves the window titled title to the middle of the screen.
// It needs xdotool and quietly does nothing without it.
func centerWindow(title string, width, height int) {
	// Give the window time to appear.
	time.Sleep(150 * time.Millisecond)

	sw, sh := screenSize()
	if sw == 0 || sh == 0 {
		return
	}
	x, y := centered(sw, sh, width, height)

	out, err := exec.Command("xdotool", "search", "--name", title).Output()
	if err != nil {
		return
	}
	ids := strings.Fields(string(out))
	if len(ids) == 0 {
		return
	}
	_ = exec.Command("xdotool", "windowmove", ids[0], strconv.Itoa(x), strconv.Itoa(y)).Run()
}

func screenSize() (width, height int) {
	out, err := exec.Command("xdotool", "getdisplaygeometry").Output()
	if err != nil {
		return 0, 0
	}
	return parseGeometry(string(out))
}
