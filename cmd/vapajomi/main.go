// VAPAJOMI is a desktop voice assistant. It lives in the system tray, asks
// the user to sign in and then listens for voice commands on a hotkey.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	// A .env next to the working directory may carry VAPAJOMI_* overrides.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
