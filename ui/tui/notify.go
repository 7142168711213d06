package tui

import (
	"github.com/gen2brain/beeep"
)

const notificationTitle = "Chess Insight"

// notifyReady sends a desktop notification that the analysis finished.
func (a *App) notifyReady() {
	if !a.notify {
		return
	}
	message := "AI analysis is ready."
	if game := a.service.Info().Game; game != "" {
		message = "AI analysis is ready: " + game
	}
	if err := beeep.Notify(notificationTitle, message, ""); err != nil {
		// Common causes: notification permissions not granted, or no notification daemon
		a.logger.Warn().Err(err).Msg("Failed to send desktop notification")
	}
}
