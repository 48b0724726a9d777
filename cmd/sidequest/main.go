package main

import (
	"os"

	"github.com/oscillatelabsllc/sidequest/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
