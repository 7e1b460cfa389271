package server

import "log/slog"

// Debug flags for various subsystems
var (
	DebugInput = false // Set to true to log every decoded viewer input
)

// logInputDecision logs how an input message was handled when debugging is enabled
func logInputDecision(clientID int, msgType, result string) {
	if DebugInput {
		slog.Debug("Input handled",
			"component", "input",
			"client", clientID,
			"type", msgType,
			"result", result,
		)
	}
}
