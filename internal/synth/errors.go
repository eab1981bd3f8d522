package synth

import (
	"errors"

	"scriptsmith/internal/generator"
)

// ErrEmptyInstruction rejects a submission whose instruction is blank.
var ErrEmptyInstruction = errors.New("instruction is empty")

// User-facing messages.
const (
	MsgEmptyInstruction = "Please enter what changes you want to make to the script"
	MsgMissingKey       = "Please add your API key first"
	MsgGenerateFailed   = "Failed to generate script. Please try again."
	MsgAnalyzing        = "AI is analyzing your request..."
	MsgUpdated          = "Script updated successfully!"
	MsgCancelled        = "Generation cancelled"
)

// Describe maps an error from Submit or a failed synthesis onto the single message
// shown to the user. Empty results read the same as service failures.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInstruction):
		return MsgEmptyInstruction
	case errors.Is(err, generator.ErrAuth):
		return MsgMissingKey
	default:
		return MsgGenerateFailed
	}
}
