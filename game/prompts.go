/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "fmt"

// WinMarker is emitted by the engine at the end of a winning reply, and only then.
// Existing prompt scripts depend on the exact text.
const WinMarker = "[GAME_WON]"

// MaxQuestions is the hard ceiling on AI turns per game.
const MaxQuestions = 20

// SystemPrompt is handed to every Engine at construction.
const SystemPrompt = "You are playing '20 Questions' with a child (Grade 5-6). " +
	"The child has an object in mind. Your goal is to guess it within 20 attempts. " +
	"1. Ask simple, clear Yes/No questions. " +
	"2. Use a friendly, cute, and exciting tone. " +
	"3. Analyze the previous answers carefully to narrow down possibilities. " +
	"4. You can make a direct guess (e.g., 'Is it a pizza?') when you are reasonably confident. " +
	"5. If the user says 'Yes' to your specific guess, you have WON! " +
	"6. WHEN YOU WIN: " +
	"   - Celebrate with enthusiasm! " +
	"   - Provide a short story or interesting history/fun fact about the item. " +
	"     (e.g., 'Did you know that the crayon was invented by...'). " +
	"   - END your response with the exact text: " + WinMarker +
	"7. Do NOT number your questions. Just ask the question."

const (
	kickoffPrompt   = "The game is starting. Ask the first question."
	FallbackMessage = "Oops! I got a bit confused. Can we try again?"

	transcriptHeader = "Here is the game progress so far:\n"
	transcriptCue    = "AI (You): "
)

func revealPrompt(item string) string {
	return fmt.Sprintf("The user has revealed the item was: '%s'. You failed to guess it. "+
		"React with surprise (e.g., 'No way! really?') and provide a short story or fun fact about '%s'.",
		item, item)
}
