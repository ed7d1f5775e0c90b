/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "strings"

type Speaker string

const (
	System Speaker = "System"
	Player Speaker = "Player"
	AI     Speaker = "AI"
)

// Turn is one entry of the conversation history.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Transcript flattens the whole history into the text sent to the engine.
// It is rebuilt from scratch on every call.
func Transcript(history []Turn) string {
	var b strings.Builder

	b.WriteString(transcriptHeader)
	for _, t := range history {
		b.WriteString(string(t.Speaker))
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	b.WriteString(transcriptCue)

	return b.String()
}

// HasWon reports whether an engine reply carries the win marker.
func HasWon(reply string) bool {
	return strings.Contains(reply, WinMarker)
}

// Display strips the win marker so it never reaches the player.
func Display(text string) string {
	return strings.ReplaceAll(text, WinMarker, "")
}
