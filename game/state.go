/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

// State is the position of a GameSession in its lifecycle.
type State int

const (
	AwaitingInvitation State = iota
	AwaitingName
	ReadyToStart
	Playing
	AwaitingReveal
	FinishedLoss
	FinishedWin
)

var stateNames = [...]string{
	AwaitingInvitation: "awaiting_invitation",
	AwaitingName:       "awaiting_name",
	ReadyToStart:       "ready",
	Playing:            "playing",
	AwaitingReveal:     "awaiting_reveal",
	FinishedLoss:       "finished_loss",
	FinishedWin:        "finished_win",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Finished reports whether the game is over and can only be restarted.
func (s State) Finished() bool {
	return s == FinishedLoss || s == FinishedWin
}
