package domain

import "time"

// VickreyPhase is the lifecycle phase of a sealed-bid auction.
type VickreyPhase int

const (
	PhaseNotStarted VickreyPhase = iota
	PhaseCommit
	PhaseReveal
	PhaseEnded
)

func (p VickreyPhase) String() string {
	switch p {
	case PhaseCommit:
		return "commit"
	case PhaseReveal:
		return "reveal"
	case PhaseEnded:
		return "ended"
	default:
		return "not-started"
	}
}

// PhaseAt returns the phase of a sealed-bid auction at now. Boundaries belong
// to the later phase: a commit at exactly commitEnd is already in reveal.
func PhaseAt(now, start, commitEnd, deadline time.Time) VickreyPhase {
	switch {
	case now.Before(start):
		return PhaseNotStarted
	case now.Before(commitEnd):
		return PhaseCommit
	case now.Before(deadline):
		return PhaseReveal
	default:
		return PhaseEnded
	}
}
