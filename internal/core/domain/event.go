package domain

import "time"

// GenerationEvent is the audit record written for every /speak attempt
// that reached the gatekeeper.
type GenerationEvent struct {
	ID        string
	UID       string
	Day       string
	Decision  Decision
	Mode      InputMode
	Voice     string
	Mood      Mood
	Succeeded bool
	Failure   string
	Remaining int
	Timestamp time.Time
}
