package model

import "time"

// RunSummary describes one harvest run for the archive and notifications.
type RunSummary struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Start     time.Time
	End       time.Time
	Universes []string
	Requested int
	Fetched   int
	Skipped   []Symbol
	Dropped   []Symbol
	Retained  []Symbol
	Length    int // dominant series length M
	Output    string
}
