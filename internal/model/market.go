package model

import "time"

// DateLayout is the calendar date format used on the command line and in output files.
const DateLayout = "2006-01-02"

// Symbol identifies a tradable instrument, currency pair or commodity contract.
// Symbols are opaque and case-sensitive.
type Symbol string

// Observation is one daily bar of a symbol's series.
type Observation struct {
	Date     time.Time // UTC midnight of the trading day
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// Value returns the observation's value for the given field.
func (o Observation) Value(f Field) float64 {
	switch f {
	case Open:
		return o.Open
	case High:
		return o.High
	case Low:
		return o.Low
	case Close:
		return o.Close
	case AdjClose:
		return o.AdjClose
	case Volume:
		return o.Volume
	}
	return 0
}

// Series is the date-ordered observations fetched for one symbol.
type Series struct {
	Symbol       Symbol
	Observations []Observation
	FetchedAt    time.Time
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Observations) }

// TruncateDate normalizes t to UTC midnight of its calendar day.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
