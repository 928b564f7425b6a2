package model

import (
	"fmt"
	"strings"
)

// Field selects one numeric column of an Observation.
type Field int

const (
	Open Field = iota
	High
	Low
	Close
	AdjClose
	Volume
)

// AllFields lists the fields in the order combined output is written.
var AllFields = []Field{High, Low, Open, Close, Volume, AdjClose}

var fieldNames = map[Field]string{
	Open:     "Open",
	High:     "High",
	Low:      "Low",
	Close:    "Close",
	AdjClose: "Adj Close",
	Volume:   "Volume",
}

// String returns the column label of the field.
func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// FileName returns the base name used for files holding this field.
func (f Field) FileName() string {
	return strings.ReplaceAll(strings.ToLower(f.String()), " ", "_")
}

// ParseField resolves a user supplied field name, ignoring case.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return Open, nil
	case "high":
		return High, nil
	case "low":
		return Low, nil
	case "close":
		return Close, nil
	case "volume":
		return Volume, nil
	case "adjclose", "adj_close", "adj close", "adjusted-close", "adjusted_close":
		return AdjClose, nil
	}
	return 0, &ConfigurationError{Field: "quick", Msg: fmt.Sprintf("unknown field %q", s)}
}
