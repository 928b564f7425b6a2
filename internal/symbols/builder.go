package symbols

import (
	"context"
	"strings"

	"QuoteTables/internal/model"

	log "github.com/sirupsen/logrus"
)

// UniverseID names a predefined set of symbols.
type UniverseID string

const (
	Dow         UniverseID = "dow"
	SP500       UniverseID = "sp500"
	Commodities UniverseID = "commodities"
	Currencies  UniverseID = "currencies"
)

// KnownUniverses lists every universe the CLI can select.
var KnownUniverses = []UniverseID{Dow, SP500, Commodities, Currencies}

// ErrNoSource is returned when neither a universe nor a manual list is selected.
var ErrNoSource = &model.ConfigurationError{Field: "symbols", Msg: "select at least one universe or pass a manual symbol list"}

// Selection is the user's choice of symbol sources.
type Selection struct {
	Universes []UniverseID
	Manual    string // comma separated, entries are not trimmed
}

// Validate checks that at least one source is selected. It never touches the network.
func (s Selection) Validate() error {
	if len(s.Universes) == 0 && s.Manual == "" {
		return ErrNoSource
	}
	return nil
}

// ParseManual splits a comma separated list. Whitespace inside an entry is
// kept as part of the symbol; empty entries are dropped.
func ParseManual(list string) []model.Symbol {
	var out []model.Symbol
	for _, part := range strings.Split(list, ",") {
		if part == "" {
			continue
		}
		out = append(out, model.Symbol(part))
	}
	return out
}

// Build resolves the selection into a deduplicated symbol set.
func Build(ctx context.Context, sel Selection, dir Directory) (*Set, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	set := NewSet()
	for _, u := range sel.Universes {
		members := dir.Members(ctx, u)
		added := 0
		for _, sym := range members {
			if set.Add(sym) {
				added++
			}
		}
		log.WithFields(log.Fields{"universe": u, "members": len(members), "new": added}).Info("universe resolved")
	}
	if sel.Manual != "" {
		set.Union(NewSet(ParseManual(sel.Manual)...))
	}
	return set, nil
}
