package symbols

import (
	"context"

	"QuoteTables/internal/model"

	log "github.com/sirupsen/logrus"
)

// Directory lists the members of a universe. Implementations fail closed:
// a scrape or parse failure yields an empty list, never an error.
type Directory interface {
	Members(ctx context.Context, id UniverseID) []model.Symbol
}

// Provider resolves the members of a single universe.
type Provider interface {
	List(ctx context.Context) ([]model.Symbol, error)
}

// Registry is a Directory backed by one Provider per universe.
type Registry struct {
	providers map[UniverseID]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[UniverseID]Provider)}
}

// Register binds a provider to a universe, replacing any previous one.
func (r *Registry) Register(id UniverseID, p Provider) {
	r.providers[id] = p
}

// Members implements Directory.
func (r *Registry) Members(ctx context.Context, id UniverseID) []model.Symbol {
	p, ok := r.providers[id]
	if !ok {
		log.WithField("universe", id).Warn("no provider registered for universe")
		return nil
	}
	syms, err := p.List(ctx)
	if err != nil {
		log.WithField("universe", id).Warnf("list members failed, using empty list: %v", err)
		return nil
	}
	return syms
}

// StaticProvider returns a fixed list of symbols.
type StaticProvider []model.Symbol

func (p StaticProvider) List(_ context.Context) ([]model.Symbol, error) {
	out := make([]model.Symbol, len(p))
	copy(out, p)
	return out, nil
}

// DefaultCommodities are front-month futures contracts as quoted by Yahoo.
var DefaultCommodities = StaticProvider{
	"GC=F", "SI=F", "PL=F", "PA=F", "HG=F",
	"CL=F", "BZ=F", "NG=F", "HO=F", "RB=F",
	"ZC=F", "ZW=F", "ZS=F", "KC=F", "CC=F", "SB=F", "CT=F", "LE=F",
}

// DefaultCurrencies are USD based currency pairs as quoted by Yahoo.
var DefaultCurrencies = StaticProvider{
	"EURUSD=X", "GBPUSD=X", "AUDUSD=X", "NZDUSD=X",
	"JPY=X", "CAD=X", "CHF=X", "CNY=X", "HKD=X", "SGD=X",
	"INR=X", "MXN=X", "BRL=X", "ZAR=X", "SEK=X", "NOK=X",
}
