package symbols

import (
	"context"
	"errors"
	"strings"
	"testing"

	"QuoteTables/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	syms  []model.Symbol
	err   error
	calls int
}

func (p *countingProvider) List(_ context.Context) ([]model.Symbol, error) {
	p.calls++
	return p.syms, p.err
}

func TestParseManual(t *testing.T) {
	tests := []struct {
		in   string
		want []model.Symbol
	}{
		{"AAA,BBB,CCC", []model.Symbol{"AAA", "BBB", "CCC"}},
		{"AAA", []model.Symbol{"AAA"}},
		{"AAA,,BBB,", []model.Symbol{"AAA", "BBB"}},
		{"AAA, BBB", []model.Symbol{"AAA", " BBB"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseManual(tt.in), "input %q", tt.in)
	}
}

func TestBuild_ManualList(t *testing.T) {
	set, err := Build(context.Background(), Selection{Manual: "AAA,BBB,CCC"}, NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, []model.Symbol{"AAA", "BBB", "CCC"}, set.Slice())

	set, err = Build(context.Background(), Selection{Manual: "AAA,BBB,AAA"}, NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("AAA"))
	assert.True(t, set.Contains("BBB"))
}

func TestBuild_NoSource(t *testing.T) {
	p := &countingProvider{syms: []model.Symbol{"X"}}
	reg := NewRegistry()
	reg.Register(Dow, p)

	_, err := Build(context.Background(), Selection{}, reg)
	require.Error(t, err)

	var cfgErr *model.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, 0, p.calls, "no provider may be queried without a selection")
}

func TestBuild_UnionOfSources(t *testing.T) {
	dow := &countingProvider{syms: []model.Symbol{"AAPL", "MSFT", "KO"}}
	sp := &countingProvider{syms: []model.Symbol{"MSFT", "NVDA", "AAPL", "XOM"}}
	reg := NewRegistry()
	reg.Register(Dow, dow)
	reg.Register(SP500, sp)

	both, err := Build(context.Background(), Selection{Universes: []UniverseID{Dow, SP500}, Manual: "KO,TSLA"}, reg)
	require.NoError(t, err)

	want := NewSet()
	for _, sel := range []Selection{
		{Universes: []UniverseID{Dow}},
		{Universes: []UniverseID{SP500}},
		{Manual: "KO,TSLA"},
	} {
		s, err := Build(context.Background(), sel, reg)
		require.NoError(t, err)
		want.Union(s)
	}

	assert.ElementsMatch(t, want.Slice(), both.Slice())
	assert.Equal(t, 6, both.Len())
}

func TestBuild_Idempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Dow, &countingProvider{syms: []model.Symbol{"AAPL", "KO"}})

	once, err := Build(context.Background(), Selection{Universes: []UniverseID{Dow}}, reg)
	require.NoError(t, err)
	twice, err := Build(context.Background(), Selection{Universes: []UniverseID{Dow, Dow}}, reg)
	require.NoError(t, err)
	assert.Equal(t, once.Slice(), twice.Slice())
}

func TestBuild_FailedProviderIsEmpty(t *testing.T) {
	reg := NewRegistry()
	reg.Register(SP500, &countingProvider{err: errors.New("scrape failed")})

	set, err := Build(context.Background(), Selection{Universes: []UniverseID{SP500}}, reg)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestParseTable(t *testing.T) {
	page := `<html><body>
<table id="other"><tr><th>Symbol</th></tr><tr><td>NOPE</td></tr></table>
<table id="constituents">
<tbody>
<tr><th>Company</th><th>Exchange</th><th>Symbol</th></tr>
<tr><th><a href="#">Apple</a></th><td>NASDAQ</td><td><a href="#">AAPL</a></td></tr>
<tr><th>Coca-Cola</th><td>NYSE</td><td>&nbsp;KO&nbsp;</td></tr>
<tr><th>Empty</th><td>NYSE</td><td></td></tr>
</tbody>
</table></body></html>`

	syms, err := ParseTable(strings.NewReader(page), "constituents", "symbol")
	require.NoError(t, err)
	assert.Equal(t, []model.Symbol{"AAPL", "KO"}, syms)

	_, err = ParseTable(strings.NewReader(page), "missing", "Symbol")
	assert.Error(t, err)

	_, err = ParseTable(strings.NewReader(page), "constituents", "Ticker")
	assert.Error(t, err)
}
