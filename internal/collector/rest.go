package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"QuoteTables/internal/model"
)

// RESTFetcher implements Fetcher against a generic end-of-day bars API
// returning a JSON array of daily bars.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of one bar.
type restBar struct {
	Date     string   `json:"date"`
	Open     float64  `json:"open"`
	High     float64  `json:"high"`
	Low      float64  `json:"low"`
	Close    float64  `json:"close"`
	AdjClose *float64 `json:"adjusted_close"`
	Volume   float64  `json:"volume"`
}

func (f *RESTFetcher) FetchSeries(ctx context.Context, symbol model.Symbol, start, end time.Time) (model.Series, error) {
	q := url.Values{}
	q.Set("symbol", string(symbol))
	q.Set("from", start.Format(model.DateLayout))
	q.Set("to", end.Format(model.DateLayout))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Series{}, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.Series{}, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return model.Series{}, fmt.Errorf("fetch bars: status 404: %w", ErrNoData)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.Series{}, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var bars []restBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return model.Series{}, fmt.Errorf("decode bars: %w", err)
	}
	if len(bars) == 0 {
		return model.Series{}, fmt.Errorf("fetch bars: %w", ErrNoData)
	}

	obs := make([]model.Observation, 0, len(bars))
	for _, b := range bars {
		d, err := model.ParseDate(b.Date)
		if err != nil {
			return model.Series{}, fmt.Errorf("decode bar date %q: %w", b.Date, err)
		}
		adj := b.Close
		if b.AdjClose != nil {
			adj = *b.AdjClose
		}
		obs = append(obs, model.Observation{
			Date:     d,
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: adj,
			Volume:   b.Volume,
		})
	}
	// Ensure chronological order
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return model.Series{Symbol: symbol, Observations: obs, FetchedAt: time.Now()}, nil
}
