package symbols

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"QuoteTables/internal/model"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// HTMLTableProvider scrapes the membership of an index from an HTML table,
// such as the constituents tables published on Wikipedia.
type HTMLTableProvider struct {
	URL     string
	TableID string // id attribute of the <table>
	Column  string // header text of the symbol column
	Client  *http.Client
}

// NewHTMLTableProvider creates a provider with optional proxy support.
func NewHTMLTableProvider(pageURL, tableID, column, proxyURL string) *HTMLTableProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTMLTableProvider{
		URL:     pageURL,
		TableID: tableID,
		Column:  column,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// List downloads the page and extracts the symbol column.
func (p *HTMLTableProvider) List(ctx context.Context) ([]model.Symbol, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: status %d, body: %s", p.URL, resp.StatusCode, string(body))
	}
	return ParseTable(resp.Body, p.TableID, p.Column)
}

// ParseTable reads an HTML document and returns the non-empty cells of the
// named column of the table with the given id, in document order.
func ParseTable(r io.Reader, tableID, column string) ([]model.Symbol, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := findByID(doc, "table", tableID)
	if table == nil {
		return nil, fmt.Errorf("table %q not found", tableID)
	}

	col := -1
	var out []model.Symbol
	for _, tr := range findAll(table, "tr") {
		cells := rowCells(tr)
		if col < 0 {
			for i, c := range cells {
				if c.header && strings.EqualFold(c.text, column) {
					col = i
					break
				}
			}
			continue
		}
		if col >= len(cells) || cells[col].text == "" {
			continue
		}
		out = append(out, model.Symbol(cells[col].text))
	}
	if col < 0 {
		return nil, fmt.Errorf("column %q not found in table %q", column, tableID)
	}
	return out, nil
}

type cell struct {
	text   string
	header bool
}

func rowCells(tr *html.Node) []cell {
	var cells []cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cells = append(cells, cell{text: cellText(c), header: c.Data == "th"})
	}
	return cells
}

// cellText concatenates the text of a cell, NFKD-normalized so that
// non-breaking spaces collapse before trimming.
func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(norm.NFKD.String(b.String()))
}

func findByID(n *html.Node, tag, id string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, tag, id); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
		out = append(out, findAll(c, tag)...)
	}
	return out
}
