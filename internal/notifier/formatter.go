package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"QuoteTables/internal/model"
)

// maxListed caps how many symbols a message names before summarising.
const maxListed = 15

func symbolList(syms []model.Symbol) string {
	var b strings.Builder
	for i, s := range syms {
		if i == maxListed {
			b.WriteString(fmt.Sprintf(" … (+%d)", len(syms)-maxListed))
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(html.EscapeString(string(s)))
	}
	return b.String()
}

// FormatRunSummary formats a finished harvest run into a Telegram message.
func FormatRunSummary(run *model.RunSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>QuoteTables</b> | %s → %s\n\n",
		run.Start.Format(model.DateLayout), run.End.Format(model.DateLayout)))
	if len(run.Universes) > 0 {
		b.WriteString(fmt.Sprintf("Sources: %s\n", html.EscapeString(strings.Join(run.Universes, ", "))))
	}
	b.WriteString(fmt.Sprintf("Symbols: %d requested, %d fetched, %d retained\n",
		run.Requested, run.Fetched, len(run.Retained)))
	b.WriteString(fmt.Sprintf("Rows per symbol: %d\n", run.Length))

	if len(run.Skipped) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ <b>Skipped (%d):</b> %s\n", len(run.Skipped), symbolList(run.Skipped)))
	}
	if len(run.Dropped) > 0 {
		b.WriteString(fmt.Sprintf("✂️ <b>Dropped (%d):</b> %s\n", len(run.Dropped), symbolList(run.Dropped)))
	}
	if run.Output != "" {
		b.WriteString(fmt.Sprintf("\nOutput: <code>%s</code>\n", html.EscapeString(run.Output)))
	}
	b.WriteString(fmt.Sprintf("Took %s | run %s", run.Duration.Round(100*time.Millisecond), shortID(run.ID)))
	return b.String()
}

// FormatRunFailure formats a run that aborted before writing its tables.
func FormatRunFailure(start, end string, err error) string {
	return fmt.Sprintf("❌ <b>QuoteTables</b> | %s → %s\n\nHarvest failed: %s",
		start, end, html.EscapeString(err.Error()))
}

// FormatHistory lists archived runs, most recent first.
func FormatHistory(runs []model.RunSummary) string {
	if len(runs) == 0 {
		return "No runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("• %s %s → %s: %d/%d retained, M=%d\n",
			r.StartedAt.Format("2006-01-02 15:04"),
			r.Start.Format(model.DateLayout), r.End.Format(model.DateLayout),
			len(r.Retained), r.Requested, r.Length))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
