package translator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/barasalah2/chartflow/engine"
)

// ============================================================================
// PROMPT BUILDER - Column-driven instructions for the visualization model
// ============================================================================
// The prompt lists chart types, transform codes and the columns with their
// kinds and roles, followed by the first rows of data and the user message.
// At most SnippetRows rows are ever sent.
// ============================================================================

var transformCodes = []string{
	"count", "sum", "mean", "median", "min", "max", "std",
	"percent_of_total", "rank", "topk:N", "bottomk:N", "other_group:0.05",
	"rolling_mean:N", "bin:N", "bin:auto", "normalize", "z_score", "log_scale",
	"alphabetical", "frequency", "date_group:year|quarter|month|day",
	"correlation_matrix",
}

// BuildPrompt renders the system prompt for a request.
func BuildPrompt(req Request) string {
	var b strings.Builder

	// ── Header ────────────────────────────────────────────────────────────
	fmt.Fprintf(&b, `You are a chart designer for a tabular dataset.

CURRENT DATE: %s

YOUR ROLE:
Suggest the charts that best answer the user's message.
Do NOT compute values. A local engine computes every number from the full dataset (%d rows).

`, time.Now().Format("2006-01-02"), req.TotalRows)

	// ── Chart types ───────────────────────────────────────────────────────
	b.WriteString("CHART TYPES:\n")
	kinds := make([]string, len(engine.Kinds))
	for i, k := range engine.Kinds {
		kinds[i] = string(k)
	}
	b.WriteString("  " + strings.Join(kinds, ", ") + "\n\n")

	// ── Transforms ────────────────────────────────────────────────────────
	b.WriteString("TRANSFORM CODES (transform_x / transform_y):\n")
	b.WriteString("  " + strings.Join(transformCodes, ", ") + "\n\n")

	// ── Columns ───────────────────────────────────────────────────────────
	b.WriteString("COLUMNS:\n")
	for _, c := range req.Columns {
		fmt.Fprintf(&b, "  - %s", c.Name)
		if c.Kind != "" {
			fmt.Fprintf(&b, " (%s", c.Kind)
			if c.Role != "" {
				fmt.Fprintf(&b, ", %s", c.Role)
			}
			b.WriteString(")")
		}
		if len(c.Samples) > 0 {
			fmt.Fprintf(&b, " e.g. %s", truncate(strings.Join(c.Samples, ", "), 120))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// ── Snippet ───────────────────────────────────────────────────────────
	if len(req.DataSnippet) > 0 {
		snippet, _ := json.Marshal(req.DataSnippet)
		fmt.Fprintf(&b, "FIRST %d ROWS:\n%s\n\n", len(req.DataSnippet), snippet)
	}

	// ── Rules ─────────────────────────────────────────────────────────────
	b.WriteString(`RULES:
1. x, y and series must be column names from COLUMNS, exactly as written.
2. Put the reduction in "aggregation" (none, count, sum or mean). Do not rely on the title.
3. Use scatter and bubble only with numeric axes.
4. Use date_group on transform_x for dates, and line or area for trends over time.
5. Suggest between 1 and 4 charts.

RESPONSE FORMAT:
{"visualizations": [{"type": "bar", "x": "column", "y": "column", "series": "", "title": "...", "transform_x": "", "transform_y": "", "aggregation": "count"}]}
`)

	if req.Message != "" {
		fmt.Fprintf(&b, "\nUSER MESSAGE: %s\n", req.Message)
	}
	b.WriteString("\nRespond with valid JSON only:")
	return b.String()
}

// ============================================================================
// HELPERS
// ============================================================================

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
