// Package synthesizer renders analyzer output into independent text
// chunks for the retrieval index, plus the human-facing overview shown
// after a successful load.
package synthesizer

import (
	"fmt"
	"strings"

	"csvchat/internal/domain"
)

// sampleRows is the fixed size of the sample-data chunk.
const sampleRows = 5

// Synthesize produces the chunk batch in fixed order: one metadata
// chunk, one chunk per column, one missing-values chunk, one sample-data
// chunk. Every chunk stands on its own; retrieval may return any subset.
func Synthesize(ds *domain.Dataset, summary *domain.DatasetSummary) []domain.DocumentChunk {
	chunks := make([]domain.DocumentChunk, 0, summary.Metadata.Cols+3)
	add := func(kind, text string) {
		chunks = append(chunks, domain.DocumentChunk{Kind: kind, Text: text, Index: len(chunks)})
	}

	add("metadata", metadataChunk(summary))
	for _, name := range summary.Metadata.Columns {
		add("column:"+name, columnChunk(name, summary))
	}
	add("missing", missingChunk(summary))
	add("sample", sampleChunk(ds))
	return chunks
}

func metadataChunk(summary *domain.DatasetSummary) string {
	m := summary.Metadata
	var b strings.Builder
	b.WriteString("Dataset Metadata:\n")
	fmt.Fprintf(&b, "Shape: %d rows x %d columns\n", m.Rows, m.Cols)
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(m.Columns, ", "))
	return b.String()
}

func columnChunk(name string, summary *domain.DatasetSummary) string {
	profile := summary.Analysis.ColumnStats[name]
	var b strings.Builder
	fmt.Fprintf(&b, "Column: %s\n", name)
	fmt.Fprintf(&b, "Data type: %s\n", summary.Metadata.DTypes[name])
	fmt.Fprintf(&b, "Unique values: %d\n", profile.UniqueCount)
	if profile.IsConstant {
		b.WriteString("This column has a constant value.\n")
	}
	if profile.HasMostFrequent {
		fmt.Fprintf(&b, "Most frequent value: %s\n", profile.MostFrequent)
	}
	if profile.HasMaxLength {
		fmt.Fprintf(&b, "Max length: %d\n", profile.MaxLength)
	}
	return b.String()
}

func missingChunk(summary *domain.DatasetSummary) string {
	missing := summary.Analysis.Missing
	var b strings.Builder
	b.WriteString("Missing Values Analysis:\n")
	for _, name := range summary.Metadata.Columns {
		if count := missing.CountByColumn[name]; count > 0 {
			fmt.Fprintf(&b, "%s: %d missing values (%.2f%%)\n", name, count, missing.PercentByColumn[name])
		}
	}
	return b.String()
}

func sampleChunk(ds *domain.Dataset) string {
	return fmt.Sprintf("Sample Data (first %d rows):\n%s", sampleRows, renderHead(ds, sampleRows))
}

// renderHead formats the first n rows as an aligned table with a leading
// row-number column. Missing cells render as NaN.
func renderHead(ds *domain.Dataset, n int) string {
	if n > ds.Rows {
		n = ds.Rows
	}
	cells := make([][]string, len(ds.Columns))
	widths := make([]int, len(ds.Columns))
	for j, col := range ds.Columns {
		cells[j] = make([]string, n+1)
		cells[j][0] = col.Name
		widths[j] = len(col.Name)
		for i := 0; i < n; i++ {
			v := col.Values[i]
			if col.Missing[i] {
				v = "NaN"
			}
			cells[j][i+1] = v
			if len(v) > widths[j] {
				widths[j] = len(v)
			}
		}
	}
	idxWidth := len(fmt.Sprintf("%d", max(n-1, 0)))

	var b strings.Builder
	for i := 0; i <= n; i++ {
		if i == 0 {
			b.WriteString(strings.Repeat(" ", idxWidth))
		} else {
			fmt.Fprintf(&b, "%*d", idxWidth, i-1)
		}
		for j := range ds.Columns {
			fmt.Fprintf(&b, "  %*s", widths[j], cells[j][i])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Overview builds the post-load welcome report: shape, leading column
// names, and a data-type histogram.
func Overview(summary *domain.DatasetSummary) string {
	m := summary.Metadata
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset Summary (%d rows x %d columns)\n", m.Rows, m.Cols)

	fmt.Fprintf(&b, "\nColumns (%d total):\n", len(m.Columns))
	shown := m.Columns
	ellipsis := ""
	if len(shown) > 5 {
		shown = shown[:5]
		ellipsis = "..."
	}
	b.WriteString(strings.Join(shown, ", ") + ellipsis + "\n")

	b.WriteString("\nData Types:\n")
	counts := make(map[domain.DType]int, len(m.DTypes))
	var order []domain.DType
	for _, name := range m.Columns {
		t := m.DTypes[name]
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	for _, t := range order {
		fmt.Fprintf(&b, "- %s: %d columns\n", t, counts[t])
	}
	return strings.TrimRight(b.String(), "\n")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
