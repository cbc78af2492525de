package synthesizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvchat/internal/analyzer"
	"csvchat/internal/dataset"
	"csvchat/internal/domain"
)

const sampleCSV = "user_id,product,price,status\n" +
	"1,apple,1.50,active\n" +
	"2,banana,2.00,active\n" +
	"3,apple,NA,active\n" +
	"4,cherry,3.25,active\n" +
	"5,apple,1.50,active\n" +
	"6,banana,2.00,active\n" +
	"7,apple,4.75,active\n"

func loadSummary(t *testing.T) (*domain.Dataset, *domain.DatasetSummary) {
	t.Helper()
	ds, err := dataset.Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	summary, err := analyzer.Analyze(ds)
	require.NoError(t, err)
	return ds, summary
}

func TestSynthesize_ChunkCountAndOrder(t *testing.T) {
	ds, summary := loadSummary(t)
	chunks := Synthesize(ds, summary)

	// 1 metadata + one per column + 1 missing + 1 sample.
	require.Len(t, chunks, 4+3)
	assert.Equal(t, "metadata", chunks[0].Kind)
	assert.Equal(t, "column:user_id", chunks[1].Kind)
	assert.Equal(t, "column:product", chunks[2].Kind)
	assert.Equal(t, "column:price", chunks[3].Kind)
	assert.Equal(t, "column:status", chunks[4].Kind)
	assert.Equal(t, "missing", chunks[5].Kind)
	assert.Equal(t, "sample", chunks[6].Kind)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
	}
}

func TestSynthesize_MetadataChunk(t *testing.T) {
	ds, summary := loadSummary(t)
	text := Synthesize(ds, summary)[0].Text
	assert.Contains(t, text, "Shape: 7 rows x 4 columns")
	assert.Contains(t, text, "Columns: user_id, product, price, status")
}

func TestSynthesize_ColumnChunks(t *testing.T) {
	ds, summary := loadSummary(t)
	chunks := Synthesize(ds, summary)

	product := chunks[2].Text
	assert.Contains(t, product, "Column: product")
	assert.Contains(t, product, "Data type: string")
	assert.Contains(t, product, "Unique values: 3")
	assert.Contains(t, product, "Most frequent value: apple")
	assert.Contains(t, product, "Max length: 6")
	assert.NotContains(t, product, "constant")

	status := chunks[4].Text
	assert.Contains(t, status, "This column has a constant value.")

	// Numeric columns carry no max length fact.
	assert.NotContains(t, chunks[3].Text, "Max length")
}

func TestSynthesize_MissingChunkListsOnlyAffectedColumns(t *testing.T) {
	ds, summary := loadSummary(t)
	text := Synthesize(ds, summary)[5].Text
	assert.Contains(t, text, "Missing Values Analysis:")
	assert.Contains(t, text, "price: 1 missing values (14.29%)")
	assert.NotContains(t, text, "product:")
	assert.NotContains(t, text, "user_id:")
}

func TestSynthesize_SampleChunkCapsAtFiveRows(t *testing.T) {
	ds, summary := loadSummary(t)
	text := Synthesize(ds, summary)[6].Text
	assert.True(t, strings.HasPrefix(text, "Sample Data (first 5 rows):\n"))

	// Header line plus exactly five data rows.
	table := strings.TrimPrefix(text, "Sample Data (first 5 rows):\n")
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	assert.Len(t, lines, 6)
	assert.Contains(t, lines[1], "apple")
	// Missing cells render as NaN.
	assert.Contains(t, lines[3], "NaN")
}

func TestSynthesize_SampleSmallerThanCap(t *testing.T) {
	ds, err := dataset.Load(strings.NewReader("a\n1\n2\n"))
	require.NoError(t, err)
	summary, err := analyzer.Analyze(ds)
	require.NoError(t, err)

	chunks := Synthesize(ds, summary)
	table := strings.TrimPrefix(chunks[len(chunks)-1].Text, "Sample Data (first 5 rows):\n")
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	assert.Len(t, lines, 3)
}

func TestOverview(t *testing.T) {
	_, summary := loadSummary(t)
	out := Overview(summary)
	assert.Contains(t, out, "Dataset Summary (7 rows x 4 columns)")
	assert.Contains(t, out, "Columns (4 total):")
	assert.Contains(t, out, "user_id, product, price, status")
	assert.NotContains(t, out, "...")
	assert.Contains(t, out, "- integer: 1 columns")
	assert.Contains(t, out, "- string: 2 columns")
	assert.Contains(t, out, "- float: 1 columns")
}

func TestOverview_TruncatesColumnList(t *testing.T) {
	ds, err := dataset.Load(strings.NewReader("a,b,c,d,e,f,g\n1,2,3,4,5,6,7\n"))
	require.NoError(t, err)
	summary, err := analyzer.Analyze(ds)
	require.NoError(t, err)

	out := Overview(summary)
	assert.Contains(t, out, "a, b, c, d, e...")
	assert.NotContains(t, out, "f, g")
}
