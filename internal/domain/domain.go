package domain

// DType is the inferred storage type of a dataset column.
type DType string

const (
	DTypeInteger  DType = "integer"
	DTypeFloat    DType = "float"
	DTypeBoolean  DType = "boolean"
	DTypeDatetime DType = "datetime"
	DTypeString   DType = "string"
)

// Numeric reports whether the type holds numbers usable in statistics.
func (t DType) Numeric() bool { return t == DTypeInteger || t == DTypeFloat }

// Column is a single named column with raw cell values.
// Values holds the trimmed cell text; Missing marks null cells, whose
// Values entry is meaningless.
type Column struct {
	Name    string
	DType   DType
	Values  []string
	Missing []bool
}

// Dataset is an in-memory table. It is replaced wholesale on every load
// and never mutated in place.
type Dataset struct {
	Columns []Column
	Rows    int
}

// Shape returns (rows, columns).
func (d *Dataset) Shape() (int, int) { return d.Rows, len(d.Columns) }

// ColumnNames returns the header in column order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Metadata describes the structural facts of a loaded dataset.
type Metadata struct {
	Rows    int
	Cols    int
	Columns []string
	DTypes  map[string]DType
}

// ColumnProfile holds per-column statistics. Recomputed fully on each
// load, never partially updated.
type ColumnProfile struct {
	UniqueCount   int
	IsNumeric     bool
	IsCategorical bool
	IsText        bool
	IsDatetime    bool
	IsConstant    bool

	MostFrequent    string
	HasMostFrequent bool

	// MaxLength is only meaningful for text columns.
	MaxLength    int
	HasMaxLength bool
}

// MissingReport aggregates null-cell statistics. Per-column percentages
// use the row count as denominator; TotalPercent uses the total cell
// count. The two denominators differ on purpose.
type MissingReport struct {
	CountByColumn   map[string]int
	PercentByColumn map[string]float64
	TotalMissing    int
	TotalPercent    float64
}

// DuplicateReport describes full-row duplicates.
type DuplicateReport struct {
	Count   int
	Percent float64
	Rows    []int
}

// Analysis is the computed half of a dataset summary.
type Analysis struct {
	Missing      MissingReport
	ColumnStats  map[string]ColumnProfile
	Quality      map[string][]string
	PotentialIDs []string
	Duplicates   DuplicateReport
}

// DatasetSummary is an immutable snapshot of everything the analyzer
// derived from one loaded dataset.
type DatasetSummary struct {
	Metadata Metadata
	Analysis Analysis
}

// DocumentChunk is a self-contained piece of retrievable text describing
// one facet of the dataset. Each chunk must be interpretable on its own,
// since retrieval may return any subset.
type DocumentChunk struct {
	Kind  string
	Text  string
	Index int
}

// SearchResult pairs a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk DocumentChunk
	Score float64
}

// AnswerResult is the raw outcome of one question: the generated answer
// plus the retrieved chunk texts that supported it, most relevant first.
type AnswerResult struct {
	Answer  string
	Sources []string
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in the session transcript.
type Message struct {
	Role    Role
	Content string
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus and
// must be deterministic for identical input.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Generator produces free text from a prompt.
type Generator interface {
	Generate(prompt string) (string, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(chunks []DocumentChunk, vectors [][]float64) error
	Search(vector []float64, topK int) ([]SearchResult, error)
	Clear() error
}
