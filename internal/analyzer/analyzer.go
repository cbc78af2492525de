// Package analyzer computes the structural and statistical facts about a
// loaded dataset that the document synthesizer turns into retrievable
// text.
package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"csvchat/internal/domain"
)

// A column counts as categorical below this many distinct values,
// independent of its type.
const categoricalThreshold = 20

var (
	specialCharRe   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	numericStringRe = regexp.MustCompile(`^\d+$`)
)

// Analyze derives a full summary from the dataset. It is deterministic
// for a given dataset and fails only on absent input; unreadable files
// never reach this point.
func Analyze(ds *domain.Dataset) (*domain.DatasetSummary, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: no dataset", domain.ErrDataLoad)
	}
	rows, cols := ds.Shape()
	meta := domain.Metadata{
		Rows:    rows,
		Cols:    cols,
		Columns: ds.ColumnNames(),
		DTypes:  make(map[string]domain.DType, cols),
	}
	for _, c := range ds.Columns {
		meta.DTypes[c.Name] = c.DType
	}
	return &domain.DatasetSummary{
		Metadata: meta,
		Analysis: domain.Analysis{
			Missing:      analyzeMissing(ds),
			ColumnStats:  analyzeColumns(ds),
			Quality:      analyzeQuality(ds),
			PotentialIDs: findPotentialIDs(ds),
			Duplicates:   findDuplicates(ds),
		},
	}, nil
}

// analyzeMissing counts null cells. Per-column percentages are over the
// row count; the aggregate percentage is over the total cell count. The
// differing denominators are intentional.
func analyzeMissing(ds *domain.Dataset) domain.MissingReport {
	rows, cols := ds.Shape()
	report := domain.MissingReport{
		CountByColumn:   make(map[string]int, cols),
		PercentByColumn: make(map[string]float64, cols),
	}
	for _, c := range ds.Columns {
		count := 0
		for _, m := range c.Missing {
			if m {
				count++
			}
		}
		report.CountByColumn[c.Name] = count
		if rows > 0 {
			report.PercentByColumn[c.Name] = float64(count) / float64(rows) * 100
		} else {
			report.PercentByColumn[c.Name] = 0
		}
		report.TotalMissing += count
	}
	if total := rows * cols; total > 0 {
		report.TotalPercent = float64(report.TotalMissing) / float64(total) * 100
	}
	return report
}

func analyzeColumns(ds *domain.Dataset) map[string]domain.ColumnProfile {
	stats := make(map[string]domain.ColumnProfile, len(ds.Columns))
	for _, c := range ds.Columns {
		unique := uniqueCount(c)
		profile := domain.ColumnProfile{
			UniqueCount:   unique,
			IsNumeric:     c.DType.Numeric(),
			IsCategorical: unique < categoricalThreshold,
			IsText:        c.DType == domain.DTypeString,
			IsDatetime:    c.DType == domain.DTypeDatetime,
			IsConstant:    unique == 1,
		}
		if mode, ok := mostFrequent(c); ok {
			profile.MostFrequent = mode
			profile.HasMostFrequent = true
		}
		if profile.IsText {
			if length, ok := maxLength(c); ok {
				profile.MaxLength = length
				profile.HasMaxLength = true
			}
		}
		stats[c.Name] = profile
	}
	return stats
}

// analyzeQuality flags string columns containing special characters or
// all-digit values, and numeric columns with IQR outliers. Boolean and
// datetime columns are deliberately left unchecked, matching the
// analyzer this reproduces.
func analyzeQuality(ds *domain.Dataset) map[string][]string {
	issues := make(map[string][]string)
	for _, c := range ds.Columns {
		var found []string
		if c.DType == domain.DTypeString {
			special, numeric := false, false
			for i, v := range c.Values {
				if c.Missing[i] {
					continue
				}
				if !special && specialCharRe.MatchString(v) {
					special = true
				}
				if !numeric && numericStringRe.MatchString(v) {
					numeric = true
				}
			}
			if special {
				found = append(found, "special_characters")
			}
			if numeric {
				found = append(found, "numeric_strings")
			}
		}
		if c.DType.Numeric() && hasOutliers(columnFloats(c)) {
			found = append(found, "potential_outliers")
		}
		if len(found) > 0 {
			issues[c.Name] = found
		}
	}
	return issues
}

// findPotentialIDs flags a column when it is fully unique and numeric,
// or when its name looks like an identifier. The two rules trigger
// independently.
func findPotentialIDs(ds *domain.Dataset) []string {
	var ids []string
	for _, c := range ds.Columns {
		name := strings.ToLower(c.Name)
		switch {
		case ds.Rows > 0 && c.DType.Numeric() && uniqueCount(c) == ds.Rows:
			ids = append(ids, c.Name)
		case strings.HasPrefix(name, "id") || strings.HasSuffix(name, "id") || strings.HasSuffix(name, "_id"):
			ids = append(ids, c.Name)
		}
	}
	return ids
}

// findDuplicates reports full-row duplicates. A row is a duplicate when
// an identical row appeared earlier; Rows lists the later positions.
func findDuplicates(ds *domain.Dataset) domain.DuplicateReport {
	report := domain.DuplicateReport{}
	seen := make(map[string]struct{}, ds.Rows)
	var key strings.Builder
	for i := 0; i < ds.Rows; i++ {
		key.Reset()
		for _, c := range ds.Columns {
			if c.Missing[i] {
				key.WriteString("\x00nil")
			} else {
				key.WriteString(c.Values[i])
			}
			key.WriteByte('\x1f')
		}
		k := key.String()
		if _, ok := seen[k]; ok {
			report.Count++
			report.Rows = append(report.Rows, i)
		} else {
			seen[k] = struct{}{}
		}
	}
	if ds.Rows > 0 {
		report.Percent = float64(report.Count) / float64(ds.Rows) * 100
	}
	return report
}

// uniqueCount counts distinct non-missing values.
func uniqueCount(c domain.Column) int {
	seen := make(map[string]struct{}, len(c.Values))
	for i, v := range c.Values {
		if c.Missing[i] {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// mostFrequent returns the modal value. Ties resolve to the smallest
// value, numerically for numeric columns and lexicographically
// otherwise.
func mostFrequent(c domain.Column) (string, bool) {
	counts := make(map[string]int, len(c.Values))
	for i, v := range c.Values {
		if c.Missing[i] {
			continue
		}
		counts[v]++
	}
	if len(counts) == 0 {
		return "", false
	}
	best := ""
	bestCount := 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && valueLess(v, best, c.DType)) {
			best, bestCount = v, n
		}
	}
	return best, true
}

func valueLess(a, b string, t domain.DType) bool {
	if t.Numeric() {
		fa, errA := strconv.ParseFloat(a, 64)
		fb, errB := strconv.ParseFloat(b, 64)
		if errA == nil && errB == nil {
			return fa < fb
		}
	}
	return a < b
}

func maxLength(c domain.Column) (int, bool) {
	found := false
	longest := 0
	for i, v := range c.Values {
		if c.Missing[i] {
			continue
		}
		found = true
		if n := len([]rune(v)); n > longest {
			longest = n
		}
	}
	return longest, found
}

func columnFloats(c domain.Column) []float64 {
	out := make([]float64, 0, len(c.Values))
	for i, v := range c.Values {
		if c.Missing[i] {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// hasOutliers applies the 1.5×IQR rule.
func hasOutliers(values []float64) bool {
	if len(values) == 0 {
		return false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr
	for _, v := range values {
		if v < lo || v > hi {
			return true
		}
	}
	return false
}

// quantile uses linear interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
