package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CleaningRule inspects a single row and rejects it with an error.
type CleaningRule interface {
	Apply(columns []string, row []string) error
	Name() string
}

// QualityIssue records a rejected row.
type QualityIssue struct {
	Rule      string    `json:"rule"`
	Row       int       `json:"row"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// CleaningStats summarizes a cleaning pass.
type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	Issues         map[string]int64 `json:"issues"`
	LastClean      time.Time        `json:"last_clean"`
}

// Cleaner applies a rule list to table rows and keeps the ones that pass.
type Cleaner struct {
	rules []CleaningRule

	issues     []QualityIssue
	issuesLock sync.RWMutex

	stats     CleaningStats
	statsLock sync.RWMutex
}

// NewCleaner creates a cleaner with no rules.
func NewCleaner(rules ...CleaningRule) *Cleaner {
	cleaner := &Cleaner{
		stats: CleaningStats{Issues: make(map[string]int64)},
	}
	for _, rule := range rules {
		cleaner.AddRule(rule)
	}
	return cleaner
}

// AddRule appends a cleaning rule.
func (c *Cleaner) AddRule(rule CleaningRule) {
	c.rules = append(c.rules, rule)
}

// Clean returns a table holding only the rows every rule accepted, plus the
// issues for rejected ones.
func (c *Cleaner) Clean(t *Table) (*Table, []QualityIssue) {
	cleaned := &Table{Columns: t.Columns}
	var issues []QualityIssue

	c.statsLock.Lock()
	defer c.statsLock.Unlock()

	for i, row := range t.Rows {
		c.stats.TotalProcessed++

		var rowIssues []QualityIssue
		for _, rule := range c.rules {
			if err := rule.Apply(t.Columns, row); err != nil {
				rowIssues = append(rowIssues, QualityIssue{
					Rule:      rule.Name(),
					Row:       i,
					Message:   err.Error(),
					Timestamp: time.Now(),
				})
				c.stats.Issues[rule.Name()]++
			}
		}

		if len(rowIssues) > 0 {
			c.stats.Rejected++
			issues = append(issues, rowIssues...)
			c.issuesLock.Lock()
			c.issues = append(c.issues, rowIssues...)
			c.issuesLock.Unlock()
			continue
		}
		c.stats.Passed++
		cleaned.Rows = append(cleaned.Rows, row)
	}

	c.stats.LastClean = time.Now()
	return cleaned, issues
}

// GetStats returns cleaning statistics.
func (c *Cleaner) GetStats() CleaningStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()
	return c.stats
}

// GetIssues returns up to limit most recent issues.
func (c *Cleaner) GetIssues(limit int) []QualityIssue {
	c.issuesLock.RLock()
	defer c.issuesLock.RUnlock()

	if limit <= 0 || limit > len(c.issues) {
		limit = len(c.issues)
	}
	issues := make([]QualityIssue, limit)
	copy(issues, c.issues[len(c.issues)-limit:])
	return issues
}

// ============ rule implementations ============

// MissingValueRule rejects rows with empty or placeholder cells in the given
// columns. All columns are checked when none are named.
type MissingValueRule struct {
	Columns      []string
	Placeholders []string
}

// NewMissingValueRule uses the common missing markers found in public CSVs.
func NewMissingValueRule(columns ...string) *MissingValueRule {
	return &MissingValueRule{
		Columns:      columns,
		Placeholders: []string{"", "?", "na", "n/a", "null", "unknown"},
	}
}

func (r *MissingValueRule) Name() string { return "missing_value" }

func (r *MissingValueRule) Apply(columns []string, row []string) error {
	check := func(idx int) error {
		if idx >= len(row) {
			return fmt.Errorf("row has %d cells, want %d", len(row), len(columns))
		}
		cell := strings.ToLower(strings.TrimSpace(row[idx]))
		for _, marker := range r.Placeholders {
			if cell == marker {
				return fmt.Errorf("missing value in column %q", columns[idx])
			}
		}
		return nil
	}

	if len(r.Columns) == 0 {
		for idx := range columns {
			if err := check(idx); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range r.Columns {
		idx := indexOf(columns, name)
		if idx < 0 {
			return fmt.Errorf("column %q not found", name)
		}
		if err := check(idx); err != nil {
			return err
		}
	}
	return nil
}

// NumericRangeRule rejects rows whose column value is not a number inside
// [Min, Max].
type NumericRangeRule struct {
	Column string
	Min    float64
	Max    float64
}

func NewNumericRangeRule(column string, min, max float64) *NumericRangeRule {
	return &NumericRangeRule{Column: column, Min: min, Max: max}
}

func (r *NumericRangeRule) Name() string { return "numeric_range" }

func (r *NumericRangeRule) Apply(columns []string, row []string) error {
	idx := indexOf(columns, r.Column)
	if idx < 0 {
		return fmt.Errorf("column %q not found", r.Column)
	}
	if idx >= len(row) {
		return fmt.Errorf("row has %d cells, want %d", len(row), len(columns))
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return fmt.Errorf("column %q value %q is not numeric", r.Column, row[idx])
	}
	if value < r.Min || value > r.Max {
		return fmt.Errorf("column %q value %.4f out of range [%.4f, %.4f]", r.Column, value, r.Min, r.Max)
	}
	return nil
}

// DuplicateRowRule rejects a row identical to one seen earlier in the pass.
type DuplicateRowRule struct {
	seen map[string]struct{}
	mu   sync.Mutex
}

func NewDuplicateRowRule() *DuplicateRowRule {
	return &DuplicateRowRule{seen: make(map[string]struct{})}
}

func (r *DuplicateRowRule) Name() string { return "duplicate_row" }

func (r *DuplicateRowRule) Apply(columns []string, row []string) error {
	key := strings.Join(row, "\x1f")

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seen[key]; exists {
		return fmt.Errorf("duplicate row")
	}
	r.seen[key] = struct{}{}
	return nil
}

func indexOf(columns []string, name string) int {
	for i, col := range columns {
		if col == name {
			return i
		}
	}
	return -1
}
