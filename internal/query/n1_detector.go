package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// MaxTableNames caps the tables remembered per pattern
	MaxTableNames = 10
	// DefaultMaxPatterns caps the number of distinct patterns tracked
	DefaultMaxPatterns = 1000
)

// N1Detector counts structurally identical statements inside a sliding window.
// Lazy association loads issued once per parent row show up as one pattern
// with a high count.
type N1Detector struct {
	mu         sync.Mutex
	patterns   map[string]*PatternStats
	maxSize    int
	threshold  int
	timeWindow time.Duration
	now        func() time.Time
}

// PatternStats is what the detector knows about one normalized statement
type PatternStats struct {
	Pattern    string
	Count      int
	FirstSeen  time.Time
	LastSeen   time.Time
	TableNames []string
}

// N1Alert is raised when a pattern reaches the threshold inside the window
type N1Alert struct {
	Pattern    string
	Count      int
	TableNames []string
	TimeWindow time.Duration
}

func (a N1Alert) String() string {
	return fmt.Sprintf("N+1 query detected: %q executed %d times in %v on %v",
		a.Pattern, a.Count, a.TimeWindow, a.TableNames)
}

func NewN1Detector(threshold int, timeWindow time.Duration) *N1Detector {
	return NewN1DetectorWithMaxSize(threshold, timeWindow, DefaultMaxPatterns)
}

func NewN1DetectorWithMaxSize(threshold int, timeWindow time.Duration, maxSize int) *N1Detector {
	if threshold <= 0 {
		threshold = 5
	}
	if timeWindow <= 0 {
		timeWindow = time.Second
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxPatterns
	}
	return &N1Detector{
		patterns:   make(map[string]*PatternStats),
		maxSize:    maxSize,
		threshold:  threshold,
		timeWindow: timeWindow,
		now:        time.Now,
	}
}

// DefaultN1Detector flags five identical statements within one second
func DefaultN1Detector() *N1Detector {
	return NewN1Detector(5, time.Second)
}

// Record notes one execution of sql against table. It returns an alert the
// moment the pattern reaches the threshold, once per window.
func (d *N1Detector) Record(sql string, table string) (N1Alert, bool) {
	if d == nil {
		return N1Alert{}, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	pattern := Normalize(sql)

	stats, ok := d.patterns[pattern]
	if ok && now.Sub(stats.FirstSeen) > d.timeWindow {
		delete(d.patterns, pattern)
		ok = false
	}
	if !ok {
		if len(d.patterns) >= d.maxSize {
			d.evictOldest()
		}
		stats = &PatternStats{Pattern: pattern, FirstSeen: now}
		d.patterns[pattern] = stats
	}

	stats.Count++
	stats.LastSeen = now
	if table != "" && len(stats.TableNames) < MaxTableNames && !contains(stats.TableNames, table) {
		stats.TableNames = append(stats.TableNames, table)
	}

	if stats.Count != d.threshold {
		return N1Alert{}, false
	}
	return N1Alert{
		Pattern:    pattern,
		Count:      stats.Count,
		TableNames: append([]string(nil), stats.TableNames...),
		TimeWindow: stats.LastSeen.Sub(stats.FirstSeen),
	}, true
}

// Check returns the patterns over threshold and forgets expired ones.
// Alerts are ordered by descending count.
func (d *N1Detector) Check() []N1Alert {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	var alerts []N1Alert
	for pattern, stats := range d.patterns {
		if now.Sub(stats.FirstSeen) > d.timeWindow {
			delete(d.patterns, pattern)
			continue
		}
		if stats.Count >= d.threshold {
			alerts = append(alerts, N1Alert{
				Pattern:    pattern,
				Count:      stats.Count,
				TableNames: append([]string(nil), stats.TableNames...),
				TimeWindow: stats.LastSeen.Sub(stats.FirstSeen),
			})
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Count != alerts[j].Count {
			return alerts[i].Count > alerts[j].Count
		}
		return alerts[i].Pattern < alerts[j].Pattern
	})
	return alerts
}

// Reset forgets everything recorded so far
func (d *N1Detector) Reset() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.patterns = make(map[string]*PatternStats)
	d.mu.Unlock()
}

func (d *N1Detector) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, stats := range d.patterns {
		if oldestKey == "" || stats.FirstSeen.Before(oldest) {
			oldestKey = key
			oldest = stats.FirstSeen
		}
	}
	delete(d.patterns, oldestKey)
}

var (
	stringLiteral = regexp.MustCompile(`'(?:[^']|'')*'`)
	numberLiteral = regexp.MustCompile(`\b\d+\b`)
	placeholder   = regexp.MustCompile(`\$\d+|\?`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Normalize collapses literals and placeholders so statements that differ only
// in their values share a pattern.
func Normalize(sql string) string {
	s := stringLiteral.ReplaceAllString(sql, "?")
	s = placeholder.ReplaceAllString(s, "?")
	s = numberLiteral.ReplaceAllString(s, "?")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
