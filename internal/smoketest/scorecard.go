package smoketest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Grade is the band a success percentage falls into
type Grade string

const (
	GradeExcellent Grade = "EXCELLENT"
	GradeGood      Grade = "GOOD"
	GradeWarning   Grade = "WARNING"
	GradeCritical  Grade = "CRITICAL"
)

// Grade thresholds, inclusive on the lower bound.
const (
	ExcellentThreshold = 85.0
	GoodThreshold      = 70.0
	WarningThreshold   = 50.0
)

// ErrScorecardFrozen is returned when recording into a finished run.
var ErrScorecardFrozen = errors.New("scorecard is frozen")

// GradeFor maps a percentage onto its band.
func GradeFor(percentage float64) Grade {
	switch {
	case percentage >= ExcellentThreshold:
		return GradeExcellent
	case percentage >= GoodThreshold:
		return GradeGood
	case percentage >= WarningThreshold:
		return GradeWarning
	default:
		return GradeCritical
	}
}

// ExitCodeFor returns the process exit code for a percentage. CI depends on
// the 70% line.
func ExitCodeFor(percentage float64) int {
	if percentage >= GoodThreshold {
		return 0
	}
	return 1
}

// ScoreEntry is one scenario outcome on the scorecard
type ScoreEntry struct {
	Name   string
	Passed bool
}

// Scorecard records scenario outcomes in insertion order
type Scorecard struct {
	entries []ScoreEntry
	index   map[string]int
	frozen  bool
}

// NewScorecard creates an empty scorecard
func NewScorecard() *Scorecard {
	return &Scorecard{index: make(map[string]int)}
}

// Record stores the outcome for name. Recording the same name twice keeps
// its original position and replaces the outcome.
func (s *Scorecard) Record(name string, passed bool) error {
	if s.frozen {
		return ErrScorecardFrozen
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}

	if i, ok := s.index[name]; ok {
		s.entries[i].Passed = passed
		return nil
	}

	s.index[name] = len(s.entries)
	s.entries = append(s.entries, ScoreEntry{Name: name, Passed: passed})
	return nil
}

// Freeze stops further recording
func (s *Scorecard) Freeze() {
	s.frozen = true
}

// Frozen reports whether Freeze was called
func (s *Scorecard) Frozen() bool {
	return s.frozen
}

// Entries returns a copy of the entries in insertion order
func (s *Scorecard) Entries() []ScoreEntry {
	out := make([]ScoreEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Result returns the outcome recorded for name
func (s *Scorecard) Result(name string) (passed bool, ok bool) {
	i, ok := s.index[name]
	if !ok {
		return false, false
	}
	return s.entries[i].Passed, true
}

// Passed counts passing entries
func (s *Scorecard) Passed() int {
	n := 0
	for _, e := range s.entries {
		if e.Passed {
			n++
		}
	}
	return n
}

// Total counts all entries
func (s *Scorecard) Total() int {
	return len(s.entries)
}

// Failed counts failing entries
func (s *Scorecard) Failed() int {
	return s.Total() - s.Passed()
}

// Percentage is 100 * passed / total, or 0 for an empty scorecard.
func (s *Scorecard) Percentage() float64 {
	if len(s.entries) == 0 {
		return 0
	}
	return 100 * float64(s.Passed()) / float64(len(s.entries))
}

// Grade returns the band for the current percentage
func (s *Scorecard) Grade() Grade {
	return GradeFor(s.Percentage())
}

// ExitCode returns the process exit code for the current percentage
func (s *Scorecard) ExitCode() int {
	return ExitCodeFor(s.Percentage())
}

// Lines renders one line per entry with names padded to width.
func (s *Scorecard) Lines(width int) []string {
	lines := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		status := "✅ PASS"
		if !e.Passed {
			status = "❌ FAIL"
		}
		lines = append(lines, fmt.Sprintf("%s : %s", runewidth.FillRight(FormatName(e.Name), width), status))
	}
	return lines
}

// Summary renders "LABEL: passed/total (pp.p%)".
func (s *Scorecard) Summary(label string) string {
	return fmt.Sprintf("%s: %d/%d (%.1f%%)", label, s.Passed(), s.Total(), s.Percentage())
}

// MarshalJSON encodes the entries as an object, keeping insertion order.
func (s *Scorecard) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if e.Passed {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormatName turns "n8n_workflows" into "N8N Workflows": underscores become
// spaces, a letter following a non-letter is upper-cased and any other
// letter is lower-cased.
func FormatName(name string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range strings.ReplaceAll(name, "_", " ") {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
