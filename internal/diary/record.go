// Package diary defines the diary record schema and the calendar grouping
// used by the icex exporters.
package diary

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// Record is one diary entry as fetched from the service. Records are
// immutable after fetch; the exporters only read them.
type Record struct {
	ID        string `json:"id"`
	DateLabel string `json:"date_label"`
	DateTime  string `json:"datetime_iso"`
	LocalTime string `json:"datetime_local"`
	TimeLabel string `json:"time_label"`
	Title     string `json:"title"`
	Body      string `json:"text"`
	Location  string `json:"location"`
	SourceURL string `json:"source_url"`
	// Extra preserves source-provided attributes the schema has no named
	// field for, passed through opaquely.
	Extra map[string]string `json:"extra,omitempty"`
}

// Day is a calendar date used as the bucketing key for per-day Markdown
// files. Time of day never participates in Day equality.
type Day struct {
	Year  int
	Month int
	Day   int
}

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is an earlier calendar date than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

var (
	// localTimePattern matches the service's local rendering, "2006-01-02 15:04".
	localTimePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})\s+(\d{2}:\d{2})`)
	// dayLabelPattern matches the day header labels, e.g. "1月2日 2024".
	dayLabelPattern = regexp.MustCompile(`(\d{1,2})月\s*(\d{1,2})日\s*(\d{4})`)
	clockPattern    = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// Day derives the record's calendar date and clock label ("HH:MM").
// The local timestamp is preferred; the day header label plus the time label
// is the fallback for older entries that lack one. Returns ok=false when
// neither source yields a date.
func (r *Record) Day() (Day, string, bool) {
	if m := localTimePattern.FindStringSubmatch(r.LocalTime); m != nil {
		return Day{atoi(m[1]), atoi(m[2]), atoi(m[3])}, m[4], true
	}

	dm := dayLabelPattern.FindStringSubmatch(r.DateLabel)
	tm := clockPattern.FindStringSubmatch(r.TimeLabel)
	if dm == nil || tm == nil {
		return Day{}, "", false
	}

	day := Day{Year: atoi(dm[3]), Month: atoi(dm[1]), Day: atoi(dm[2])}
	clock := fmt.Sprintf("%02d:%02d", atoi(tm[1]), atoi(tm[2]))
	return day, clock, true
}

// atoi converts digits already validated by a pattern match.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Dedupe removes duplicate records by ID, keeping the first occurrence and
// preserving source order. Pagination can overlap at page boundaries, which
// is the only known duplicate source.
func Dedupe(records []*Record) []*Record {
	seen := make(map[string]bool, len(records))
	result := make([]*Record, 0, len(records))
	for _, record := range records {
		if seen[record.ID] {
			continue
		}
		seen[record.ID] = true
		result = append(result, record)
	}
	return result
}

// ReadDump loads records from a structured dump file written by a previous
// export run.
func ReadDump(path string) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dump %s: %w", path, err)
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing dump %s: %w", path, err)
	}
	return records, nil
}
