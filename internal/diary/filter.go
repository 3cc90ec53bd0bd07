package diary

import (
	"sort"
	"strings"
)

// DayGroup is one calendar day's records, ordered by time of day.
type DayGroup struct {
	Day     Day
	Records []*Record
}

// GroupByDay buckets records by calendar date, days ascending and each day's
// records ordered by clock (stable, so source order breaks ties). Records
// whose date cannot be derived are skipped.
func GroupByDay(records []*Record) []DayGroup {
	buckets := make(map[Day][]*Record)
	for _, record := range records {
		day, _, ok := record.Day()
		if !ok {
			continue
		}
		buckets[day] = append(buckets[day], record)
	}

	days := make([]Day, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	groups := make([]DayGroup, 0, len(days))
	for _, day := range days {
		bucket := buckets[day]
		sort.SliceStable(bucket, func(i, j int) bool {
			_, ci, _ := bucket[i].Day()
			_, cj, _ := bucket[j].Day()
			return ci < cj
		})
		groups = append(groups, DayGroup{Day: day, Records: bucket})
	}
	return groups
}

// Last returns the final n records in source order, or all of them when
// fewer exist. n <= 0 returns everything.
func Last(records []*Record, n int) []*Record {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// FilterByDayRange keeps records whose calendar date falls within [from, to].
// Either bound may be nil to leave that side open. Records without a
// derivable date are dropped whenever a bound is set.
func FilterByDayRange(records []*Record, from, to *Day) []*Record {
	if from == nil && to == nil {
		return records
	}

	var result []*Record
	for _, record := range records {
		day, _, ok := record.Day()
		if !ok {
			continue
		}
		if from != nil && day.Before(*from) {
			continue
		}
		if to != nil && to.Before(day) {
			continue
		}
		result = append(result, record)
	}
	return result
}

// FilterByText keeps records whose title, body, or location contains the
// query, case-insensitively. An empty query keeps everything.
func FilterByText(records []*Record, query string) []*Record {
	if query == "" {
		return records
	}

	needle := strings.ToLower(query)
	var result []*Record
	for _, record := range records {
		haystack := strings.ToLower(record.Title + "\n" + record.Body + "\n" + record.Location)
		if strings.Contains(haystack, needle) {
			result = append(result, record)
		}
	}
	return result
}
