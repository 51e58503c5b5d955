package ingest

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// excelEpoch is the zero point of Excel serial dates. Excel treats 1900 as a
// leap year, so day 1 maps to 1899-12-31 only if the epoch is shifted to
// 1899-12-30; serials at or after 1900-03-01 then land on the right day.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxExcelSerial bounds serial interpretation to dates before the year 2200.
const maxExcelSerial = 109574

var errUnparseableDate = errors.New("unparseable date")

// ParseDate interprets a raw cell value as a calendar date, normalized to
// UTC midnight. Accepted inputs:
//
//   - ISO strings (YYYY-MM-DD), including year-first with "/" separators
//   - D/M/Y-family strings with "/" or "-" separators and 2- or 4-digit
//     years; day and month are disambiguated by range (a value above 12 can
//     only be a day), defaulting to day-first when both fit
//   - Excel serial-date numbers (numeric cells or all-digit strings)
//
// It returns an error when no interpretation parses to a real calendar date.
func ParseDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC), nil
	case float64:
		return serialDate(int(math.Floor(x)))
	case int:
		return serialDate(x)
	case int64:
		return serialDate(int(x))
	case string:
		return parseDateString(x)
	default:
		return time.Time{}, errUnparseableDate
	}
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errUnparseableDate
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}

	// All-digit strings are Excel serials exported as text.
	if n, err := strconv.Atoi(s); err == nil {
		return serialDate(n)
	}

	sep := ""
	switch {
	case strings.Contains(s, "/"):
		sep = "/"
	case strings.Contains(s, "-"):
		sep = "-"
	default:
		return time.Time{}, errUnparseableDate
	}

	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return time.Time{}, errUnparseableDate
	}
	return calendarFromParts(parts)
}

// calendarFromParts assembles a date from three separator-delimited fields.
func calendarFromParts(parts []string) (time.Time, error) {
	nums := make([]int, 3)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, errUnparseableDate
		}
		nums[i] = n
	}

	var year, month, day int
	switch {
	case len(strings.TrimSpace(parts[0])) == 4:
		// Year-first (e.g. 2024/03/09).
		year, month, day = nums[0], nums[1], nums[2]
	default:
		year = nums[2]
		if len(strings.TrimSpace(parts[2])) == 2 {
			year += 2000
		}
		a, b := nums[0], nums[1]
		switch {
		case a > 12:
			day, month = a, b
		case b > 12:
			month, day = a, b
		default:
			// Ambiguous: D/M/Y family wins.
			day, month = a, b
		}
	}

	return buildDate(year, month, day)
}

func buildDate(year, month, day int) (time.Time, error) {
	if year < 1900 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, errUnparseableDate
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. Feb 30 -> Mar 2); reject those.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, errUnparseableDate
	}
	return t, nil
}

func serialDate(n int) (time.Time, error) {
	if n <= 0 || n > maxExcelSerial {
		return time.Time{}, errUnparseableDate
	}
	return excelEpoch.AddDate(0, 0, n), nil
}
