package ingest

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Row is one raw tabular row: free-form column headers mapped to primitive
// cell values (string, number, boolean, or nil).
type Row map[string]any

// ValidatedRow is the canonical sales-record shape produced by validation,
// ready for bulk persistence.
type ValidatedRow struct {
	SKU       string
	Date      time.Time
	Quantity  int
	Price     float64
	Promotion bool
	Category  string
}

var skuRE = regexp.MustCompile(`^[A-Za-z0-9]{3,20}$`)

// Boolean vocabularies for the promotion column.
var (
	promotionTrue  = map[string]bool{"true": true, "1": true, "si": true, "sí": true, "yes": true}
	promotionFalse = map[string]bool{"false": true, "0": true, "no": true}
)

// Validation bounds for quantity.
const (
	minQuantity = 1
	maxQuantity = 100000
)

// maxPriceDecimals caps the fractional digits accepted on a price.
const maxPriceDecimals = 4

// ValidateRows validates and normalizes a batch of raw rows.
//
// Behavior (all-or-nothing per batch):
//   - An empty batch fails with ErrNoData.
//   - Column headers are resolved against the alias table; if any canonical
//     field is absent from every row, the batch fails with a
//     *MissingColumnsError naming all unresolved fields.
//   - Every row is validated independently and every violation is collected;
//     any violation fails the whole batch with a *BatchError. Partial
//     success is never returned.
//   - (sku, date) pairs must be unique within the batch; a duplicate is
//     reported against both offending rows.
//
// On success the returned rows are canonical: ISO dates, integral
// quantities, boolean promotions. Already-canonical input passes through
// unchanged. The function is pure: no logging, no persistence.
func ValidateRows(rows []Row) ([]ValidatedRow, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	res := newResolver()
	if missing := res.missingFields(rows); len(missing) > 0 {
		return nil, &MissingColumnsError{Fields: missing}
	}

	out := make([]ValidatedRow, 0, len(rows))
	var violations []*RowError
	seen := make(map[string]int, len(rows)) // "sku|date" -> first source idx

	for i, raw := range rows {
		row := res.fold(raw)
		var (
			v    ValidatedRow
			bad  bool
			fail = func(e *RowError) {
				violations = append(violations, e)
				bad = true
			}
		)

		if sku, ok := parseSKU(row[FieldSKU]); ok {
			v.SKU = sku
		} else {
			fail(rowErr(i, FieldSKU, cellString(row[FieldSKU]), ErrInvalidSKU))
		}

		if date, err := ParseDate(row[FieldDate]); err == nil {
			v.Date = date
		} else {
			fail(rowErr(i, FieldDate, cellString(row[FieldDate]), ErrInvalidDate))
		}

		if q, ok := parseQuantity(row[FieldQuantity]); ok {
			v.Quantity = q
		} else {
			fail(rowErr(i, FieldQuantity, cellString(row[FieldQuantity]), ErrInvalidQuantity))
		}

		if p, ok := parsePrice(row[FieldPrice]); ok {
			v.Price = p
		} else {
			fail(rowErr(i, FieldPrice, cellString(row[FieldPrice]), ErrInvalidPrice))
		}

		if b, ok := parsePromotion(row[FieldPromotion]); ok {
			v.Promotion = b
		} else {
			fail(rowErr(i, FieldPromotion, cellString(row[FieldPromotion]), ErrInvalidPromotion))
		}

		if c, ok := parseCategory(row[FieldCategory]); ok {
			v.Category = c
		} else {
			fail(rowErr(i, FieldCategory, cellString(row[FieldCategory]), ErrInvalidCategory))
		}

		if v.SKU != "" && !v.Date.IsZero() {
			key := v.SKU + "|" + v.Date.Format("2006-01-02")
			if first, dup := seen[key]; dup {
				val := fmt.Sprintf("sku %s on %s (rows %d and %d)",
					v.SKU, v.Date.Format("2006-01-02"), first+2, i+2)
				fail(rowErr(i, FieldSKU, val, ErrDuplicateRow))
			} else {
				seen[key] = i
			}
		}

		if !bad {
			out = append(out, v)
		}
	}

	if len(violations) > 0 {
		return nil, &BatchError{Rows: violations}
	}
	return out, nil
}

// cellString renders a raw cell value for error messages.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func parseSKU(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if !skuRE.MatchString(s) {
		return "", false
	}
	return s, true
}

func parseQuantity(v any) (int, bool) {
	var q int
	switch x := v.(type) {
	case int:
		q = x
	case int64:
		q = int(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		q = int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		q = n
	default:
		return 0, false
	}
	if q < minQuantity || q > maxQuantity {
		return 0, false
	}
	return q, true
}

func parsePrice(v any) (float64, bool) {
	var s string
	switch x := v.(type) {
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case string:
		s = strings.TrimSpace(x)
	default:
		return 0, false
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || p <= 0 {
		return 0, false
	}
	if _, frac, found := strings.Cut(s, "."); found && len(frac) > maxPriceDecimals {
		return 0, false
	}
	return p, true
}

func parsePromotion(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case float64:
		if x == 1 {
			return true, true
		}
		if x == 0 {
			return false, true
		}
		return false, false
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		if promotionTrue[s] {
			return true, true
		}
		if promotionFalse[s] {
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

func parseCategory(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}
