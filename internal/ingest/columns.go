package ingest

import (
	"strings"

	"golang.org/x/text/cases"
)

// Field identifies a canonical sales-record column.
type Field string

// Canonical fields every batch must resolve.
const (
	FieldSKU       Field = "sku"
	FieldDate      Field = "date"
	FieldQuantity  Field = "quantity"
	FieldPrice     Field = "price"
	FieldPromotion Field = "promotion"
	FieldCategory  Field = "category"
)

// aliasTable maps each canonical field to the accepted header spellings.
// Matching is caseless and trimmed; the table is the single source of truth
// for column resolution (a declarative runtime schema-matcher rather than
// scattered string comparisons).
var aliasTable = map[Field][]string{
	FieldSKU:       {"sku", "product_id", "codigo"},
	FieldDate:      {"fecha", "date", "fecha_venta"},
	FieldQuantity:  {"cantidad", "cantidad_vendida", "quantity", "units_sold"},
	FieldPrice:     {"precio", "price", "unit_price"},
	FieldPromotion: {"promocion", "promocion_activa", "promotion", "is_promotion"},
	FieldCategory:  {"categoria", "category", "producto_categoria"},
}

// allFields is the resolution order used for deterministic error output.
var allFields = []Field{
	FieldSKU, FieldDate, FieldQuantity, FieldPrice, FieldPromotion, FieldCategory,
}

var headerFolder = cases.Fold()

// foldKey normalizes a header for caseless comparison.
func foldKey(k string) string {
	return headerFolder.String(strings.TrimSpace(k))
}

// resolver maps folded header names back to canonical fields for one batch.
type resolver struct {
	byAlias map[string]Field
}

func newResolver() *resolver {
	r := &resolver{byAlias: make(map[string]Field)}
	for field, aliases := range aliasTable {
		for _, a := range aliases {
			r.byAlias[foldKey(a)] = field
		}
	}
	return r
}

// fold re-keys a raw row by canonical field. Unrecognized headers are
// dropped; when several aliases for the same field appear, the first
// non-nil value wins.
func (r *resolver) fold(row Row) map[Field]any {
	out := make(map[Field]any, len(allFields))
	for k, v := range row {
		field, ok := r.byAlias[foldKey(k)]
		if !ok {
			continue
		}
		if existing, dup := out[field]; dup && existing != nil {
			continue
		}
		out[field] = v
	}
	return out
}

// missingFields returns every canonical field that no row in the batch
// resolves, in declaration order.
func (r *resolver) missingFields(rows []Row) []Field {
	seen := make(map[Field]bool, len(allFields))
	for _, row := range rows {
		for k := range row {
			if field, ok := r.byAlias[foldKey(k)]; ok {
				seen[field] = true
			}
		}
	}
	var missing []Field
	for _, f := range allFields {
		if !seen[f] {
			missing = append(missing, f)
		}
	}
	return missing
}
