// Package dataset turns raw WTO observations into a normalized import
// table and provides the filtering and aggregation views the
// presentation adapters render.
package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"wtodash/internal/utils"
)

// TotalMerchandise is the provider's aggregate row spanning every
// product group. It is kept in the table but hidden from the product
// filter options, like the original dashboard does.
const TotalMerchandise = "Total merchandise"

// Record is one import observation. Immutable once created.
type Record struct {
	Year         int     `json:"year"`
	Reporter     string  `json:"reporter"`
	ProductGroup string  `json:"product_group"`
	Value        float64 `json:"value"`
}

// Table is one fetch cycle's worth of records. It is rebuilt wholesale
// on every fetch and never mutated in place.
type Table []Record

// Filter is a transient per-interaction query. Empty slices mean no
// restriction on that dimension; a zero year bound is open-ended.
type Filter struct {
	YearMin       int      `json:"year_min"`
	YearMax       int      `json:"year_max"`
	Reporters     []string `json:"reporters"`
	ProductGroups []string `json:"product_groups"`
}

// NormalizeOptions pins the invariants normalization enforces: records
// outside the tracked reporter set or the analysis window are dropped.
// Empty/zero fields disable the corresponding check.
type NormalizeOptions struct {
	Reporters []string
	YearFrom  int
	YearTo    int
}

// Provider payload variants name the same fields differently, so each
// record field has an alias list checked in order.
var (
	reporterKeys = []string{"ReportingEconomy", "reporter", "economy"}
	productKeys  = []string{"ProductOrSector", "product_group", "product"}
	yearKeys     = []string{"Year", "year", "period"}
	valueKeys    = []string{"Value", "value"}
)

type recordKey struct {
	year              int
	reporter, product string
}

// Normalize maps raw observations to Records. Policy, applied
// consistently: entries with a missing or non-numeric value or year are
// excluded (never zero-filled), and for duplicate
// (year, reporter, product group) keys the later-seen value wins.
// Renormalizing an already-normalized table yields an identical table.
func Normalize(raws []map[string]interface{}, opts NormalizeOptions) Table {
	allowed := toSet(opts.Reporters)
	index := make(map[recordKey]int, len(raws))
	out := make(Table, 0, len(raws))

	for _, raw := range raws {
		reporter, ok := stringField(raw, reporterKeys)
		if !ok {
			utils.Log.Debugf("excluding observation without a reporter: %v", raw)
			continue
		}
		year, ok := intField(raw, yearKeys)
		if !ok {
			utils.Log.Debugf("excluding observation with a non-numeric year: %v", raw)
			continue
		}
		value, ok := floatField(raw, valueKeys)
		if !ok {
			utils.Log.Debugf("excluding observation with a non-numeric value: %v", raw)
			continue
		}
		product, ok := stringField(raw, productKeys)
		if !ok {
			// Queries for the total-only series omit the product field.
			product = TotalMerchandise
		}

		if len(allowed) > 0 && !allowed[reporter] {
			continue
		}
		if opts.YearFrom != 0 && year < opts.YearFrom {
			continue
		}
		if opts.YearTo != 0 && year > opts.YearTo {
			continue
		}

		rec := Record{Year: year, Reporter: reporter, ProductGroup: product, Value: value}
		key := recordKey{year: year, reporter: reporter, product: product}
		if i, seen := index[key]; seen {
			out[i] = rec
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out
}

// Raw converts a normalized table back to raw observation maps, so a
// table can be fed through Normalize again.
func Raw(t Table) []map[string]interface{} {
	raws := make([]map[string]interface{}, 0, len(t))
	for _, rec := range t {
		raws = append(raws, map[string]interface{}{
			"ReportingEconomy": rec.Reporter,
			"ProductOrSector":  rec.ProductGroup,
			"Year":             float64(rec.Year),
			"Value":            rec.Value,
		})
	}
	return raws
}

// Query returns the records satisfying every filter clause. Pure: the
// input table is never mutated and the result is a fresh slice.
func Query(t Table, f Filter) Table {
	reporters := toSet(f.Reporters)
	products := toSet(f.ProductGroups)

	out := make(Table, 0, len(t))
	for _, rec := range t {
		if f.YearMin != 0 && rec.Year < f.YearMin {
			continue
		}
		if f.YearMax != 0 && rec.Year > f.YearMax {
			continue
		}
		if len(reporters) > 0 && !reporters[rec.Reporter] {
			continue
		}
		if len(products) > 0 && !products[rec.ProductGroup] {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Dimension names a grouping axis for Aggregate.
type Dimension string

const (
	ByYear         Dimension = "year"
	ByReporter     Dimension = "reporter"
	ByProductGroup Dimension = "product_group"
)

// ParseDimension maps a user-supplied name to a Dimension.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(strings.ToLower(strings.TrimSpace(s))) {
	case ByYear:
		return ByYear, nil
	case ByReporter:
		return ByReporter, nil
	case ByProductGroup:
		return ByProductGroup, nil
	}
	return "", fmt.Errorf("unknown group_by dimension %q", s)
}

// GroupKey identifies one aggregation group. Fields outside the chosen
// dimensions stay at their zero value.
type GroupKey struct {
	Year         int    `json:"year,omitempty"`
	Reporter     string `json:"reporter,omitempty"`
	ProductGroup string `json:"product_group,omitempty"`
}

func (k GroupKey) less(o GroupKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	if k.Reporter != o.Reporter {
		return k.Reporter < o.Reporter
	}
	return k.ProductGroup < o.ProductGroup
}

// Label renders the key's populated parts for display.
func (k GroupKey) Label() string {
	var parts []string
	if k.Year != 0 {
		parts = append(parts, strconv.Itoa(k.Year))
	}
	if k.Reporter != "" {
		parts = append(parts, k.Reporter)
	}
	if k.ProductGroup != "" {
		parts = append(parts, k.ProductGroup)
	}
	return strings.Join(parts, " / ")
}

// Aggregate sums Value within each group along the given dimensions.
// Group keys with no matching records are simply absent.
func Aggregate(t Table, dims ...Dimension) map[GroupKey]float64 {
	totals := make(map[GroupKey]float64)
	for _, rec := range t {
		var key GroupKey
		for _, dim := range dims {
			switch dim {
			case ByYear:
				key.Year = rec.Year
			case ByReporter:
				key.Reporter = rec.Reporter
			case ByProductGroup:
				key.ProductGroup = rec.ProductGroup
			}
		}
		totals[key] += rec.Value
	}
	return totals
}

// GroupTotal is one aggregation row, ready to render.
type GroupTotal struct {
	Key   GroupKey `json:"key"`
	Value float64  `json:"value"`
}

// SortedTotals flattens an aggregation into deterministic rows, largest
// total first, key order breaking ties.
func SortedTotals(totals map[GroupKey]float64) []GroupTotal {
	out := make([]GroupTotal, 0, len(totals))
	for key, value := range totals {
		out = append(out, GroupTotal{Key: key, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key.less(out[j].Key)
	})
	return out
}

// Years lists the distinct years in the table, ascending.
func Years(t Table) []int {
	seen := map[int]bool{}
	var years []int
	for _, rec := range t {
		if !seen[rec.Year] {
			seen[rec.Year] = true
			years = append(years, rec.Year)
		}
	}
	sort.Ints(years)
	return years
}

// Reporters lists the distinct reporting economies, sorted.
func Reporters(t Table) []string {
	return distinct(t, func(r Record) string { return r.Reporter }, "")
}

// ProductGroups lists the distinct product groups, sorted, excluding
// the provider's all-products aggregate row.
func ProductGroups(t Table) []string {
	return distinct(t, func(r Record) string { return r.ProductGroup }, TotalMerchandise)
}

// Total sums the value column of the whole table.
func Total(t Table) float64 {
	var sum float64
	for _, rec := range t {
		sum += rec.Value
	}
	return sum
}

// FormatRecord renders a record as a delimited line using per-rune
// output flags: y (year), r (reporter), p (product group), v (value).
func FormatRecord(rec Record, outputFlags, delimiter string) (string, error) {
	var line string
	for _, f := range outputFlags {
		switch f {
		case 'y':
			line += strconv.Itoa(rec.Year) + delimiter
		case 'r':
			line += rec.Reporter + delimiter
		case 'p':
			line += rec.ProductGroup + delimiter
		case 'v':
			line += strconv.FormatFloat(rec.Value, 'f', -1, 64) + delimiter
		default:
			return "", fmt.Errorf("invalid output flag %q", string(f))
		}
	}
	return strings.TrimSuffix(line, delimiter), nil
}

func distinct(t Table, pick func(Record) string, skip string) []string {
	seen := map[string]bool{}
	var values []string
	for _, rec := range t {
		v := pick(rec)
		if v == skip || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func stringField(raw map[string]interface{}, keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func intField(raw map[string]interface{}, keys []string) (int, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n), true
		case int:
			return n, true
		case string:
			if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return parsed, true
			}
		}
		return 0, false
	}
	return 0, false
}

func floatField(raw map[string]interface{}, keys []string) (float64, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return parsed, true
			}
		}
		return 0, false
	}
	return 0, false
}
