package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"wtodash/pkg/dataset"
)

func (s *Server) handleImports(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dataset.Query(s.Table, filter))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := filterFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	groupBy := q.Get("group_by")
	if groupBy == "" {
		groupBy = string(dataset.ByReporter)
	}
	var dims []dataset.Dimension
	for _, name := range splitList(groupBy) {
		dim, err := dataset.ParseDimension(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		dims = append(dims, dim)
	}

	totals := dataset.Aggregate(dataset.Query(s.Table, filter), dims...)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dataset.SortedTotals(totals))
}

// MetaResponse carries the filter options the UI builds its controls from.
type MetaResponse struct {
	Years         []int    `json:"years"`
	Reporters     []string `json:"reporters"`
	ProductGroups []string `json:"product_groups"`
	Total         float64  `json:"total"`
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	meta := MetaResponse{
		Years:         dataset.Years(s.Table),
		Reporters:     dataset.Reporters(s.Table),
		ProductGroups: dataset.ProductGroups(s.Table),
		Total:         dataset.Total(s.Table),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meta)
}

func filterFromQuery(q url.Values) (dataset.Filter, error) {
	var filter dataset.Filter

	if v := q.Get("year_min"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return dataset.Filter{}, err
		}
		filter.YearMin = year
	}
	if v := q.Get("year_max"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return dataset.Filter{}, err
		}
		filter.YearMax = year
	}
	filter.Reporters = splitList(q.Get("reporters"))
	filter.ProductGroups = splitList(q.Get("products"))
	return filter, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
