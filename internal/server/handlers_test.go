package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"wtodash/pkg/dataset"
)

func testTable() dataset.Table {
	return dataset.Table{
		{Year: 2020, Reporter: "China", ProductGroup: "Machinery", Value: 100},
		{Year: 2022, Reporter: "China", ProductGroup: "Machinery", Value: 140},
		{Year: 2023, Reporter: "China", ProductGroup: "Fuels", Value: 60},
		{Year: 2022, Reporter: "Germany", ProductGroup: "Machinery", Value: 90},
	}
}

func serveRequest(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux, err := s.routes()
	if err != nil {
		t.Fatalf("routes() returned error: %v", err)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleImportsFiltering(t *testing.T) {
	s := New(testTable(), "", "")
	rec := serveRequest(t, s, "/api/imports?year_min=2022&year_max=2023&reporters=China")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got dataset.Table
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	expect := dataset.Table{
		{Year: 2022, Reporter: "China", ProductGroup: "Machinery", Value: 140},
		{Year: 2023, Reporter: "China", ProductGroup: "Fuels", Value: 60},
	}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("unexpected records.\nwant: %#v\ngot:  %#v", expect, got)
	}
}

func TestHandleImportsEmptyResultIsArray(t *testing.T) {
	s := New(testTable(), "", "")
	rec := serveRequest(t, s, "/api/imports?reporters=Japan")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestHandleImportsBadYearParam(t *testing.T) {
	s := New(testTable(), "", "")
	rec := serveRequest(t, s, "/api/imports?year_min=twenty")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSummaryGroupBy(t *testing.T) {
	s := New(testTable(), "", "")
	rec := serveRequest(t, s, "/api/summary?group_by=reporter")

	var got []dataset.GroupTotal
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	expect := []dataset.GroupTotal{
		{Key: dataset.GroupKey{Reporter: "China"}, Value: 300},
		{Key: dataset.GroupKey{Reporter: "Germany"}, Value: 90},
	}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("unexpected summary.\nwant: %#v\ngot:  %#v", expect, got)
	}
}

func TestHandleSummaryRejectsUnknownDimension(t *testing.T) {
	s := New(testTable(), "", "")
	rec := serveRequest(t, s, "/api/summary?group_by=currency")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleMeta(t *testing.T) {
	s := New(testTable(), "", "")
	rec := serveRequest(t, s, "/api/meta")

	var got MetaResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	expect := MetaResponse{
		Years:         []int{2020, 2022, 2023},
		Reporters:     []string{"China", "Germany"},
		ProductGroups: []string{"Fuels", "Machinery"},
		Total:         390,
	}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("unexpected meta.\nwant: %#v\ngot:  %#v", expect, got)
	}
}

func TestBasicAuthGuardsAPI(t *testing.T) {
	s := New(testTable(), "admin", "hunter2")
	rec := serveRequest(t, s, "/api/meta")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}

	mux, err := s.routes()
	if err != nil {
		t.Fatalf("routes() returned error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/meta", nil)
	req.SetBasicAuth("admin", "hunter2")
	authed := httptest.NewRecorder()
	mux.ServeHTTP(authed, req)
	if authed.Code != http.StatusOK {
		t.Fatalf("expected 200 with credentials, got %d", authed.Code)
	}
}
