package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// pagedServer serves total records from /databases/db/query in pages of up to PageSize
func pagedServer(t *testing.T, total int, calls *int32, bodies chan<- queryRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/databases/db/query", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultVersion, r.Header.Get("Notion-Version"))

		var req queryRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if bodies != nil {
			bodies <- req
		}
		start := 0
		if req.StartCursor != "" {
			start, _ = strconv.Atoi(req.StartCursor)
		}
		end := start + req.PageSize
		if end > total {
			end = total
		}
		results := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			results = append(results, map[string]any{"id": fmt.Sprintf("rec-%03d", i), "properties": map[string]any{}})
		}
		resp := map[string]any{"results": results, "has_more": end < total, "next_cursor": nil}
		if end < total {
			resp["next_cursor"] = strconv.Itoa(end)
		}
		writeJSON(w, http.StatusOK, resp)
	}))
}

func TestClient_QueryAll_Paginates(t *testing.T) {
	var calls int32
	srv := pagedServer(t, 250, &calls, nil)
	defer srv.Close()

	cl := New(Options{BaseURL: srv.URL, Token: "secret"})
	pages, err := cl.QueryAll(context.Background(), "db", Query{})

	require.NoError(t, err)
	require.Len(t, pages, 250)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	seen := make(map[string]bool, len(pages))
	for i, p := range pages {
		assert.Equal(t, fmt.Sprintf("rec-%03d", i), p.ID)
		assert.False(t, seen[p.ID], "duplicate %s", p.ID)
		seen[p.ID] = true
	}
}

func TestClient_QueryAll_SendsFilterAndSorts(t *testing.T) {
	var calls int32
	bodies := make(chan queryRequest, 1)
	srv := pagedServer(t, 1, &calls, bodies)
	defer srv.Close()

	cl := New(Options{BaseURL: srv.URL, Token: "secret"})
	q := Query{
		Filter: Filter{"property": "Date", "date": map[string]any{"equals": "2024-05-01"}},
		Sorts:  []Sort{{Property: "Created", Direction: Descending}},
	}
	_, err := cl.QueryAll(context.Background(), "db", q)
	require.NoError(t, err)

	got := <-bodies
	assert.Equal(t, PageSize, got.PageSize)
	assert.Empty(t, got.StartCursor)
	assert.Equal(t, "Date", got.Filter["property"])
	assert.Equal(t, []Sort{{Property: "Created", Direction: Descending}}, got.Sorts)
}

func TestClient_QueryAll_EmptyDatabaseID(t *testing.T) {
	var calls int32
	srv := pagedServer(t, 5, &calls, nil)
	defer srv.Close()

	cl := New(Options{BaseURL: srv.URL, Token: "secret"})
	pages, err := cl.QueryAll(context.Background(), "", Query{})

	require.NoError(t, err)
	assert.NotNil(t, pages)
	assert.Empty(t, pages)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"object":  "error",
			"status":  404,
			"code":    "object_not_found",
			"message": "Could not find database with ID: db.",
		})
	}))
	defer srv.Close()

	cl := New(Options{BaseURL: srv.URL, Token: "secret"})
	pages, err := cl.QueryAll(context.Background(), "db", Query{})

	assert.Nil(t, pages)
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "object_not_found: Could not find database with ID: db.", err.Error())
}

func TestClient_StatusWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cl := New(Options{BaseURL: srv.URL})
	_, err := cl.RetrieveDatabase(context.Background(), "db")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API returned status 502")
}

func TestClient_RetrieveDatabase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/databases/habits", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "habits",
			"properties": map[string]any{
				"Date":     map[string]any{"id": "1", "name": "Date", "type": "date"},
				"Exercise": map[string]any{"id": "2", "name": "Exercise", "type": "checkbox"},
			},
		})
	}))
	defer srv.Close()

	cl := New(Options{BaseURL: srv.URL, Token: "secret"})
	db, err := cl.RetrieveDatabase(context.Background(), "habits")

	require.NoError(t, err)
	require.Len(t, db.Properties, 2)
	assert.Equal(t, TypeCheckbox, db.Properties["Exercise"].Type)
	assert.Equal(t, TypeDate, db.Properties["Date"].Type)
}
