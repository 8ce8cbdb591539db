package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchAllRowsFollowsPagination(t *testing.T) {
	var authSeen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authSeen = r.Header.Get("Authorization")
		if r.URL.Path != "/appBASE/tblPLACES" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("offset") {
		case "":
			fmt.Fprint(w, `{
				"records": [
					{"id": "rec1", "fields": {"Name": "Cafe A", "Latitude": 43.65}},
					{"id": "rec2", "fields": {"Name": "Library"}}
				],
				"offset": "page2"
			}`)
		case "page2":
			fmt.Fprint(w, `{
				"records": [
					{"id": "rec3"}
				]
			}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}))
	defer server.Close()

	client := NewClient("key123", "appBASE", server.URL, 5*time.Second)
	rows, err := client.FetchAllRows(context.Background(), "tblPLACES")
	if err != nil {
		t.Fatalf("FetchAllRows: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows = %d; want 3 across both pages", len(rows))
	}
	if authSeen != "Bearer key123" {
		t.Errorf("auth header = %q", authSeen)
	}
	if rows[0].ID != "rec1" || rows[0].Fields["Name"] != "Cafe A" {
		t.Errorf("first row = %+v", rows[0])
	}
	// A record without fields still yields a usable empty map
	if rows[2].Fields == nil {
		t.Error("missing fields should decode to an empty map")
	}
}

func TestFetchAllRowsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"NOT_AUTHORIZED"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad", "appBASE", server.URL, 5*time.Second)
	if _, err := client.FetchAllRows(context.Background(), "tblPLACES"); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestFetchAllRowsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"records": [`)
	}))
	defer server.Close()

	client := NewClient("key", "appBASE", server.URL, 5*time.Second)
	if _, err := client.FetchAllRows(context.Background(), "tblPLACES"); err == nil {
		t.Fatal("expected an error for a malformed response")
	}
}
