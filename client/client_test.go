package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchDecodesRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/intelligent/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-key") != "test-key" {
			t.Errorf("missing api key header")
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req["term"] != "example.com" {
			t.Errorf("unexpected term %v", req["term"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[{
			"systemid":"6d94ed77-7a94-4a52-a4d3-317aa4d4314c",
			"storageid":"abc","size":4194303,"media":24,
			"name":"Exploit.in/9.txt","bucket":"leaks.public.general",
			"simhash":9831917760971126189,
			"relations":[{"target":"9e99fbc1","relation":7}],
			"tagsh":[{"class":4,"classh":"Leak","value":"email","valueh":"E-Mail"}]
		}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")

	resp, err := c.Search(context.Background(), "example.com", 10, []string{"leaks.public"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(resp.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(resp.Records))
	}

	rec := resp.Records[0]
	if rec.SystemID != "6d94ed77-7a94-4a52-a4d3-317aa4d4314c" {
		t.Fatalf("unexpected systemid %s", rec.SystemID)
	}
	if rec.Simhash != 9831917760971126189 {
		t.Fatalf("unexpected simhash %d", rec.Simhash)
	}
	if len(rec.Relations) != 1 || rec.Relations[0].Relation != 7 {
		t.Fatalf("relations not decoded: %+v", rec.Relations)
	}
	if len(rec.Tags) != 1 || rec.Tags[0].Class != 4 || rec.Tags[0].ClassLabel != "Leak" {
		t.Fatalf("tags not decoded: %+v", rec.Tags)
	}
}

func TestSearchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	if _, err := c.Search(context.Background(), "term", 10, nil); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}

func TestFetchContentCaches(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if got := r.URL.Query().Get("storageid"); got != "stor-1" {
			t.Errorf("unexpected storageid %s", got)
		}
		w.Write([]byte("alice@example.com:hunter2\n"))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")

	for i := 0; i < 2; i++ {
		content, err := c.FetchContent(context.Background(), 24, "stor-1", "leaks.public")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if content != "alice@example.com:hunter2\n" {
			t.Fatalf("unexpected content %q", content)
		}
	}

	if hits != 1 {
		t.Fatalf("expected one upstream hit, got %d", hits)
	}
}

func TestFetchContentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	if _, err := c.FetchContent(context.Background(), 24, "missing", "bucket"); err == nil {
		t.Fatalf("expected error on 404")
	}
}
