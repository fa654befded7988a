package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
)

// newTestServer serves a tiny fake collection API.
func newTestServer(t *testing.T, objects map[string]string, search string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch {
		case r.URL.Path == "/search":
			if r.URL.Query().Get("hasImages") != "true" {
				t.Errorf("expected hasImages=true, got %q", r.URL.RawQuery)
			}
			w.Write([]byte(search))
		case strings.HasPrefix(r.URL.Path, "/objects/"):
			body, ok := objects[strings.TrimPrefix(r.URL.Path, "/objects/")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Not a valid object"}`))
				return
			}
			w.Write([]byte(body))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetchIDPool(t *testing.T) {
	srv, _ := newTestServer(t, nil, `{"total":3,"objectIDs":[11,22,33]}`)
	c := NewClient(Options{BaseURL: srv.URL})

	ids, err := c.FetchIDPool(context.Background())
	if err != nil {
		t.Fatalf("FetchIDPool failed: %v", err)
	}
	want := []ItemID{11, 22, 33}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestFetchIDPoolEmpty(t *testing.T) {
	for _, body := range []string{`{"total":0,"objectIDs":null}`, `{"total":0,"objectIDs":[]}`} {
		srv, _ := newTestServer(t, nil, body)
		c := NewClient(Options{BaseURL: srv.URL})

		_, err := c.FetchIDPool(context.Background())
		if !errors.Is(err, ErrEmptyResult) {
			t.Errorf("body %s: expected ErrEmptyResult, got %v", body, err)
		}
	}
}

func TestFetchIDPoolServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	_, err := c.FetchIDPool(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestFetchIDPoolUnreachable(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://127.0.0.1:1"})
	_, err := c.FetchIDPool(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestLookupValidation(t *testing.T) {
	objects := map[string]string{
		"1": `{"objectID":1,"title":"Wheat Field","primaryImageSmall":"https://img/1s.jpg","isPublicDomain":true}`,
		"2": `{"objectID":2,"title":"No Picture","primaryImage":"","primaryImageSmall":"","isPublicDomain":true}`,
		"3": `{"objectID":3,"title":"Rights Reserved","primaryImage":"https://img/3.jpg","isPublicDomain":false}`,
		"4": `not json`,
	}
	srv, _ := newTestServer(t, objects, `{}`)
	c := NewClient(Options{BaseURL: srv.URL})

	tests := []struct {
		id      ItemID
		wantErr error
	}{
		{1, nil},
		{2, ErrNoImage},
		{3, ErrIneligible},
		{4, ErrNetwork},
		{5, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			item, err := c.Lookup(context.Background(), tt.id)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if item.ID != tt.id {
					t.Errorf("expected id %d, got %d", tt.id, item.ID)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFetchItemFoldsErrorsToNil(t *testing.T) {
	objects := map[string]string{
		"7": `{"objectID":7,"title":"Cypresses","primaryImage":"https://img/7.jpg","isPublicDomain":true}`,
		"8": `{"objectID":8,"title":"Locked","primaryImage":"https://img/8.jpg","isPublicDomain":false}`,
	}
	srv, _ := newTestServer(t, objects, `{}`)
	c := NewClient(Options{BaseURL: srv.URL})

	if got := c.FetchItem(context.Background(), 7); got == nil || got.Title != "Cypresses" {
		t.Errorf("expected Cypresses, got %+v", got)
	}
	if got := c.FetchItem(context.Background(), 8); got != nil {
		t.Errorf("expected nil for ineligible record, got %+v", got)
	}
	if got := c.FetchItem(context.Background(), 9); got != nil {
		t.Errorf("expected nil for missing record, got %+v", got)
	}
}

func TestFetchItemCancelledContext(t *testing.T) {
	srv, hits := newTestServer(t, map[string]string{}, `{}`)
	c := NewClient(Options{BaseURL: srv.URL, RequestsPerSecond: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := c.FetchItem(ctx, 1); got != nil {
		t.Errorf("expected nil on cancelled context, got %+v", got)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no requests, got %d", hits.Load())
	}
}

func TestItemDisplayHelpers(t *testing.T) {
	it := Item{
		Title:             "  ",
		ArtistDisplayName: "",
		ObjectDate:        "1889",
		Culture:           "",
		PrimaryImage:      "big.jpg",
	}
	if it.DisplayTitle() != "Untitled" {
		t.Errorf("expected Untitled, got %q", it.DisplayTitle())
	}
	if got := it.MetaLine(); got != "Unknown • 1889" {
		t.Errorf("unexpected meta line %q", got)
	}
	if it.ImageURL() != "big.jpg" {
		t.Errorf("expected fallback to primaryImage, got %q", it.ImageURL())
	}
	it.PrimaryImageSmall = "small.jpg"
	if it.ImageURL() != "small.jpg" {
		t.Errorf("expected small image preferred, got %q", it.ImageURL())
	}

	it.Title = "The Harvesters"
	it.ArtistDisplayName = "Pieter Bruegel the Elder"
	u := it.SearchURL()
	if !strings.HasPrefix(u, "https://www.google.com/search?q=") {
		t.Errorf("unexpected search url %q", u)
	}
	if !strings.Contains(u, "Harvesters+Pieter+Bruegel") {
		t.Errorf("search url missing terms: %q", u)
	}

	searchTests := []struct {
		name string
		item Item
		want string
	}{
		{"all parts", Item{Title: "Bowl", ArtistDisplayName: "Unknown Maker", Culture: "Japan"}, "Bowl Unknown Maker Japan art museum"},
		{"culture only", Item{Title: "  ", Culture: "Iran"}, "Iran art museum"},
		{"nothing", Item{}, "art museum"},
	}
	for _, tt := range searchTests {
		t.Run(tt.name, func(t *testing.T) {
			want := "https://www.google.com/search?q=" + url.QueryEscape(tt.want)
			if got := tt.item.SearchURL(); got != want {
				t.Errorf("SearchURL() = %q, want %q", got, want)
			}
		})
	}
}

func TestItemDecodesDetailFields(t *testing.T) {
	raw := `{"objectID":45734,"classification":"Paintings","period":"Edo period (1615–1868)",` +
		`"accessionYear":"1975","objectWikidata_URL":"https://www.wikidata.org/wiki/Q18702525"}`
	var it Item
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if it.Classification != "Paintings" || it.Period != "Edo period (1615–1868)" || it.AccessionYear != "1975" {
		t.Errorf("detail fields not decoded: %+v", it)
	}
	if it.WikidataURL != "https://www.wikidata.org/wiki/Q18702525" {
		t.Errorf("WikidataURL = %q", it.WikidataURL)
	}
}

func TestParseItemID(t *testing.T) {
	id, err := ParseItemID(" 436535 ")
	if err != nil {
		t.Fatalf("ParseItemID failed: %v", err)
	}
	if id != 436535 {
		t.Errorf("expected 436535, got %d", id)
	}
	if _, err := ParseItemID("abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
