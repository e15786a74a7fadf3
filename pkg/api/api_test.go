package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/wordsort/pkg/history"
	"github.com/hazyhaar/wordsort/pkg/kit"
	"github.com/hazyhaar/wordsort/pkg/preset"
	"github.com/hazyhaar/wordsort/pkg/wordsort"
)

func testService(t *testing.T, withHistory bool) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := preset.NewRegistry("", wordsort.DefaultOptions())
	svc := &Service{
		Sorter:       wordsort.NewSorter("fr", logger),
		Presets:      reg,
		Logger:       logger,
		MaxBodyBytes: 1024,
	}
	if withHistory {
		store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
		if err != nil {
			t.Fatalf("history.Open: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		svc.History = store
	}
	return svc
}

type sortBody struct {
	Status   string           `json:"status"`
	Words    []string         `json:"words"`
	Count    int              `json:"count"`
	Reason   string           `json:"reason"`
	Locale   string           `json:"locale"`
	Warnings []string         `json:"warnings"`
	Preset   string           `json:"preset"`
	Options  wordsort.Options `json:"options"`
}

func postJSON(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, sortBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out sortBody
	json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestSortJSON(t *testing.T) {
	h := NewRouter(testService(t, false))

	tests := []struct {
		name   string
		body   string
		code   int
		words  []string
		reason string
	}{
		{"defaults", `{"text":"pomme, Banane; abricot"}`, 200, []string{"abricot", "Banane", "pomme"}, ""},
		{"descending", `{"text":"a c b","options":{"ascending":false}}`, 200, []string{"c", "b", "a"}, ""},
		{"dedup preset", `{"text":"Été ete ÉTÉ","preset":"default","options":{"remove_duplicates":true}}`, 200, []string{"Été"}, ""},
		{"dictionary preset", `{"text":"b a B","preset":"dictionary"}`, 200, []string{"a", "b"}, ""},
		{"blank", `{"text":"   "}`, 422, nil, "EMPTY_INPUT"},
		{"separators only", `{"text":",;,"}`, 422, nil, "NO_VALID_WORDS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := postJSON(t, h, "/v1/sort", tt.body)
			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
			if strings.Join(out.Words, ",") != strings.Join(tt.words, ",") {
				t.Errorf("words = %v, want %v", out.Words, tt.words)
			}
			if out.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", out.Reason, tt.reason)
			}
		})
	}
}

func TestSortJSON_Errors(t *testing.T) {
	h := NewRouter(testService(t, false))

	rec, _ := postJSON(t, h, "/v1/sort", `{"text":"a","preset":"nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown preset: code = %d", rec.Code)
	}
	rec, _ = postJSON(t, h, "/v1/sort", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: code = %d", rec.Code)
	}
	rec, _ = postJSON(t, h, "/v1/sort", `{"text":"`+strings.Repeat("a ", 1024)+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversize: code = %d", rec.Code)
	}

	get := httptest.NewRecorder()
	h.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/v1/sort", nil))
	if get.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/sort: code = %d", get.Code)
	}
}

func TestSortJSON_LocaleFallback(t *testing.T) {
	h := NewRouter(testService(t, false))
	rec, out := postJSON(t, h, "/v1/sort", `{"text":"b a","options":{"locale":"@@"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if out.Locale != "fr" || len(out.Warnings) != 1 {
		t.Errorf("locale = %q warnings = %v", out.Locale, out.Warnings)
	}
}

func TestSortText(t *testing.T) {
	h := NewRouter(testService(t, false))

	tests := []struct {
		name  string
		query string
		body  string
		code  int
		want  string
	}{
		{"defaults", "", "c\na\tb", 200, "a\nb\nc\n"},
		{"desc", "?desc", "a b c", 200, "c\nb\na\n"},
		{"case sensitive", "?case_sensitive=true&keep_accents=1", "b B a", 200, "a\nb\nB\n"},
		{"dedup", "?dedup=true", "x X x", 200, "x\n"},
		{"empty", "", "  \n ", 422, "no words to sort: input is empty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/sort/text"+tt.query, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
			if tt.code == 200 && rec.Body.String() != tt.want {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.want)
			}
			if tt.code != 200 && rec.Body.Len() == 0 {
				t.Error("empty error body")
			}
			if got := rec.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
				t.Errorf("content type = %q", got)
			}
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sort/text?desc=maybe", strings.NewReader("a")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid flag: code = %d", rec.Code)
	}
}

func TestListing(t *testing.T) {
	h := NewRouter(testService(t, false))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/presets", nil))
	var presets struct {
		Presets []struct {
			ID string `json:"id"`
		} `json:"presets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &presets); err != nil {
		t.Fatal(err)
	}
	if len(presets.Presets) != 3 || presets.Presets[0].ID != "default" {
		t.Errorf("presets = %+v", presets.Presets)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/locales", nil))
	var locales localesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &locales); err != nil {
		t.Fatal(err)
	}
	if locales.Default != "fr" || len(locales.Locales) == 0 {
		t.Errorf("locales = %+v", locales)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/history", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("history without store: code = %d", rec.Code)
	}
}

func TestHistoryRecorded(t *testing.T) {
	h := NewRouter(testService(t, true))

	postJSON(t, h, "/v1/sort", `{"text":"b a"}`)
	postJSON(t, h, "/v1/sort", `{"text":"  "}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/history?limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
	}
	var out historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Runs) != 2 || out.Stats.Total != 2 {
		t.Fatalf("runs = %d total = %d", len(out.Runs), out.Stats.Total)
	}
	for _, r := range out.Runs {
		if r.Transport != kit.TransportHTTP {
			t.Errorf("transport = %q", r.Transport)
		}
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/history?limit=x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: code = %d", rec.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	h := NewRouter(testService(t, false))
	req := httptest.NewRequest(http.MethodPost, "/v1/sort", strings.NewReader(`{"text":"a"}`))
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func callTool(t *testing.T, svc *Service, name string, args map[string]any) (string, bool) {
	t.Helper()
	srv := NewMCPServer(svc, "test")
	msg, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	resp := srv.HandleMessage(context.Background(), msg)
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Result.Content) == 0 {
		t.Fatalf("no content in %s", raw)
	}
	return out.Result.Content[0].Text, out.Result.IsError
}

func TestMCPSortWords(t *testing.T) {
	svc := testService(t, true)

	text, isErr := callTool(t, svc, "sort_words", map[string]any{"text": "b, a", "descending": false})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var out sortBody
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decode %s: %v", text, err)
	}
	if strings.Join(out.Words, ",") != "a,b" || out.Status != "success" {
		t.Errorf("result = %+v", out)
	}

	runs, err := svc.History.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Transport != kit.TransportMCPStdio {
		t.Errorf("runs = %+v", runs)
	}

	text, isErr = callTool(t, svc, "sort_words", map[string]any{"text": "a", "preset": "missing"})
	if !isErr || !strings.Contains(text, "missing") {
		t.Errorf("unknown preset: %q isErr=%v", text, isErr)
	}
}

func TestMCPListTools(t *testing.T) {
	svc := testService(t, false)

	text, _ := callTool(t, svc, "list_presets", nil)
	if !bytes.Contains([]byte(text), []byte(`"id":"strict"`)) {
		t.Errorf("list_presets = %s", text)
	}
	text, _ = callTool(t, svc, "list_locales", nil)
	if !strings.Contains(text, `"default":"fr"`) {
		t.Errorf("list_locales = %s", text)
	}
}
