package wordio

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hazyhaar/wordsort/pkg/wordsort"
)

func TestReadText(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		encoding string
		want     string
	}{
		{"utf8", []byte("été, hiver"), "", "été, hiver"},
		{"utf8 bom", append([]byte{0xef, 0xbb, 0xbf}, "mot"...), "UTF-8", "mot"},
		{"latin1", []byte("\xe9t\xe9;caf\xe9"), "latin1", "été;café"},
		{"windows-1252", []byte("\x9cuvre"), "windows-1252", "œuvre"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadText(bytes.NewReader(tt.input), tt.encoding)
			if err != nil {
				t.Fatalf("ReadText: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadText_UnsupportedEncoding(t *testing.T) {
	_, err := ReadText(strings.NewReader("x"), "klingon-8")
	if err == nil || !strings.Contains(err.Error(), "unsupported encoding") {
		t.Fatalf("err = %v, want unsupported encoding", err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mots.txt")
	os.WriteFile(path, []byte("pomme\npoire\n"), 0o644)

	got, err := ReadFile(path, "")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != "pomme\npoire\n" {
		t.Errorf("ReadFile = %q", got)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt"), ""); err == nil {
		t.Error("ReadFile on missing file: want error")
	}
}

func TestFetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		switch r.URL.Path {
		case "/flaky":
			if n == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("b a"))
		case "/words":
			w.Write([]byte("zèbre\navion"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	got, err := Fetch(ctx, srv.URL+"/words", "")
	if err != nil || got != "zèbre\navion" {
		t.Fatalf("Fetch /words = %q, %v", got, err)
	}

	hits.Store(0)
	got, err = Fetch(ctx, srv.URL+"/flaky", "")
	if err != nil || got != "b a" {
		t.Fatalf("Fetch /flaky = %q, %v", got, err)
	}
	if hits.Load() != 2 {
		t.Errorf("flaky hits = %d, want 2", hits.Load())
	}

	hits.Store(0)
	if _, err := Fetch(ctx, srv.URL+"/missing", ""); err == nil {
		t.Fatal("Fetch /missing: want error")
	}
	if hits.Load() != 1 {
		t.Errorf("client errors must not be retried, hits = %d", hits.Load())
	}
}

func TestWriteAndSave(t *testing.T) {
	res := wordsort.SortWords("b, a", wordsort.DefaultOptions())

	var buf bytes.Buffer
	if err := WriteResult(&buf, res); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if buf.String() != "a\nb\n" {
		t.Errorf("WriteResult wrote %q", buf.String())
	}

	path := filepath.Join(t.TempDir(), "out.txt")
	if err := SaveFile(path, res); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a\nb\n" {
		t.Errorf("saved %q", data)
	}
}

func TestWriteResult_Empty(t *testing.T) {
	res := wordsort.SortWords("  ", wordsort.DefaultOptions())
	var buf bytes.Buffer
	if err := WriteResult(&buf, res); !errors.Is(err, wordsort.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes for empty result", buf.Len())
	}
}
