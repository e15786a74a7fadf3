// Package wordio loads word lists from files or URLs and saves sorted results.
package wordio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/wordsort/pkg/wordsort"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// MaxInputBytes caps how much text is read from a single source.
const MaxInputBytes = 16 << 20

// ErrTooLarge is returned when a source exceeds MaxInputBytes.
var ErrTooLarge = errors.New("input too large")

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// ReadText reads all of r as text. Non-UTF-8 encodings ("latin1",
// "windows-1252", "utf-16le"...) are transcoded using their WHATWG names.
func ReadText(r io.Reader, encoding string) (string, error) {
	if !isUTF8(encoding) {
		e, err := htmlindex.Get(encoding)
		if err != nil {
			return "", fmt.Errorf("unsupported encoding %q: %w", encoding, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxInputBytes+1))
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	if len(data) > MaxInputBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, MaxInputBytes)
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), nil
}

// ReadFile reads a word list file.
func ReadFile(path, encoding string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()
	return ReadText(f, encoding)
}

// Fetch downloads a word list, retrying up to three times.
func Fetch(ctx context.Context, url, encoding string) (string, error) {
	client := &http.Client{Timeout: time.Minute}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * 250 * time.Millisecond
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				break
			}
			continue
		}

		text, err := ReadText(resp.Body, encoding)
		resp.Body.Close()
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				return "", err
			}
			lastErr = err
			continue
		}
		return text, nil
	}
	return "", fmt.Errorf("fetch %s: %w", url, lastErr)
}

// WriteResult writes the sorted words one per line.
func WriteResult(w io.Writer, res *wordsort.Result) error {
	if err := res.Err(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, res.Text()); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// SaveFile writes the sorted words to path, replacing any existing file.
func SaveFile(path string, res *wordsort.Result) error {
	if err := res.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(res.Text()), 0o644); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
