// Package media loads local files into in-memory data URL blobs for story
// previews. Nothing is uploaded or transcoded.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
)

var ErrTooLarge = errors.New("file too large")

// Load reads path into memory. maxBytes <= 0 disables the size check.
func Load(path string, maxBytes int64) (catalog.Media, error) {
	f, err := os.Open(path)
	if err != nil {
		return catalog.Media{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return catalog.Media{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return catalog.Media{}, fmt.Errorf("%s is a directory", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return catalog.Media{}, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, filepath.Base(path), info.Size(), maxBytes)
	}

	r := io.Reader(f)
	if maxBytes > 0 {
		// The file may grow between Stat and Read.
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return catalog.Media{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return catalog.Media{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, filepath.Base(path), maxBytes)
	}

	mimeType := detectType(path, data)
	return catalog.Media{
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Size:     int64(len(data)),
		DataURL:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Not every system mime table knows video containers.
var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
}

// detectType sniffs the content and falls back to the file extension when
// sniffing is inconclusive (common for video containers).
func detectType(path string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if sniffed != "application/octet-stream" && !strings.HasPrefix(sniffed, "text/plain") {
		return sniffed
	}
	ext := strings.ToLower(filepath.Ext(path))
	if v, ok := videoExtensions[ext]; ok {
		return v
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return sniffed
}

// SplitPaths parses a comma- or newline-separated list of file paths as
// typed into the story dialog.
func SplitPaths(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if p := strings.TrimSpace(f); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Batch gathers the results of independent reads issued together. Results
// arrive in any order; Record counts them against the total and reports
// completion exactly once.
type Batch struct {
	mu    sync.Mutex
	total int
	done  int
	items []catalog.Media
	errs  []error
	seen  []bool
}

func NewBatch(total int) *Batch {
	return &Batch{
		total: total,
		items: make([]catalog.Media, total),
		errs:  make([]error, total),
		seen:  make([]bool, total),
	}
}

// Record stores the result for slot index. It returns true only for the
// call that completes the batch. Duplicate or out-of-range slots are ignored.
func (b *Batch) Record(index int, m catalog.Media, err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || index >= b.total || b.seen[index] {
		return false
	}
	b.seen[index] = true
	b.items[index] = m
	b.errs[index] = err
	b.done++
	return b.done == b.total
}

// Complete reports whether every slot has been recorded.
func (b *Batch) Complete() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done == b.total
}

// Progress returns recorded and total counts.
func (b *Batch) Progress() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done, b.total
}

// Result returns the loaded media in slot order, or the joined errors of
// every failed slot.
func (b *Batch) Result() ([]catalog.Media, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done != b.total {
		return nil, fmt.Errorf("batch incomplete: %d of %d loaded", b.done, b.total)
	}
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	return append([]catalog.Media(nil), b.items...), nil
}
