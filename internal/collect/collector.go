// Package collect turns directories or inline strings into a Corpus: an
// ordered list of identified document records with their origins.
package collect

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// acceptedExtensions are the file types collected from directory trees.
var acceptedExtensions = map[string]struct{}{
	".md":   {},
	".txt":  {},
	".py":   {},
	".js":   {},
	".ts":   {},
	".html": {},
	".css":  {},
	".json": {},
}

// IDPrefix is the document identifier prefix; ids are IDPrefix + ordinal.
const IDPrefix = "doc_"

// Record is one collected document.
type Record struct {
	// ID is doc_<ordinal>; ordinals are dense and zero-based in
	// collection order.
	ID string

	// Text is the trimmed, non-empty document content.
	Text string

	// Origin is the source file path, or document_<ordinal> for inline text.
	Origin string
}

// Corpus is the ordered set of collected records plus id lookup.
type Corpus struct {
	records []Record
	byID    map[string]int
}

// newCorpus builds a corpus from finalized records.
func newCorpus(records []Record) *Corpus {
	byID := make(map[string]int, len(records))
	for i, r := range records {
		byID[r.ID] = i
	}
	return &Corpus{records: records, byID: byID}
}

// Len returns the number of records.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Records returns the records in collection order.
func (c *Corpus) Records() []Record { return c.records }

// At returns the record at the given ordinal.
func (c *Corpus) At(i int) (Record, bool) {
	if c == nil || i < 0 || i >= len(c.records) {
		return Record{}, false
	}
	return c.records[i], true
}

// ByID returns the record with the given identifier.
func (c *Corpus) ByID(id string) (Record, bool) {
	if c == nil {
		return Record{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// Origins returns the origin of every record in order.
func (c *Corpus) Origins() []string {
	origins := make([]string, 0, c.Len())
	for _, r := range c.records {
		origins = append(origins, r.Origin)
	}
	return origins
}

// ParseID extracts the ordinal from a doc_<n> identifier.
func ParseID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, IDPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// FromDirectories walks the directory trees and collects every accepted,
// readable, non-empty text file. Unreadable or undecodable entries and
// missing directories are logged and skipped; the walk never aborts. The
// corpus is published only after collection completes.
func FromDirectories(dirs []string) *Corpus {
	var records []Record

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			slog.Warn("skipping unreadable directory",
				slog.String("path", dir),
				slog.String("error", statReason(err)))
			continue
		}

		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				slog.Warn("skipping unreadable entry",
					slog.String("path", path),
					slog.String("error", err.Error()))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := acceptedExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}

			text, readErr := readTextFile(path)
			if readErr != nil {
				slog.Warn("skipping file",
					slog.String("path", path),
					slog.String("error", readErr.Error()))
				return nil
			}
			if text == "" {
				slog.Debug("skipping empty file", slog.String("path", path))
				return nil
			}

			records = append(records, Record{
				ID:     IDPrefix + strconv.Itoa(len(records)),
				Text:   text,
				Origin: path,
			})
			return nil
		})
		if walkErr != nil {
			slog.Warn("directory walk ended early",
				slog.String("path", dir),
				slog.String("error", walkErr.Error()))
		}
	}

	return newCorpus(records)
}

// FromDocuments collects inline text strings, one candidate document each.
// Empty strings are dropped; origins are synthetic document_<ordinal> labels.
func FromDocuments(documents []string) *Corpus {
	var records []Record
	for i, text := range documents {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			slog.Debug("skipping empty document", slog.Int("position", i))
			continue
		}
		ordinal := len(records)
		records = append(records, Record{
			ID:     IDPrefix + strconv.Itoa(ordinal),
			Text:   trimmed,
			Origin: "document_" + strconv.Itoa(ordinal),
		})
	}
	return newCorpus(records)
}

// readTextFile reads and trims a file, rejecting undecodable content.
func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("content is not valid UTF-8")
	}
	return strings.TrimSpace(string(data)), nil
}

// statReason renders a stat failure for logging.
func statReason(err error) string {
	if err == nil {
		return "not a directory"
	}
	return err.Error()
}
