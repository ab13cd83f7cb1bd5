// Package corpus provides ferret.Source implementations: concrete places
// documents can come from, kept out of the core engine so ferret itself
// never touches a filesystem or a wire format directly.
package corpus

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ferretir/ferret"
)

// record is the on-disk shape of one newline-delimited JSON document: a
// flat "movie" record in the style of the original system's loaders
// (title/summary/body text split into zones plus a language tag).
type record struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Body     string `json:"body"`
	Language string `json:"language"`
}

// NDJSONFile streams documents from a newline-delimited JSON file, one
// record per line.
type NDJSONFile struct {
	Path string
}

// Name identifies this source for logging.
func (s *NDJSONFile) Name() string { return "ndjson:" + s.Path }

// StableIdentifier distinguishes corpora built from different files. It is
// derived from Path alone, so a file rewritten in place keeps the same
// identifier.
func (s *NDJSONFile) StableIdentifier() []byte {
	sum := sha256.Sum256([]byte(s.Path))
	return sum[:]
}

// Iterate opens Path and decodes it line by line, emitting one
// ferret.Document per non-blank line.
func (s *NDJSONFile) Iterate(ctx context.Context) (<-chan ferret.Document, <-chan error) {
	out := make(chan ferret.Document)
	errc := make(chan error, 1)

	go func() {
		defer close(out)

		f, err := os.Open(s.Path)
		if err != nil {
			errc <- fmt.Errorf("opening %s: %w", s.Path, err)
			return
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
		lineNo := 0
		for sc.Scan() {
			lineNo++
			line := sc.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			var rec record
			if err := json.Unmarshal(line, &rec); err != nil {
				errc <- fmt.Errorf("%s:%d: %w", s.Path, lineNo, err)
				return
			}
			doc := ferret.Document{
				Title:    rec.Title,
				Language: rec.Language,
				Zones: []ferret.Zone{
					{Rank: ferret.ZoneTitle, Text: rec.Title},
					{Rank: ferret.ZoneSummary, Text: rec.Summary},
					{Rank: ferret.ZoneBody, Text: rec.Body},
				},
			}
			select {
			case out <- doc:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		if err := sc.Err(); err != nil {
			errc <- fmt.Errorf("reading %s: %w", s.Path, err)
			return
		}
		errc <- nil
	}()

	return out, errc
}

// Fixture is an in-memory ferret.Source for tests: it holds documents built
// directly in Go rather than read from a file.
type Fixture struct {
	Docs []ferret.Document
}

// Name identifies this source for logging.
func (f *Fixture) Name() string { return "fixture" }

// StableIdentifier is a constant identity — fixtures are rebuilt fresh
// every time, so there is nothing persistent to key on.
func (f *Fixture) StableIdentifier() []byte { return []byte("fixture") }

// Iterate emits every document in Docs, honoring context cancellation.
func (f *Fixture) Iterate(ctx context.Context) (<-chan ferret.Document, <-chan error) {
	out := make(chan ferret.Document)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		for _, d := range f.Docs {
			select {
			case out <- d:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- nil
	}()
	return out, errc
}
