package ferret

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════════
// CONCURRENT BUILD PIPELINE
// ═══════════════════════════════════════════════════════════════════════════════
// Tokenization (including stemming) is the dominant cost of a build — it is
// pure per-document work with no shared state, so it runs on a worker pool
// sized to GOMAXPROCS. Merging each document's tokens into the shared
// dictionary is comparatively cheap, so it runs on a single aggregator
// goroutine fed by the workers: there is exactly one writer to the
// dictionary at any time, which trivially satisfies "no two tasks mutate
// the same (token, document) bucket simultaneously" without sharded locks.
// DocumentIDs are assigned by the aggregator as results arrive, so they are
// unique and monotonically increasing but not necessarily in Source
// iteration order (the contract never requires that).
//
// Once every document has been merged, the aggregator finalizes each
// term's posting list (sort by DocumentID, install skip pointers) and the
// permuterm/phonetic auxiliary structures are built from the now-frozen
// dictionary. No partial index is ever visible to readers: Build either
// succeeds and publishes a complete, self-consistent InvertedIndex, or it
// returns an error and the caller discards it.
// ═══════════════════════════════════════════════════════════════════════════════

type docAnalysis struct {
	doc     Document
	tokens  map[string][]uint32
	zones   []ZoneSpan
}

// Build ingests src into idx. onProgress, if non-nil, is called no more
// often than progressEvery with the fraction of documents processed so
// far (best-effort; Source implementations are not required to report a
// total document count up front).
func (idx *InvertedIndex) Build(ctx context.Context, src Source, progressEvery time.Duration, onProgress func(float64)) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	docsCh, errCh := src.Iterate(ctx)
	workers := runtime.GOMAXPROCS(0)
	work := make(chan Document, workers*2)
	results := make(chan docAnalysis, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range work {
				tokens, zones := idx.analyzeDocument(doc)
				results <- docAnalysis{doc: doc, tokens: tokens, zones: zones}
			}
		}()
	}

	feedErr := make(chan error, 1)
	go func() {
		defer close(work)
		for {
			select {
			case <-ctx.Done():
				feedErr <- ctx.Err()
				return
			case d, ok := <-docsCh:
				if !ok {
					feedErr <- nil
					return
				}
				select {
				case work <- d:
				case <-ctx.Done():
					feedErr <- ctx.Err()
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	partial := make(map[string]map[DocumentID][]uint32)
	var processed int64
	lastReport := time.Now()

	for res := range results {
		id, err := idx.ids.Next()
		if err != nil {
			return err
		}
		for token, positions := range res.tokens {
			docMap, ok := partial[token]
			if !ok {
				docMap = make(map[DocumentID][]uint32)
				partial[token] = docMap
			}
			docMap[id] = positions
		}
		idx.documents[id] = &DocumentMeta{
			ID:       id,
			Title:    res.doc.Title,
			Language: res.doc.Language,
			Zones:    res.zones,
		}
		processed++
		if onProgress != nil && time.Since(lastReport) >= progressEvery {
			onProgress(idx.approxProgress(processed))
			lastReport = time.Now()
		}
	}

	if err := <-feedErr; err != nil {
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}

	idx.totalDocs = int(processed)
	idx.finalizeDictionary(partial)
	idx.rebuildPermuterm()
	idx.rebuildPhonetic()
	idx.recomputeAllDocuments()
	idx.built = true
	idx.buildProgress.Store(1_000_000)

	slog.Info("index build complete",
		slog.Int("documents", idx.totalDocs),
		slog.Int("vocabulary", len(idx.dictionary)))

	if onProgress != nil {
		onProgress(1.0)
	}
	return nil
}

func (idx *InvertedIndex) approxProgress(processed int64) float64 {
	// Without a known corpus size up front, progress is reported as a
	// saturating curve rather than a false linear estimate.
	p := float64(processed) / (float64(processed) + 64)
	idx.buildProgress.Store(uint64(p * 1_000_000))
	return p
}

// analyzeDocument tokenizes every zone of doc in a single unified position
// space: positions advance once per surviving token across zones in order,
// and each zone's occupied range is recorded for zone-weighted ranking.
func (idx *InvertedIndex) analyzeDocument(doc Document) (map[string][]uint32, []ZoneSpan) {
	tokenPositions := make(map[string][]uint32)
	zones := make([]ZoneSpan, 0, len(doc.Zones))
	var pos uint32
	for _, z := range doc.Zones {
		start := pos
		for _, tok := range idx.analyzerCfg.Analyze(z.Text, idx.stemmer) {
			tokenPositions[tok] = append(tokenPositions[tok], pos)
			pos++
		}
		zones = append(zones, ZoneSpan{Rank: z.Rank, Start: start, End: pos})
	}
	return tokenPositions, zones
}

func (idx *InvertedIndex) finalizeDictionary(partial map[string]map[DocumentID][]uint32) {
	for token, docMap := range partial {
		term := newTerm(token)
		ids := make([]DocumentID, 0, len(docMap))
		for id := range docMap {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		term.Postings.elems = make([]*Posting, 0, len(ids))
		for _, id := range ids {
			term.Postings.elems = append(term.Postings.elems, &Posting{Doc: id, Positions: docMap[id]})
			term.Bitmap.Add(uint32(id))
		}
		term.Postings.Finalize()
		idx.dictionary[token] = term
	}
}

func (idx *InvertedIndex) rebuildPermuterm() {
	p := newPermutermIndex()
	for tok := range idx.dictionary {
		p.addToken(tok)
	}
	p.finalize()
	idx.permuterm = p
}

func (idx *InvertedIndex) rebuildPhonetic() {
	buckets := make(map[string]map[string]struct{})
	for tok := range idx.dictionary {
		code := Soundex(tok)
		b, ok := buckets[code]
		if !ok {
			b = make(map[string]struct{})
			buckets[code] = b
		}
		b[tok] = struct{}{}
	}
	idx.phonetic = buckets
}

func (idx *InvertedIndex) recomputeAllDocuments() {
	sl := NewSkipList[DocumentID](compareDocumentID)
	sl.elems = make([]DocumentID, 0, len(idx.documents))
	for id := range idx.documents {
		sl.elems = append(sl.elems, id)
	}
	sort.Slice(sl.elems, func(i, j int) bool { return sl.elems[i] < sl.elems[j] })
	sl.Finalize()
	idx.allDocsCache = sl
}
