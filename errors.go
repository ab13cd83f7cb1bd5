package ferret

import "errors"

// ═══════════════════════════════════════════════════════════════════════════════
// ERROR TAXONOMY
// ═══════════════════════════════════════════════════════════════════════════════
// Every error the engine can surface is a package-level sentinel, so callers
// compare with errors.Is instead of string matching. Recoverable errors are
// logged and the operation proceeds with a degraded but defined behavior;
// non-recoverable errors abort the current query or build.
//
// Recoverable:  ErrStemmerUnavailable, ErrMatcherTimeout, ErrCorrectionExhausted
// Non-recoverable: ErrMalformedQuery, ErrTokenExhaustion, ErrIndexCorruption, ErrIOFailure
// ═══════════════════════════════════════════════════════════════════════════════
var (
	// Posting-list / skip-list lookups (carried from the indexing primitives).
	ErrNoPostingList = errors.New("no posting list exists for token")
	ErrNoNextElement = errors.New("no next element found")
	ErrNoPrevElement = errors.New("no previous element found")
	ErrKeyNotFound    = errors.New("key not found")
	ErrNoElementFound = errors.New("no element found")

	// MalformedQuery: parser failure, unbalanced quotes/parens, empty phrase.
	ErrMalformedQuery = errors.New("malformed query")

	// TokenExhaustion: document id counter overflow at indexing.
	ErrTokenExhaustion = errors.New("document id space exhausted")

	// IndexCorruption: CRC mismatch, bad magic, or truncated chunk during load.
	ErrIndexCorruption = errors.New("index corruption detected")

	// StemmerUnavailable: configured stemmer not installable for the detected
	// language; recoverable — the caller downgrades to a no-op stemmer and
	// logs a warning.
	ErrStemmerUnavailable = errors.New("stemmer unavailable for language")

	// MatcherTimeout: wildcard matcher exceeded its per-candidate budget;
	// recoverable — the candidate is simply rejected.
	ErrMatcherTimeout = errors.New("wildcard matcher timed out")

	// IOFailure: persistence I/O failed; no partial index is published.
	ErrIOFailure = errors.New("index persistence I/O failure")

	// CorrectionExhausted: correction loop reached its maximum attempt count
	// with no matches.
	ErrCorrectionExhausted = errors.New("correction exhausted with no matches")
)
