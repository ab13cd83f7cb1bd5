package ferret

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc64"
	"sort"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BINARY SERIALIZATION FORMAT
// ═══════════════════════════════════════════════════════════════════════════════
//
//	MAGIC "IRBM" | u16 version | u8 flags |
//	dictionary chunk | postings chunk | permuterm chunk | phonetic chunk |
//	document-table chunk | trailing u64 CRC
//
// Every chunk is length-prefixed (u32 little-endian byte count). Posting
// lists use docId-delta gap coding: each posting stores how far its
// DocumentID is past the previous one in the list, and each position
// stores how far it is past the previous position — both as LEB128
// varints (encoding/binary's Uvarint, the standard library's native
// implementation of that exact encoding).
//
// The permuterm and phonetic chunks are emitted empty: both structures are
// pure functions of the dictionary's token set (rotationsOf / Soundex), so
// persisting them would duplicate a large amount of derivable data for no
// benefit — Decode rebuilds both from the decoded dictionary in the same
// time it would take to deserialize them. The chunks still carry their
// length prefix so the on-disk layout matches this contract exactly.
// ═══════════════════════════════════════════════════════════════════════════════

var magicBytes = [4]byte{'I', 'R', 'B', 'M'}

const formatVersion uint16 = 1

const (
	flagRankEnabled  = 1 << 0
	flagStopwordsOn  = 1 << 1
	flagStemmerShift = 2
	flagStemmerMask  = 0b11 << flagStemmerShift
)

var crcTable = crc64.MakeTable(crc64.ECMA)

// Encode serializes idx to the binary layout above.
func (idx *InvertedIndex) Encode() ([]byte, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	payload := new(bytes.Buffer)
	payload.Write(magicBytes[:])
	binary.Write(payload, binary.LittleEndian, formatVersion)
	payload.WriteByte(idx.encodeFlags())

	tokens := idx.sortedTokens()

	writeChunk(payload, idx.encodeDictionaryChunk(tokens))
	writeChunk(payload, idx.encodePostingsChunk(tokens))
	writeChunk(payload, nil) // permuterm: rebuilt on load
	writeChunk(payload, nil) // phonetic: rebuilt on load
	writeChunk(payload, idx.encodeDocumentTableChunk())

	sum := crc64.Checksum(payload.Bytes(), crcTable)
	binary.Write(payload, binary.LittleEndian, sum)
	return payload.Bytes(), nil
}

// Decode reconstructs an InvertedIndex from Encode's layout, verifying the
// magic, version, and trailing CRC before anything is published — a
// corrupt or truncated blob never produces a partially-built index.
func Decode(data []byte) (*InvertedIndex, error) {
	if len(data) < 4+2+1+8 {
		return nil, fmt.Errorf("%w: truncated header", ErrIndexCorruption)
	}
	if !bytes.Equal(data[:4], magicBytes[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrIndexCorruption)
	}
	payload := data[:len(data)-8]
	wantSum := binary.LittleEndian.Uint64(data[len(data)-8:])
	if crc64.Checksum(payload, crcTable) != wantSum {
		return nil, fmt.Errorf("%w: CRC mismatch", ErrIndexCorruption)
	}

	offset := 4
	version := binary.LittleEndian.Uint16(data[offset : offset+2])
	offset += 2
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrIndexCorruption, version)
	}
	flags := data[offset]
	offset++

	dictChunk, offset, err := readChunk(data, offset)
	if err != nil {
		return nil, err
	}
	postingsChunk, offset, err := readChunk(data, offset)
	if err != nil {
		return nil, err
	}
	_, offset, err = readChunk(data, offset) // permuterm
	if err != nil {
		return nil, err
	}
	_, offset, err = readChunk(data, offset) // phonetic
	if err != nil {
		return nil, err
	}
	docChunk, _, err := readChunk(data, offset)
	if err != nil {
		return nil, err
	}

	idx := newEmptyIndexForDecode(flags)

	tokens, dfs, err := decodeDictionaryChunk(dictChunk)
	if err != nil {
		return nil, err
	}
	if err := idx.decodePostingsChunk(postingsChunk, tokens, dfs); err != nil {
		return nil, err
	}
	if err := idx.decodeDocumentTableChunk(docChunk); err != nil {
		return nil, err
	}

	idx.rebuildPermuterm()
	idx.rebuildPhonetic()
	idx.recomputeAllDocuments()
	idx.built = true
	return idx, nil
}

func newEmptyIndexForDecode(flags byte) *InvertedIndex {
	cfg := DefaultAnalyzerConfig()
	cfg.EnableStopwords = flags&flagStopwordsOn != 0

	var kind StemmerKind
	switch (flags & flagStemmerMask) >> flagStemmerShift {
	case 1:
		kind = StemmerPorter
	case 2:
		kind = StemmerSnowball
	default:
		kind = StemmerNone
		cfg.EnableStemming = false
	}

	return &InvertedIndex{
		dictionary:    make(map[string]*Term),
		permuterm:     newPermutermIndex(),
		phonetic:      make(map[string]map[string]struct{}),
		documents:     make(map[DocumentID]*DocumentMeta),
		analyzerCfg:   cfg,
		stemmer:       NewStemmer(kind, "english", nil),
		ids:           NewIDGenerator(),
		matcherBudget: defaultMatcherBudget,
		rankEnabled:   flags&flagRankEnabled != 0,
	}
}

func (idx *InvertedIndex) encodeFlags() byte {
	var f byte
	if idx.rankEnabled {
		f |= flagRankEnabled
	}
	if idx.analyzerCfg.EnableStopwords {
		f |= flagStopwordsOn
	}
	var sid byte
	switch idx.stemmer.Kind() {
	case StemmerPorter:
		sid = 1
	case StemmerSnowball:
		sid = 2
	}
	f |= sid << flagStemmerShift
	return f
}

func (idx *InvertedIndex) sortedTokens() []string {
	tokens := make([]string, 0, len(idx.dictionary))
	for tok := range idx.dictionary {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

func writeChunk(buf *bytes.Buffer, payload []byte) {
	binary.Write(buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
}

func readChunk(data []byte, offset int) ([]byte, int, error) {
	if offset+4 > len(data) {
		return nil, 0, fmt.Errorf("%w: truncated chunk length", ErrIndexCorruption)
	}
	length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if length < 0 || offset+length > len(data) {
		return nil, 0, fmt.Errorf("%w: truncated chunk payload", ErrIndexCorruption)
	}
	return data[offset : offset+length], offset + length, nil
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint32(len(s)))
	buf.WriteString(s)
}

func readString(data []byte, offset int) (string, int, error) {
	if offset+4 > len(data) {
		return "", 0, fmt.Errorf("%w: truncated string length", ErrIndexCorruption)
	}
	n := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if n < 0 || offset+n > len(data) {
		return "", 0, fmt.Errorf("%w: truncated string data", ErrIndexCorruption)
	}
	return string(data[offset : offset+n]), offset + n, nil
}

func putUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func readUvarint(data []byte, offset int) (uint64, int, error) {
	v, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: bad varint", ErrIndexCorruption)
	}
	return v, offset + n, nil
}

func (idx *InvertedIndex) encodeDictionaryChunk(tokens []string) []byte {
	buf := new(bytes.Buffer)
	putUvarint(buf, uint64(len(tokens)))
	for _, tok := range tokens {
		writeString(buf, tok)
		putUvarint(buf, uint64(idx.dictionary[tok].DocumentFrequency()))
	}
	return buf.Bytes()
}

func decodeDictionaryChunk(data []byte) ([]string, []int, error) {
	offset := 0
	count, offset, err := readUvarint(data, offset)
	if err != nil {
		return nil, nil, err
	}
	tokens := make([]string, count)
	dfs := make([]int, count)
	for i := range tokens {
		tok, o2, err := readString(data, offset)
		if err != nil {
			return nil, nil, err
		}
		offset = o2
		df, o3, err := readUvarint(data, offset)
		if err != nil {
			return nil, nil, err
		}
		offset = o3
		tokens[i] = tok
		dfs[i] = int(df)
	}
	return tokens, dfs, nil
}

func (idx *InvertedIndex) encodePostingsChunk(tokens []string) []byte {
	buf := new(bytes.Buffer)
	for _, tok := range tokens {
		term := idx.dictionary[tok]
		var lastDoc uint64
		for i := 0; i < term.Postings.Len(); i++ {
			p := term.Postings.At(i)
			putUvarint(buf, uint64(p.Doc)-lastDoc)
			lastDoc = uint64(p.Doc)
			putUvarint(buf, uint64(len(p.Positions)))
			var lastPos uint64
			for _, pos := range p.Positions {
				putUvarint(buf, uint64(pos)-lastPos)
				lastPos = uint64(pos)
			}
		}
	}
	return buf.Bytes()
}

func (idx *InvertedIndex) decodePostingsChunk(data []byte, tokens []string, dfs []int) error {
	offset := 0
	for ti, tok := range tokens {
		term := newTerm(tok)
		var lastDoc uint64
		for i := 0; i < dfs[ti]; i++ {
			delta, o2, err := readUvarint(data, offset)
			if err != nil {
				return err
			}
			offset = o2
			lastDoc += delta
			docID := DocumentID(lastDoc)

			numPos, o3, err := readUvarint(data, offset)
			if err != nil {
				return err
			}
			offset = o3
			positions := make([]uint32, numPos)
			var lastPos uint64
			for k := range positions {
				pd, o4, err := readUvarint(data, offset)
				if err != nil {
					return err
				}
				offset = o4
				lastPos += pd
				positions[k] = uint32(lastPos)
			}
			term.Postings.elems = append(term.Postings.elems, &Posting{Doc: docID, Positions: positions})
			term.Bitmap.Add(uint32(docID))
		}
		term.Postings.Finalize()
		idx.dictionary[tok] = term
	}
	return nil
}

func (idx *InvertedIndex) encodeDocumentTableChunk() []byte {
	buf := new(bytes.Buffer)
	ids := make([]DocumentID, 0, len(idx.documents))
	for id := range idx.documents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	putUvarint(buf, uint64(len(ids)))
	for _, id := range ids {
		meta := idx.documents[id]
		putUvarint(buf, uint64(id))
		writeString(buf, meta.Title)
		writeString(buf, meta.Language)
		putUvarint(buf, uint64(len(meta.Zones)))
		for _, z := range meta.Zones {
			buf.WriteByte(byte(z.Rank))
			putUvarint(buf, uint64(z.Start))
			putUvarint(buf, uint64(z.End))
		}
	}
	return buf.Bytes()
}

func (idx *InvertedIndex) decodeDocumentTableChunk(data []byte) error {
	offset := 0
	count, offset, err := readUvarint(data, offset)
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		idRaw, o2, err := readUvarint(data, offset)
		if err != nil {
			return err
		}
		offset = o2
		title, o3, err := readString(data, offset)
		if err != nil {
			return err
		}
		offset = o3
		lang, o4, err := readString(data, offset)
		if err != nil {
			return err
		}
		offset = o4
		nZones, o5, err := readUvarint(data, offset)
		if err != nil {
			return err
		}
		offset = o5

		zones := make([]ZoneSpan, nZones)
		for z := uint64(0); z < nZones; z++ {
			if offset >= len(data) {
				return fmt.Errorf("%w: truncated zone", ErrIndexCorruption)
			}
			rank := ZoneRank(data[offset])
			offset++
			start, o6, err := readUvarint(data, offset)
			if err != nil {
				return err
			}
			offset = o6
			end, o7, err := readUvarint(data, offset)
			if err != nil {
				return err
			}
			offset = o7
			zones[z] = ZoneSpan{Rank: rank, Start: uint32(start), End: uint32(end)}
		}

		id := DocumentID(idRaw)
		idx.documents[id] = &DocumentMeta{ID: id, Title: title, Language: lang, Zones: zones}
	}
	idx.totalDocs = int(count)
	return nil
}
