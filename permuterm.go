package ferret

import (
	"sort"
	"strings"
)

const permutermTerminator = '$'

// ═══════════════════════════════════════════════════════════════════════════════
// PERMUTERM / ROTATION INDEX
// ═══════════════════════════════════════════════════════════════════════════════
// Every dictionary token t gets rotated through all |t|+1 positions of
// t+"$", and every rotation is entered into a sorted table pointing back at
// t. A wildcard query "a*b" is answered by rotating it the same way — put
// the '*' at the end — and binary-searching the rotation table for that
// prefix: "b$a" finds every token whose rotation begins that way, i.e.
// every token starting with "a" and ending with "b". This is the classic
// permuterm trick; see ResolveWildcard in matcher.go for the full
// four-step procedure including multi-wildcard filtering.
// ═══════════════════════════════════════════════════════════════════════════════

// PermutermIndex maps every rotation of every dictionary token to its
// origin, supporting wildcard resolution by prefix search.
type PermutermIndex struct {
	rotations []rotationEntry
}

type rotationEntry struct {
	Rotation string
	Token    string
}

func newPermutermIndex() *PermutermIndex {
	return &PermutermIndex{}
}

// rotationsOf returns the len(t)+1 cyclic rotations of t+"$".
func rotationsOf(token string) []string {
	s := token + string(permutermTerminator)
	out := make([]string, len(s))
	for k := 0; k < len(s); k++ {
		out[k] = s[k:] + s[:k]
	}
	return out
}

// addToken installs every rotation of token. Call only during the build or
// decode phase; the index is append-only until finalize sorts it.
func (p *PermutermIndex) addToken(token string) {
	for _, r := range rotationsOf(token) {
		p.rotations = append(p.rotations, rotationEntry{Rotation: r, Token: token})
	}
}

// finalize sorts the rotation table so lookupPrefix can binary search it.
func (p *PermutermIndex) finalize() {
	sort.Slice(p.rotations, func(i, j int) bool { return p.rotations[i].Rotation < p.rotations[j].Rotation })
}

// lookupPrefix returns the distinct tokens with a rotation beginning with
// prefix, in the order first encountered in the sorted table.
func (p *PermutermIndex) lookupPrefix(prefix string) []string {
	lo := sort.Search(len(p.rotations), func(i int) bool { return p.rotations[i].Rotation >= prefix })
	seen := make(map[string]struct{})
	var out []string
	for i := lo; i < len(p.rotations) && strings.HasPrefix(p.rotations[i].Rotation, prefix); i++ {
		tok := p.rotations[i].Token
		if _, ok := seen[tok]; !ok {
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}
