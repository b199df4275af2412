// Package tokenize implements the frequency-ranked word vocabulary used to
// turn utterance windows into fixed-length token id sequences.
package tokenize

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
)

// Reserved token ids. Real words start at firstWordID.
const (
	PadID = 0
	UnkID = 1
	SepID = 2

	firstWordID = 3
)

// Vocab maps word tokens to dense integer ids, ranked by frequency in the
// corpus it was built from.
type Vocab struct {
	words []string
	index map[string]int
}

// Build constructs a vocabulary from the given texts, keeping at most maxSize
// entries (reserved ids included). Ties in frequency break lexicographically
// so a rebuild over the same corpus is deterministic.
func Build(texts []string, maxSize int) *Vocab {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, tok := range Split(text) {
			counts[tok]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if maxSize > firstWordID && len(words) > maxSize-firstWordID {
		words = words[:maxSize-firstWordID]
	}
	return fromWords(words)
}

func fromWords(words []string) *Vocab {
	v := &Vocab{words: words, index: make(map[string]int, len(words))}
	for i, w := range words {
		v.index[w] = firstWordID + i
	}
	return v
}

// Size reports the total id space, reserved ids included.
func (v *Vocab) Size() int { return firstWordID + len(v.words) }

// Split tokenizes text into lowercase word and punctuation tokens.
func Split(text string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			word.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

// Encode maps text to token ids, using UnkID for out-of-vocabulary words.
func (v *Vocab) Encode(text string) []int32 {
	tokens := Split(text)
	ids := make([]int32, 0, len(tokens))
	for _, tok := range tokens {
		if id, ok := v.index[tok]; ok {
			ids = append(ids, int32(id))
		} else {
			ids = append(ids, UnkID)
		}
	}
	return ids
}

// EncodeWindow renders a context window into a fixed-length padded id
// sequence. Segments are joined with SepID. When the window exceeds maxLen
// the segment farthest from the target is dropped first (future before past
// on equal distance); a target utterance that alone exceeds the budget is
// tail-truncated.
func (v *Vocab) EncodeWindow(segments []string, target, maxLen int) []int32 {
	if target < 0 || target >= len(segments) {
		return make([]int32, maxLen)
	}

	encoded := make([][]int32, len(segments))
	for i, s := range segments {
		encoded[i] = v.Encode(s)
	}

	lo, hi := 0, len(segments)-1
	for lo < hi && windowLen(encoded, lo, hi) > maxLen {
		past := target - lo
		future := hi - target
		if future >= past && hi > target {
			hi--
		} else {
			lo++
		}
	}

	ids := make([]int32, 0, maxLen)
	for i := lo; i <= hi; i++ {
		if i > lo {
			ids = append(ids, SepID)
		}
		ids = append(ids, encoded[i]...)
	}
	if len(ids) > maxLen {
		ids = ids[:maxLen]
	}
	for len(ids) < maxLen {
		ids = append(ids, PadID)
	}
	return ids
}

func windowLen(encoded [][]int32, lo, hi int) int {
	n := hi - lo // separators
	for i := lo; i <= hi; i++ {
		n += len(encoded[i])
	}
	return n
}

type vocabFile struct {
	Words []string `json:"words"`
}

// Save writes the vocabulary to path as JSON.
func (v *Vocab) Save(path string) error {
	raw, err := json.Marshal(vocabFile{Words: v.words})
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Load reads a vocabulary previously written by Save.
func Load(path string) (*Vocab, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	var f vocabFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode vocab %s: %w", path, err)
	}
	return fromWords(f.Words), nil
}
