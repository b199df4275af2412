package tokenize

import (
	"path/filepath"
	"testing"
)

func TestSplitWordsAndPunctuation(t *testing.T) {
	tokens := Split("Oh, really?! I don't know...")
	want := []string{"oh", ",", "really", "?", "!", "i", "don't", "know", ".", ".", "."}
	if len(tokens) != len(want) {
		t.Fatalf("token count: got %v want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d: got %q want %q", i, tokens[i], want[i])
		}
	}
}

func TestBuildRanksByFrequency(t *testing.T) {
	v := Build([]string{"red red red blue blue green"}, 100)

	red := v.Encode("red")[0]
	blue := v.Encode("blue")[0]
	green := v.Encode("green")[0]
	if red != firstWordID {
		t.Fatalf("most frequent word should get the first id, got %d", red)
	}
	if !(red < blue && blue < green) {
		t.Fatalf("expected frequency ranking, got red=%d blue=%d green=%d", red, blue, green)
	}
}

func TestBuildTruncatesToMaxSize(t *testing.T) {
	v := Build([]string{"a a a b b c"}, firstWordID+2)
	if v.Size() != firstWordID+2 {
		t.Fatalf("expected size %d, got %d", firstWordID+2, v.Size())
	}
	if got := v.Encode("c")[0]; got != UnkID {
		t.Fatalf("truncated word should map to unk, got %d", got)
	}
}

func TestEncodeUnknownWord(t *testing.T) {
	v := Build([]string{"hello world"}, 100)
	ids := v.Encode("hello zorblax")
	if ids[0] == UnkID {
		t.Fatalf("known word mapped to unk")
	}
	if ids[1] != UnkID {
		t.Fatalf("unknown word should map to unk, got %d", ids[1])
	}
}

func TestEncodeWindowPadsToLength(t *testing.T) {
	v := Build([]string{"one two three"}, 100)
	ids := v.EncodeWindow([]string{"one two"}, 0, 8)
	if len(ids) != 8 {
		t.Fatalf("expected fixed length 8, got %d", len(ids))
	}
	if ids[2] != PadID || ids[7] != PadID {
		t.Fatalf("expected pad tail, got %v", ids)
	}
}

func TestEncodeWindowJoinsWithSep(t *testing.T) {
	v := Build([]string{"aa bb cc"}, 100)
	ids := v.EncodeWindow([]string{"aa", "bb"}, 1, 8)
	if ids[1] != SepID {
		t.Fatalf("expected separator between segments, got %v", ids)
	}
}

func TestEncodeWindowDropsFarthestFirst(t *testing.T) {
	v := Build([]string{"aa bb cc dd ee"}, 100)
	// Five 1-token segments + separators = 9 > budget of 5: the farthest
	// segments from the target must go first, future before past on ties.
	segments := []string{"aa", "bb", "cc", "dd", "ee"}
	ids := v.EncodeWindow(segments, 2, 5)

	cc := v.Encode("cc")[0]
	found := false
	for _, id := range ids {
		if id == cc {
			found = true
		}
	}
	if !found {
		t.Fatalf("target segment must survive truncation: %v", ids)
	}
	ee := v.Encode("ee")[0]
	for _, id := range ids {
		if id == ee {
			t.Fatalf("farthest future segment should be dropped: %v", ids)
		}
	}
}

func TestEncodeWindowTruncatesOversizedTarget(t *testing.T) {
	v := Build([]string{"w1 w2 w3 w4 w5 w6"}, 100)
	ids := v.EncodeWindow([]string{"w1 w2 w3 w4 w5 w6"}, 0, 4)
	if len(ids) != 4 {
		t.Fatalf("expected length 4, got %d", len(ids))
	}
	for _, id := range ids {
		if id == PadID {
			t.Fatalf("oversized target should fill the whole budget: %v", ids)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	v := Build([]string{"alpha beta beta gamma"}, 100)
	path := filepath.Join(t.TempDir(), "vocab.json")
	if err := v.Save(path); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if loaded.Size() != v.Size() {
		t.Fatalf("size mismatch: got %d want %d", loaded.Size(), v.Size())
	}
	if got, want := loaded.Encode("beta")[0], v.Encode("beta")[0]; got != want {
		t.Fatalf("id mismatch after reload: got %d want %d", got, want)
	}
}
