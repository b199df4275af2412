package dataset

import (
	"strings"
	"unicode"
)

// SpeakerMode controls how the speaker name is woven into the model input.
type SpeakerMode string

const (
	// SpeakerNone omits the speaker entirely.
	SpeakerNone SpeakerMode = "none"
	// SpeakerUpper prefixes each utterance with "SPEAKER: ".
	SpeakerUpper SpeakerMode = "upper"
	// SpeakerTitle prefixes each utterance with "Speaker: ".
	SpeakerTitle SpeakerMode = "title"
)

// WindowOptions selects how much surrounding dialogue is attached to each
// classified utterance.
type WindowOptions struct {
	SpeakerMode SpeakerMode
	NumPast     int
	NumFuture   int
}

// Example is one classified utterance together with its rendered context
// window. Segments holds the ordered utterance texts (speaker prefix already
// applied); Target indexes the classified utterance within Segments.
type Example struct {
	Segments []string
	Target   int
	Class    int
}

func buildWindow(utterances []Utterance, target, class int, opts WindowOptions) Example {
	lo := target - opts.NumPast
	if lo < 0 {
		lo = 0
	}
	hi := target + opts.NumFuture
	if hi > len(utterances)-1 {
		hi = len(utterances) - 1
	}

	segments := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		segments = append(segments, RenderUtterance(utterances[i], opts.SpeakerMode))
	}
	return Example{Segments: segments, Target: target - lo, Class: class}
}

// RenderUtterance produces the model-input text of a single utterance.
func RenderUtterance(utt Utterance, mode SpeakerMode) string {
	text := strings.TrimSpace(utt.Text)
	speaker := strings.TrimSpace(utt.Speaker)
	if speaker == "" || mode == SpeakerNone || mode == "" {
		return text
	}
	switch mode {
	case SpeakerUpper:
		speaker = strings.ToUpper(speaker)
	case SpeakerTitle:
		speaker = titleCase(speaker)
	}
	return speaker + ": " + text
}

func titleCase(s string) string {
	var b strings.Builder
	startOfWord := true
	for _, r := range strings.ToLower(s) {
		if startOfWord && unicode.IsLetter(r) {
			r = unicode.ToUpper(r)
			startOfWord = false
		} else if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			startOfWord = true
		}
		b.WriteRune(r)
	}
	return b.String()
}
