// Command client sends one utterance to a running emoberta server and
// prints the ranked emotion probabilities.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emoberta/emoberta/internal/client"
	"github.com/emoberta/emoberta/pkg/api"
)

type contextFlags []api.Turn

func (c *contextFlags) String() string { return fmt.Sprintf("%d turns", len(*c)) }

// Set parses "SPEAKER|text" (the speaker part is optional).
func (c *contextFlags) Set(value string) error {
	speaker, text, found := strings.Cut(value, "|")
	if !found {
		text, speaker = speaker, ""
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("context turn needs text: %q", value)
	}
	*c = append(*c, api.Turn{Speaker: strings.TrimSpace(speaker), Text: strings.TrimSpace(text)})
	return nil
}

func main() {
	url := flag.String("url", "http://localhost:8080", "server base URL")
	text := flag.String("text", "", "utterance to classify")
	speaker := flag.String("speaker", "", "speaker of the utterance")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	var turns contextFlags
	flag.Var(&turns, "context", `preceding turn as "SPEAKER|text" (repeatable)`)
	flag.Parse()

	in := *text
	if in == "" && flag.NArg() > 0 {
		in = strings.Join(flag.Args(), " ")
	}
	if in == "" {
		log.Fatal(`usage: client [-url http://host:port] [-context "SPEAKER|text"]... -text "utterance"`)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cl := client.New(*url)
	prediction, err := cl.Classify(ctx, api.ClassifyRequest{
		Text:    in,
		Speaker: *speaker,
		Context: turns,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s\n", prediction.DominantEmotion)
	for _, score := range prediction.Emotions {
		fmt.Printf("  %-12s %.4f\n", score.Label, score.Score)
	}
}
