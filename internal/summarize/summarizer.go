// Package summarize produces short extractive summaries.
package summarize

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// ErrNoSentences is returned when the text holds nothing to summarize.
var ErrNoSentences = errors.New("no sentences found to summarize")

// Summarizer picks the highest scoring sentences by word frequency.
type Summarizer struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func New() (*Summarizer, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence tokenizer: %w", err)
	}
	return &Summarizer{tokenizer: tokenizer}, nil
}

// Sentences splits text into trimmed, non-empty sentences.
func (s *Summarizer) Sentences(text string) []string {
	var out []string
	for _, sent := range s.tokenizer.Tokenize(text) {
		if t := strings.TrimSpace(sent.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Summarize returns up to count sentences of text, in their original order,
// joined by a single space.
func (s *Summarizer) Summarize(text string, count int) (string, error) {
	sents := s.Sentences(text)
	if len(sents) == 0 {
		return "", ErrNoSentences
	}
	if count <= 0 || count > len(sents) {
		count = len(sents)
	}
	if count == len(sents) {
		return strings.Join(sents, " "), nil
	}

	words := make([][]string, len(sents))
	freq := make(map[string]int)
	for i, sent := range sents {
		words[i] = contentWords(sent)
		for _, w := range words[i] {
			freq[w]++
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(sents))
	for i, ws := range words {
		var sum float64
		for _, w := range ws {
			sum += float64(freq[w])
		}
		score := 0.0
		if len(ws) > 0 {
			score = sum / math.Sqrt(float64(len(ws)))
		}
		ranked[i] = scored{idx: i, score: score}
	}
	// stable keeps the earlier sentence on ties
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	picked := make([]int, 0, count)
	for _, r := range ranked[:count] {
		picked = append(picked, r.idx)
	}
	sort.Ints(picked)

	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = sents[idx]
	}
	return strings.Join(out, " "), nil
}

func contentWords(sentence string) []string {
	fields := strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop || len(f) < 2 {
			continue
		}
		out = append(out, f)
	}
	return out
}

var stopWords = func() map[string]struct{} {
	words := strings.Fields(`a about above after again against all am an and any are as at be because
		been before being below between both but by can could did do does doing down during each few
		for from further had has have having he her here hers herself him himself his how i if in into
		is it its itself just me more most my myself no nor not now of off on once only or other our
		ours ourselves out over own same she should so some such than that the their theirs them
		themselves then there these they this those through to too under until up very was we were
		what when where which while who whom why will with would you your yours yourself yourselves
		shall may must upon hereby herein thereof`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
