package sentiment

import (
	"math"
	"regexp"
	"strings"
)

var sentenceBoundary = regexp.MustCompile(`[^.!?\n]+[.!?]*`)

type SentenceScore struct {
	Text     string  `json:"text"`
	Polarity float64 `json:"polarity"`
}

// SentenceAnalyzer averages per-sentence polarity, with wider neutral thresholds than VADER.
type SentenceAnalyzer struct {
	vader *VaderAnalyzer
}

func NewSentenceAnalyzer() *SentenceAnalyzer {
	return &SentenceAnalyzer{vader: NewVaderAnalyzer()}
}

func SplitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceBoundary.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func (s *SentenceAnalyzer) Sentences(text string) []SentenceScore {
	parts := SplitSentences(text)
	scores := make([]SentenceScore, 0, len(parts))
	for _, p := range parts {
		scores = append(scores, SentenceScore{Text: p, Polarity: s.vader.Compound(p)})
	}
	return scores
}

func (s *SentenceAnalyzer) Polarity(text string) float64 {
	scores := s.Sentences(text)
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, sc := range scores {
		sum += sc.Polarity
	}
	return sum / float64(len(scores))
}

func (s *SentenceAnalyzer) Analyze(text string) Result {
	polarity := s.Polarity(text)

	label := Neutral
	switch {
	case polarity > 0.1:
		label = Positive
	case polarity < -0.1:
		label = Negative
	}

	return Result{Label: label, Confidence: round2(math.Abs(polarity)), Score: polarity}
}
