// Package sentiment labels text as positive, negative or neutral.
package sentiment

import (
	"errors"
	"math"
	"strings"

	"github.com/jonreiter/govader"
)

type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

const (
	EngineVader    = "vader"
	EngineSentence = "sentence"
)

var ErrUnknownEngine = errors.New("unknown sentiment engine")

type Result struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"score"`
}

type Analyzer interface {
	Analyze(text string) Result
}

// NewAnalyzer returns the analyzer registered under engine; an empty engine selects VADER.
func NewAnalyzer(engine string) (Analyzer, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineVader:
		return NewVaderAnalyzer(), nil
	case EngineSentence:
		return NewSentenceAnalyzer(), nil
	default:
		return nil, ErrUnknownEngine
	}
}

type VaderAnalyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderAnalyzer) Compound(text string) float64 {
	return v.sia.PolarityScores(text).Compound
}

func (v *VaderAnalyzer) Analyze(text string) Result {
	compound := v.Compound(text)

	label := Neutral
	switch {
	case compound >= 0.05:
		label = Positive
	case compound <= -0.05:
		label = Negative
	}

	return Result{Label: label, Confidence: round2(math.Abs(compound)), Score: compound}
}

// ImageResult is assigned to posts without text; no lexicon applies to pixels.
func ImageResult() Result {
	return Result{Label: Neutral}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
