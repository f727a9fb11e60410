// Package sentiment is a small rule-based tagger for chat turns: a polarity
// score in [-1, 1] and a three-way label derived from it.
package sentiment

import (
	"sort"
	"strings"

	"github.com/jonreiter/govader"
)

type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Japanese is the label as shown in annotated transcripts.
func (l Label) Japanese() string {
	switch l {
	case Positive:
		return "ポジティブ"
	case Negative:
		return "ネガティブ"
	default:
		return "ニュートラル"
	}
}

const (
	PositiveThreshold = 0.5
	NegativeThreshold = -0.5
)

// Classify maps a polarity score to a label. Both thresholds are exclusive.
func Classify(score float64) Label {
	switch {
	case score > PositiveThreshold:
		return Positive
	case score < NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

// Analyzer scores English text with VADER and adds a stem lexicon matched as
// substrings, for Japanese text without word boundaries.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer

	Stems map[string]float64
	// NegatedSuffixes flip a stem hit when they follow it directly.
	NegatedSuffixes []string
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		vader:           govader.NewSentimentIntensityAnalyzer(),
		Stems:           japaneseStems,
		NegatedSuffixes: japaneseNegations,
	}
}

// negation scales a stem hit instead of simply inverting it, 難しくない is
// weaker than 簡単.
const negationFactor = -0.5

// Polarity averages the VADER compound score (when the text has any English
// sentiment) with every stem hit, clamped to [-1, 1]. Text without hits
// scores 0.
func (a *Analyzer) Polarity(text string) float64 {
	hits := a.stemHits(text)
	if compound := a.vader.PolarityScores(text).Compound; compound != 0 {
		hits = append(hits, compound)
	}
	if len(hits) == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range hits {
		sum += h
	}
	return clamp(sum / float64(len(hits)))
}

// Classify scores and labels text in one step.
func (a *Analyzer) Classify(text string) Label {
	return Classify(a.Polarity(text))
}

func (a *Analyzer) stemHits(text string) []float64 {
	stems := make([]string, 0, len(a.Stems))
	for stem := range a.Stems {
		stems = append(stems, stem)
	}
	sort.Strings(stems)

	ret := []float64{}
	for _, stem := range stems {
		score := a.Stems[stem]
		rest := text
		for {
			idx := strings.Index(rest, stem)
			if idx < 0 {
				break
			}
			rest = rest[idx+len(stem):]
			s := score
			if a.negatedAt(rest) {
				s *= negationFactor
			}
			ret = append(ret, s)
		}
	}
	return ret
}

func (a *Analyzer) negatedAt(rest string) bool {
	for _, suffix := range a.NegatedSuffixes {
		if strings.HasPrefix(rest, suffix) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
