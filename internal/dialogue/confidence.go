package dialogue

import (
	"math"
	"regexp"
	"strings"
)

// ConfidenceCalculator scores generated dialogue content with a weighted
// heuristic. The result is a relative ranking signal in [0.1, 1.0], not a
// calibrated probability.
type ConfidenceCalculator struct {
	weights struct {
		lengthWeight   float64
		questionWeight float64
		answerWeight   float64
	}
}

// NewConfidenceCalculator creates a calculator with default weights.
func NewConfidenceCalculator() *ConfidenceCalculator {
	c := &ConfidenceCalculator{}
	c.weights.lengthWeight = 0.4   // generated-to-source length ratio
	c.weights.questionWeight = 0.3 // detected question markers
	c.weights.answerWeight = 0.3   // detected answer markers
	return c
}

var questionSignalRe = regexp.MustCompile(`(?im)(^\s*(?:q|question)\s*\d*\s*[:.)])|("question")|\?`)
var answerSignalRe = regexp.MustCompile(`(?im)(^\s*(?:a|answer)\s*\d*\s*[:.)])|("answer")`)

// Score rates generated content against its source chunk and the number of
// pairs that were requested.
func (c *ConfidenceCalculator) Score(sourceText, generated string, requestedPairs int) float64 {
	if strings.TrimSpace(generated) == "" {
		return 0.1
	}
	if requestedPairs <= 0 {
		requestedPairs = 1
	}

	// Length ratio: generated content roughly between half and three times
	// the source reads as substantive; clamp the ratio into [0, 1].
	lengthScore := 0.0
	if len(sourceText) > 0 {
		ratio := float64(len(generated)) / float64(len(sourceText))
		lengthScore = math.Min(ratio/0.5, 1.0)
	}

	questionScore := math.Min(float64(len(questionSignalRe.FindAllString(generated, -1)))/float64(requestedPairs), 1.0)
	answerScore := math.Min(float64(len(answerSignalRe.FindAllString(generated, -1)))/float64(requestedPairs), 1.0)

	score := lengthScore*c.weights.lengthWeight +
		questionScore*c.weights.questionWeight +
		answerScore*c.weights.answerWeight

	// Floor at 0.1 so a computed score is distinguishable from an unset one.
	return math.Max(0.1, math.Min(1.0, score))
}
