// Package scoring extracts a numeric score from free-text analysis feedback.
package scoring

import (
	"regexp"
	"strconv"
)

// Extractor pulls a score out of feedback text. It is an interface so a
// structured-output contract can later replace the regex heuristic without
// touching the session or credit core.
type Extractor interface {
	// Extract returns the score and whether one was found.
	Extract(feedback string) (int, bool)
}

var digitRun = regexp.MustCompile(`\d+`)

// FirstDigits extracts the first run of digits in the text. This can misfire
// when an incidental number precedes the actual score ("Question 1: ..."),
// which is why the analysis prompt asks the model to lead with the score.
type FirstDigits struct{}

func (FirstDigits) Extract(feedback string) (int, bool) {
	match := digitRun.FindString(feedback)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
