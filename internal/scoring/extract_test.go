package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstDigitsExtract(t *testing.T) {
	tests := []struct {
		name      string
		feedback  string
		want      int
		wantFound bool
	}{
		{"leading score", "3 out of 4 correct. Good work.", 3, true},
		{"score after words", "You scored 7 points overall.", 7, true},
		{"zero", "0 correct answers this time.", 0, true},
		{"multi digit", "12/15 answered correctly.", 12, true},
		{"no digits", "Great effort, keep practicing!", 0, false},
		{"empty", "", 0, false},
		// Known limitation: an incidental number before the score wins.
		// The analysis prompt asks the model to lead with the score.
		{"incidental number first", "Question 1 was answered well; total 4 correct.", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := FirstDigits{}.Extract(tt.feedback)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}
