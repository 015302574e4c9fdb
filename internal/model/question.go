package model

import "strconv"

// QuestionKind enumerates the five supported question formats.
type QuestionKind string

const (
	KindMCQ       QuestionKind = "mcq"
	KindFillBlank QuestionKind = "fill"
	KindTrueFalse QuestionKind = "true_false"
	KindShort     QuestionKind = "short"
	KindLong      QuestionKind = "long"
)

// IDTag returns the short code used when deriving question IDs
// ("mcq_0", "tf_3", ...). IDs are unique within a session only.
func (k QuestionKind) IDTag() string {
	if k == KindTrueFalse {
		return "tf"
	}
	return string(k)
}

// Question is the uniform question record every raw generation result is
// normalized into. CorrectAnswer is always a string; true/false answers are
// stringified ("true"/"false") so scoring and display logic handle one shape.
type Question struct {
	ID            string       `json:"id"`
	Kind          QuestionKind `json:"kind"`
	Prompt        string       `json:"prompt"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
	Points        int          `json:"points,omitempty"`
}

// GenerationConfig holds the per-kind requested question counts.
// Bounds mirror what the generation backend can reliably produce.
type GenerationConfig struct {
	MCQs         int `json:"mcqs" binding:"min=0,max=20"`
	FillBlanks   int `json:"fill_blanks" binding:"min=0,max=20"`
	TrueFalse    int `json:"true_false" binding:"min=0,max=20"`
	ShortAnswers int `json:"short_answers" binding:"min=0,max=10"`
	LongAnswers  int `json:"long_answers" binding:"min=0,max=5"`
}

// Total returns the total number of requested questions.
func (c GenerationConfig) Total() int {
	return c.MCQs + c.FillBlanks + c.TrueFalse + c.ShortAnswers + c.LongAnswers
}

// Validate re-checks bounds outside of Gin binding (the multipart upload
// path carries the config as a JSON form field, bypassing binding tags).
// Returns a field → message map, empty when valid.
func (c GenerationConfig) Validate() map[string]string {
	fields := make(map[string]string)
	checkRange(fields, "mcqs", c.MCQs, 20)
	checkRange(fields, "fill_blanks", c.FillBlanks, 20)
	checkRange(fields, "true_false", c.TrueFalse, 20)
	checkRange(fields, "short_answers", c.ShortAnswers, 10)
	checkRange(fields, "long_answers", c.LongAnswers, 5)
	if len(fields) == 0 && c.Total() == 0 {
		fields["config"] = "at least one question count must be greater than zero"
	}
	return fields
}

func checkRange(fields map[string]string, name string, v, max int) {
	if v < 0 {
		fields[name] = "must not be negative"
	} else if v > max {
		fields[name] = "must be at most " + strconv.Itoa(max)
	}
}

// RawGenerationResult is the loosely-typed payload returned by the
// generation backend: up to five parallel arrays keyed by question kind.
// Absent arrays mean "none requested / none produced", never an error.
type RawGenerationResult struct {
	MCQs         []RawMCQ        `json:"mcqs,omitempty"`
	FillBlanks   []RawFillBlank  `json:"fill_blanks,omitempty"`
	TrueFalse    []RawTrueFalse  `json:"true_false,omitempty"`
	ShortAnswers []RawOpenAnswer `json:"short_answers,omitempty"`
	LongAnswers  []RawOpenAnswer `json:"long_answers,omitempty"`
}

// Count returns the number of raw entries before shape filtering.
func (r RawGenerationResult) Count() int {
	return len(r.MCQs) + len(r.FillBlanks) + len(r.TrueFalse) +
		len(r.ShortAnswers) + len(r.LongAnswers)
}

// RawMCQ is a multiple-choice entry as produced by the generation backend.
type RawMCQ struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// RawFillBlank is a fill-in-the-blank entry.
type RawFillBlank struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

// RawTrueFalse is a true/false entry. The answer arrives as a JSON boolean.
type RawTrueFalse struct {
	Question    string `json:"question"`
	Answer      bool   `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

// RawOpenAnswer covers both short- and long-answer entries, which share a
// shape: a prompt, a sample answer, and an optional point value.
type RawOpenAnswer struct {
	Question     string `json:"question"`
	SampleAnswer string `json:"sample_answer,omitempty"`
	Points       int    `json:"points,omitempty"`
}
