// Package normalizer converts raw generation payloads (five parallel,
// optionally-absent arrays keyed by question kind) into one flat ordered
// question sequence with stable, regenerable IDs.
package normalizer

import (
	"strconv"
	"strings"

	"github.com/quizora/quizora-backend/internal/model"
)

// Normalize flattens a raw generation result into uniform questions.
//
// Kinds are concatenated in a fixed order (mcq, fill, true_false, short,
// long) and IDs are assigned as "{tag}_{index}" within each kind, so
// normalizing identical input always yields an identical sequence.
// Entries that fail the shape check are dropped rather than propagated;
// a half-formed question from the generation backend is worse than none.
// Pure function: no storage or network side effects.
func Normalize(raw model.RawGenerationResult) []model.Question {
	out := make([]model.Question, 0, raw.Count())

	idx := 0
	for _, q := range raw.MCQs {
		if !hasPrompt(q.Question) || len(q.Options) < 2 || q.Answer == "" {
			continue
		}
		out = append(out, model.Question{
			ID:            questionID(model.KindMCQ, idx),
			Kind:          model.KindMCQ,
			Prompt:        q.Question,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.Answer,
			Explanation:   q.Explanation,
		})
		idx++
	}

	idx = 0
	for _, q := range raw.FillBlanks {
		if !hasPrompt(q.Question) || q.Answer == "" {
			continue
		}
		out = append(out, model.Question{
			ID:            questionID(model.KindFillBlank, idx),
			Kind:          model.KindFillBlank,
			Prompt:        q.Question,
			CorrectAnswer: q.Answer,
			Explanation:   q.Explanation,
		})
		idx++
	}

	idx = 0
	for _, q := range raw.TrueFalse {
		if !hasPrompt(q.Question) {
			continue
		}
		out = append(out, model.Question{
			ID:            questionID(model.KindTrueFalse, idx),
			Kind:          model.KindTrueFalse,
			Prompt:        q.Question,
			CorrectAnswer: strconv.FormatBool(q.Answer),
			Explanation:   q.Explanation,
		})
		idx++
	}

	idx = 0
	for _, q := range raw.ShortAnswers {
		if !hasPrompt(q.Question) {
			continue
		}
		out = append(out, openAnswer(model.KindShort, idx, q))
		idx++
	}

	idx = 0
	for _, q := range raw.LongAnswers {
		if !hasPrompt(q.Question) {
			continue
		}
		out = append(out, openAnswer(model.KindLong, idx, q))
		idx++
	}

	return out
}

func openAnswer(kind model.QuestionKind, idx int, q model.RawOpenAnswer) model.Question {
	return model.Question{
		ID:            questionID(kind, idx),
		Kind:          kind,
		Prompt:        q.Question,
		CorrectAnswer: q.SampleAnswer,
		Points:        q.Points,
	}
}

func questionID(kind model.QuestionKind, idx int) string {
	return kind.IDTag() + "_" + strconv.Itoa(idx)
}

func hasPrompt(s string) bool {
	return strings.TrimSpace(s) != ""
}
