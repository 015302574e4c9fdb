package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"google.golang.org/genai"
)

func TestValidatePayloadAccepts(t *testing.T) {
	payloads := []string{
		`{}`,
		`{"mcqs": []}`,
		`{"mcqs": [{"question": "Q?", "options": ["a", "b"], "answer": "a"}]}`,
		`{"true_false": [{"question": "Q?", "answer": true}]}`,
		`{"short_answers": [{"question": "Q?", "sample_answer": "A", "points": 3}]}`,
		`{"fill_blanks": [{"question": "____?", "answer": "word", "explanation": "why"}]}`,
	}
	for _, p := range payloads {
		assert.NoError(t, validatePayload([]byte(p)), p)
	}
}

func TestValidatePayloadRejects(t *testing.T) {
	payloads := []string{
		`not json at all`,
		// missing options + answer
		`{"mcqs": [{"question": "Q?"}]}`,
		// wrong types
		`{"mcqs": [{"question": "Q?", "options": "ab", "answer": 1}]}`,
		// answer not boolean
		`{"true_false": [{"question": "Q?", "answer": "yes"}]}`,
		// missing question
		`{"short_answers": [{"sample_answer": "A"}]}`,
	}
	for _, p := range payloads {
		err := validatePayload([]byte(p))
		require.Error(t, err, p)

		var payloadErr *InvalidPayloadError
		assert.True(t, errors.As(err, &payloadErr), p)
	}
}

func TestBuildGenaiSchema(t *testing.T) {
	schema := buildGenaiSchema(questionSetSchema)

	require.Equal(t, genai.TypeObject, schema.Type)
	require.Contains(t, schema.Properties, "mcqs")
	require.Contains(t, schema.Properties, "true_false")

	mcqs := schema.Properties["mcqs"]
	require.Equal(t, genai.TypeArray, mcqs.Type)
	require.NotNil(t, mcqs.Items)
	assert.Equal(t, genai.TypeObject, mcqs.Items.Type)
	assert.ElementsMatch(t, []string{"question", "options", "answer"}, mcqs.Items.Required)

	tf := schema.Properties["true_false"].Items
	require.NotNil(t, tf)
	assert.Equal(t, genai.TypeBoolean, tf.Properties["answer"].Type)
}
