package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelhire/reelhire/internal/models"
)

func TestParseScoringJSONPlain(t *testing.T) {
	res, err := parseScoringJSON(`{"scores":{"Communication":4.5},"explanations":{"Communication":"clear"}}`)
	require.NoError(t, err)
	assert.Equal(t, 4.5, res.Scores["Communication"])
	assert.Equal(t, "clear", res.Explanations["Communication"])
}

func TestParseScoringJSONCodeFence(t *testing.T) {
	text := "Here is the assessment:\n```json\n{\"scores\":{\"Problem Solving\":3}}\n```\nLet me know if you need more."
	res, err := parseScoringJSON(text)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Scores["Problem Solving"])
}

func TestParseScoringJSONNoObject(t *testing.T) {
	_, err := parseScoringJSON("I cannot score this interview.")
	require.Error(t, err)
}

func TestParseScoringJSONEmptyScores(t *testing.T) {
	_, err := parseScoringJSON(`{"scores":{},"explanations":{}}`)
	require.Error(t, err)
}

func TestBuildPromptUsesTranscriptWhenPresent(t *testing.T) {
	p := buildPrompt(Request{
		Competencies: []string{"Communication"},
		Transcript:   "Q: Tell us about yourself\nA: I build services.",
	})
	assert.Contains(t, p, "Communication")
	assert.Contains(t, p, "I build services.")
	assert.NotContains(t, p, "no transcript available")
}

func TestBuildPromptFallsBackToQuestions(t *testing.T) {
	p := buildPrompt(Request{
		Competencies: []string{"Communication"},
		VideoResponses: []models.VideoResponse{
			{QuestionIndex: 0, Question: "Describe a hard bug"},
		},
	})
	assert.Contains(t, p, "no transcript available")
	assert.Contains(t, p, "Q1: Describe a hard bug")
}
