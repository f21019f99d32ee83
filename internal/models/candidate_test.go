package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncLegacyFields(t *testing.T) {
	c := &Candidate{
		ID: "c1",
		Interviews: []Interview{{
			ID:   "iv1",
			Type: "video",
			VideoResponses: []VideoResponse{
				{QuestionIndex: 0, Question: "Tell us about yourself"},
			},
			AIScores:     map[string]float64{"comp-1": 4},
			Explanations: map[string]string{"comp-1": "good"},
			Transcript:   "Q: ...\nA: ...",
		}},
	}

	SyncLegacyFields(c)

	require.Len(t, c.VideoResponses, 1)
	assert.Equal(t, 4.0, c.AIScores["comp-1"])
	assert.Equal(t, "good", c.Explanations["comp-1"])
	assert.Equal(t, "Q: ...\nA: ...", c.Transcript)
}

func TestSyncLegacyFieldsNoInterviews(t *testing.T) {
	c := &Candidate{ID: "c1", Transcript: "kept"}
	SyncLegacyFields(c)
	assert.Equal(t, "kept", c.Transcript)
	SyncLegacyFields(nil) // must not panic
}

func TestFindInterviewByType(t *testing.T) {
	c := &Candidate{Interviews: []Interview{
		{ID: "a", Type: "text"},
		{ID: "b", Type: "video"},
	}}

	iv := c.FindInterviewByType("video")
	require.NotNil(t, iv)
	assert.Equal(t, "b", iv.ID)

	// the returned pointer mutates the candidate
	iv.Transcript = "updated"
	assert.Equal(t, "updated", c.Interviews[1].Transcript)

	assert.Nil(t, c.FindInterviewByType("phone"))
}

func TestJobCompetencyLookups(t *testing.T) {
	j := Job{Competencies: []Competency{
		{ID: "comp-1", Name: "Communication"},
		{ID: "comp-2", Name: "Problem Solving"},
	}}

	assert.Equal(t, []string{"Communication", "Problem Solving"}, j.CompetencyNames())

	id, ok := j.CompetencyIDByName("Problem Solving")
	require.True(t, ok)
	assert.Equal(t, "comp-2", id)

	_, ok = j.CompetencyIDByName("Leadership")
	assert.False(t, ok)
}

func TestFindCandidateReturnsPointer(t *testing.T) {
	j := Job{Candidates: []Candidate{{ID: "c1"}, {ID: "c2"}}}

	c := j.FindCandidate("c2")
	require.NotNil(t, c)
	c.Name = "renamed"
	assert.Equal(t, "renamed", j.Candidates[1].Name)

	assert.Nil(t, j.FindCandidate("ghost"))
}
