package models

import "time"

// Candidate belongs to exactly one Job. The top-level score/transcript
// fields are a legacy denormalized alias of Interviews[0]; call
// SyncLegacyFields after any change to interview index 0.
type Candidate struct {
	ID    string `bson:"id" json:"id"` // uuid v4, client-generated
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`

	// IsNew is a one-shot "unseen result" flag: set by a fresh interview
	// submission, cleared on first view, never set again otherwise.
	IsNew bool `bson:"is_new" json:"isNew"`

	// InProgressSessionID marks a recording session that was started but not
	// yet submitted. Cleared by the submission pipeline.
	InProgressSessionID string `bson:"in_progress_session_id,omitempty" json:"inProgressSessionId,omitempty"`

	VideoResponses []VideoResponse `bson:"video_responses" json:"videoResponses"` // legacy: mirrors Interviews[0]
	Interviews     []Interview     `bson:"interviews,omitempty" json:"interviews,omitempty"`

	Scores       map[string]float64 `bson:"scores,omitempty" json:"scores,omitempty"`        // manual, by competency id
	AIScores     map[string]float64 `bson:"ai_scores,omitempty" json:"aiScores,omitempty"`   // by competency id
	Explanations map[string]string  `bson:"explanations,omitempty" json:"explanations,omitempty"`
	Transcript   string             `bson:"transcript,omitempty" json:"transcript,omitempty"`

	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}

// VideoResponse is one recorded answer, keyed by question index within a
// submission batch: a later response for the same index replaces the earlier
// one. CloudURL is nil when the upload failed (degraded, not blocking).
type VideoResponse struct {
	QuestionIndex int       `bson:"question_index" json:"questionIndex"`
	Question      string    `bson:"question" json:"question"` // denormalized text
	CloudURL      *string   `bson:"cloud_url" json:"cloudUrl"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
	MimeType      string    `bson:"mime_type,omitempty" json:"mimeType,omitempty"`
}

// Interview is the per-candidate multi-interview container.
type Interview struct {
	ID    string `bson:"id" json:"id"`
	Title string `bson:"title" json:"title"`
	Type  string `bson:"type" json:"type"` // text|video

	Content    string `bson:"content,omitempty" json:"content,omitempty"`
	Transcript string `bson:"transcript,omitempty" json:"transcript,omitempty"`

	ManualScores map[string]float64 `bson:"manual_scores,omitempty" json:"manualScores,omitempty"`
	AIScores     map[string]float64 `bson:"ai_scores,omitempty" json:"aiScores,omitempty"`
	Explanations map[string]string  `bson:"explanations,omitempty" json:"explanations,omitempty"`

	VideoResponses []VideoResponse `bson:"video_responses,omitempty" json:"videoResponses,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// SyncLegacyFields recomputes the candidate-level aliases from Interviews[0].
// It is the single synchronization point for the denormalized legacy view;
// call sites must not duplicate this mapping.
func SyncLegacyFields(c *Candidate) {
	if c == nil || len(c.Interviews) == 0 {
		return
	}
	first := c.Interviews[0]
	c.VideoResponses = first.VideoResponses
	c.Scores = first.ManualScores
	c.AIScores = first.AIScores
	c.Explanations = first.Explanations
	c.Transcript = first.Transcript
}

// FindInterviewByType returns a pointer to the first interview of the given
// type, or nil.
func (c *Candidate) FindInterviewByType(typ string) *Interview {
	for i := range c.Interviews {
		if c.Interviews[i].Type == typ {
			return &c.Interviews[i]
		}
	}
	return nil
}
