package models

import "time"

// Job is one hiring position: competencies, ordered interview questions,
// and the candidates being screened for it. Identity is the client-generated
// uuid in ID and never changes after creation.
type Job struct {
	ID        string `bson:"id" json:"id"` // uuid v4, client-generated
	CompanyID string `bson:"company_id" json:"companyId"`
	Title     string `bson:"title" json:"title"`

	Competencies       []Competency        `bson:"competencies" json:"competencies"`
	InterviewQuestions []InterviewQuestion `bson:"interview_questions" json:"interviewQuestions"`
	Candidates         []Candidate         `bson:"candidates" json:"candidates"`

	IsDraft bool `bson:"is_draft" json:"isDraft"`

	DateCreated  time.Time `bson:"date_created" json:"dateCreated"`
	LastModified time.Time `bson:"last_modified" json:"lastModified"`
}

// Competency is a named evaluation dimension. Score maps on Candidate and
// Interview are keyed by Competency.ID; the AI boundary speaks names (see
// the analysis provider), so translation happens in the submission pipeline.
type Competency struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Weight      float64 `bson:"weight" json:"weight"`
}

// InterviewQuestion order defines the default recording sequence.
type InterviewQuestion struct {
	ID           string `bson:"id" json:"id"`
	Question     string `bson:"question" json:"question"`
	TimeLimit    int    `bson:"time_limit" json:"timeLimit"` // seconds
	CompetencyID string `bson:"competency_id" json:"competencyId"`
	IsOptional   bool   `bson:"is_optional,omitempty" json:"isOptional,omitempty"`
}

// FindCandidate returns a pointer into Candidates or nil.
func (j *Job) FindCandidate(candidateID string) *Candidate {
	for i := range j.Candidates {
		if j.Candidates[i].ID == candidateID {
			return &j.Candidates[i]
		}
	}
	return nil
}

// CompetencyNames returns the competency names in declaration order.
func (j *Job) CompetencyNames() []string {
	names := make([]string, 0, len(j.Competencies))
	for _, c := range j.Competencies {
		names = append(names, c.Name)
	}
	return names
}

// CompetencyIDByName resolves a competency name to its id.
func (j *Job) CompetencyIDByName(name string) (string, bool) {
	for _, c := range j.Competencies {
		if c.Name == name {
			return c.ID, true
		}
	}
	return "", false
}
