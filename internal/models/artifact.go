package models

import (
	"time"

	"gorm.io/datatypes"
)

// RecordingArtifact is the durable-storage metadata row written for every
// uploaded recording. The video bytes themselves live in object storage;
// the job collection only ever carries the public URL.
type RecordingArtifact struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	JobID       string `gorm:"column:job_id;type:uuid;index" json:"job_id"`
	CandidateID string `gorm:"column:candidate_id;type:uuid;index" json:"candidate_id"`

	QuestionIndex int    `gorm:"column:question_index;type:integer" json:"question_index"`
	ObjectPath    string `gorm:"column:object_path;type:text" json:"object_path"`
	PublicURL     string `gorm:"column:public_url;type:text" json:"public_url"`

	SizeBytes int64  `gorm:"column:size_bytes;type:bigint" json:"size_bytes"`
	MimeType  string `gorm:"column:mime_type;type:text" json:"mime_type"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	UploadedAt time.Time `gorm:"column:uploaded_at;type:timestamptz" json:"uploaded_at"`
}

func (RecordingArtifact) TableName() string { return "recording_artifacts" }
