package models

// Draft is a Job under construction. Drafts live in their own collection,
// keyed by the same id space as jobs, and are promoted (removed from drafts,
// inserted into the job collection) on finalization.
type Draft struct {
	Job `bson:",inline"`

	// CurrentStep is the wizard progress marker for resuming an unfinished
	// draft.
	CurrentStep int `bson:"current_step" json:"currentStep"`
}
