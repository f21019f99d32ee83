package submit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/reelhire/reelhire/internal/models"
	"github.com/reelhire/reelhire/internal/providers/analysis"
	"github.com/reelhire/reelhire/internal/reconcile"
	"github.com/reelhire/reelhire/internal/utils"
)

// CandidateRef identifies the candidate a session recorded for. Name/email
// feed the self-healing path when the candidate row does not exist yet.
type CandidateRef struct {
	ID    string
	Name  string
	Email string
}

// AnalysisEnqueuer hands the scoring work to a queue (the redis-stream worker
// pool) instead of running it inline.
type AnalysisEnqueuer interface {
	EnqueueAnalysis(ctx context.Context, jobID, candidateID string) error
}

// Pipeline converts a finished recording session into durable candidate
// state, then triggers best-effort AI scoring. The interview is considered
// submitted the moment persistence succeeds; analysis can fail freely after
// that.
type Pipeline struct {
	Store    *reconcile.Store
	Analyzer analysis.Provider // optional; used when Queue is nil
	Queue    AnalysisEnqueuer  // optional; preferred over Analyzer
	Logger   *logrus.Logger

	// AnalysisTimeout bounds the detached inline scoring call.
	AnalysisTimeout time.Duration
}

// Submit persists the session's recordings onto the candidate and kicks off
// scoring. It tolerates the candidate row being stale or missing: one
// reload-and-retry, then synthesis of a fresh candidate record, so a
// completed interview is never discarded just because the expected row did
// not exist yet.
func (p *Pipeline) Submit(ctx context.Context, jobID string, ref CandidateRef, responses []models.VideoResponse) (reconcile.Status, error) {
	const op = "Pipeline.Submit"

	log := p.logger().WithFields(logrus.Fields{"job_id": jobID, "candidate_id": ref.ID})

	if jobID == "" {
		return p.Store.Status(), utils.E(utils.CodeInvalidArgument, op, "job id is required", nil)
	}
	if len(responses) == 0 {
		return p.Store.Status(), utils.E(utils.CodeInvalidArgument, op, "no recordings to submit", nil)
	}

	responses = DedupeResponses(responses)

	job, cand, synthesized, err := p.resolveCandidate(ctx, jobID, ref)
	if err != nil {
		return p.Store.Status(), err
	}
	if synthesized {
		log.Info("candidate row missing after reload, synthesizing")
	}

	// the session can only produce valid indexes, but Submit is a public
	// boundary and a bad index would corrupt the durable collection
	for _, vr := range responses {
		if vr.QuestionIndex < 0 || vr.QuestionIndex >= len(job.InterviewQuestions) {
			return p.Store.Status(), utils.E(utils.CodeInvalidArgument, op,
				fmt.Sprintf("question index %d out of range for %d questions", vr.QuestionIndex, len(job.InterviewQuestions)), nil)
		}
	}

	now := time.Now().UTC()
	applyResponses(cand, responses, now)

	status, err := p.Store.UpdateJob(ctx, job)
	if err != nil {
		// in-memory session state is untouched; the caller can retry without
		// re-recording
		return status, utils.E(utils.CodePersistence, op, "failed to persist submission", err)
	}

	// secondary explicit push; Save already wrote through, so this only
	// matters when that write degraded
	if status != reconcile.StatusSynced {
		if serr := p.Store.SyncToServer(ctx); serr != nil {
			log.WithError(serr).Warn("post-submit sync failed, submission remains local")
		} else {
			status = reconcile.StatusSynced
		}
	}

	p.triggerAnalysis(jobID, cand.ID)
	return status, nil
}

// resolveCandidate looks the candidate up in the current snapshot, retries
// once after a reload, then falls back to synthesizing a new record.
func (p *Pipeline) resolveCandidate(ctx context.Context, jobID string, ref CandidateRef) (models.Job, *models.Candidate, bool, error) {
	const op = "Pipeline.Submit"

	job, ok := p.Store.FindJob(jobID)
	if ok {
		if cand := job.FindCandidate(ref.ID); cand != nil {
			return job, cand, false, nil
		}
	}

	// the row may have been created by a concurrent flow after this session
	// started (generic interview links create candidates at submission time)
	if err := p.Store.Reload(ctx); err != nil {
		p.logger().WithError(err).Warn("reload before retry failed, using current snapshot")
	}

	job, ok = p.Store.FindJob(jobID)
	if !ok {
		return models.Job{}, nil, false, utils.E(utils.CodeNotFound, op, "job not found", nil)
	}
	if cand := job.FindCandidate(ref.ID); cand != nil {
		return job, cand, false, nil
	}

	fresh := models.Candidate{
		ID:    ref.ID,
		Name:  ref.Name,
		Email: ref.Email,
	}
	if fresh.ID == "" {
		fresh.ID = uuid.NewString()
	}
	job.Candidates = append(job.Candidates, fresh)
	return job, &job.Candidates[len(job.Candidates)-1], true, nil
}

// applyResponses overwrites the candidate's recordings: a new submission
// always supersedes all previous ones. The matching video interview entry is
// updated (or created) and the legacy aliases are recomputed.
func applyResponses(cand *models.Candidate, responses []models.VideoResponse, now time.Time) {
	iv := cand.FindInterviewByType("video")
	if iv == nil {
		cand.Interviews = append(cand.Interviews, models.Interview{
			ID:        uuid.NewString(),
			Title:     "Video interview",
			Type:      "video",
			CreatedAt: now,
		})
		iv = &cand.Interviews[len(cand.Interviews)-1]
	}
	iv.VideoResponses = responses

	cand.VideoResponses = responses
	cand.IsNew = true
	cand.CompletedAt = &now
	cand.InProgressSessionID = ""
	if cand.Interviews[0].Type == "video" {
		// interview 0 changed, recompute the legacy aliases
		models.SyncLegacyFields(cand)
	}
}

func (p *Pipeline) triggerAnalysis(jobID, candidateID string) {
	log := p.logger().WithFields(logrus.Fields{"job_id": jobID, "candidate_id": candidateID})

	if p.Queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.Queue.EnqueueAnalysis(ctx, jobID, candidateID); err != nil {
			log.WithError(err).Warn("failed to enqueue analysis")
		}
		return
	}
	if p.Analyzer == nil {
		return
	}

	timeout := p.AnalysisTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := p.Analyze(ctx, jobID, candidateID); err != nil {
			log.WithError(err).Warn("analysis failed, scores left untouched")
		}
	}()
}

// Analyze runs the scoring call for one candidate and maps the name-keyed
// result back into the id-keyed score maps. Exported for the worker pool,
// which runs the same step off a queue.
func (p *Pipeline) Analyze(ctx context.Context, jobID, candidateID string) error {
	const op = "Pipeline.Analyze"

	if p.Analyzer == nil {
		return utils.E(utils.CodeInternal, op, "no analysis provider configured", nil)
	}

	job, ok := p.Store.FindJob(jobID)
	if !ok {
		return utils.E(utils.CodeNotFound, op, "job not found", nil)
	}
	cand := job.FindCandidate(candidateID)
	if cand == nil {
		return utils.E(utils.CodeNotFound, op, "candidate not found", nil)
	}

	req := analysis.Request{
		Competencies: job.CompetencyNames(),
		Transcript:   cand.Transcript,
	}
	if req.Transcript == "" {
		req.VideoResponses = cand.VideoResponses
	}

	res, err := p.Analyzer.Analyze(ctx, req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "analysis call failed", err)
	}

	ApplyAnalysis(&job, candidateID, res, p.logger())

	if _, err := p.Store.UpdateJob(ctx, job); err != nil {
		return utils.E(utils.CodePersistence, op, "failed to persist analysis", err)
	}
	return nil
}

// ApplyAnalysis patches a name-keyed analysis result into the candidate's
// id-keyed maps and the matching video interview entry. Unknown competency
// names are logged and dropped; existing scores for competencies the result
// does not mention are left intact.
func ApplyAnalysis(job *models.Job, candidateID string, res analysis.Result, log *logrus.Logger) {
	cand := job.FindCandidate(candidateID)
	if cand == nil {
		return
	}

	if cand.AIScores == nil {
		cand.AIScores = map[string]float64{}
	}
	if cand.Explanations == nil {
		cand.Explanations = map[string]string{}
	}

	for name, score := range res.Scores {
		id, ok := job.CompetencyIDByName(name)
		if !ok {
			if log != nil {
				log.WithField("competency", name).Warn("analysis returned unknown competency")
			}
			continue
		}
		cand.AIScores[id] = score
		if expl, ok := res.Explanations[name]; ok {
			cand.Explanations[id] = expl
		}
	}
	if res.Transcript != "" {
		cand.Transcript = res.Transcript
	}

	if iv := cand.FindInterviewByType("video"); iv != nil {
		iv.AIScores = cand.AIScores
		iv.Explanations = cand.Explanations
		iv.Transcript = cand.Transcript
		if cand.Interviews[0].Type == "video" {
			models.SyncLegacyFields(cand)
		}
	}
}

// DedupeResponses keeps the most recent entry per question index and orders
// the result by index.
func DedupeResponses(in []models.VideoResponse) []models.VideoResponse {
	byIndex := make(map[int]models.VideoResponse, len(in))
	for _, vr := range in {
		byIndex[vr.QuestionIndex] = vr // later entries win
	}
	out := make([]models.VideoResponse, 0, len(byIndex))
	for _, vr := range byIndex {
		out = append(out, vr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionIndex < out[j].QuestionIndex })
	return out
}

func (p *Pipeline) logger() *logrus.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return logrus.StandardLogger()
}
