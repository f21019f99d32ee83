package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/reelhire/reelhire/internal/capture"
	"github.com/reelhire/reelhire/internal/models"
	"github.com/reelhire/reelhire/internal/storage"
	"github.com/reelhire/reelhire/internal/utils"
)

// State is the per-question lifecycle tag.
type State int

const (
	// Pending: not yet reached, not selectable.
	Pending State = iota
	// Available: the lowest unanswered index, selectable to become Current.
	Available
	// Current: the index the candidate is on. Exactly one index is Current.
	Current
	// Recording: a capture session is open on the Current index.
	Recording
	// Completed: a VideoResponse exists for this index (possibly a redo).
	Completed
	// Skipped: declined; only optional questions get here, and there is no
	// way back (a deliberate simplification, not an oversight).
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Available:
		return "available"
	case Current:
		return "current"
	case Recording:
		return "recording"
	case Completed:
		return "completed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Config wires one candidate's recording run.
type Config struct {
	JobID         string
	CandidateID   string
	CandidateName string
	Questions     []models.InterviewQuestion

	Device   capture.Device
	Uploader storage.Uploader
	Logger   *logrus.Logger

	// CaptureOptions bounds bitrate/resolution; zero value takes the default
	// compression policy.
	CaptureOptions capture.Options
	// MimePreference overrides the ordered container/codec fallback list.
	MimePreference []string

	// TickInterval is the countdown resolution. Production leaves it at one
	// second; tests shrink it.
	TickInterval time.Duration
}

type run struct {
	clip       capture.Clip
	mimeType   string
	remaining  int
	stopTimer  chan struct{}
	stopOnce   sync.Once
	finalizing bool
}

// Session drives a candidate through the ordered question list, one recording
// per question, enforcing time limits and supporting redo and skip without
// losing completed answers.
//
// All methods are safe for concurrent use; the countdown goroutine is the
// only internal caller.
type Session struct {
	ID  string
	cfg Config
	log *logrus.Entry

	mu        sync.Mutex
	terminal  []State // Completed/Skipped only; everything else derived
	responses map[int]models.VideoResponse
	current   int
	returnTo  int // index the user redo'd from; -1 outside a redo
	redoOf    int // the index being redone; -1 outside a redo
	recording *run
	closed    bool
}

func New(cfg Config) (*Session, error) {
	const op = "Session.New"

	if cfg.JobID == "" || cfg.CandidateID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job and candidate ids are required", nil)
	}
	if len(cfg.Questions) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one question is required", nil)
	}
	if cfg.Device == nil || cfg.Uploader == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "capture device and uploader are required", nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.CaptureOptions == (capture.Options{}) {
		cfg.CaptureOptions = capture.DefaultOptions()
	}

	id := uuid.NewString()
	return &Session{
		ID:  id,
		cfg: cfg,
		log: cfg.Logger.WithFields(logrus.Fields{
			"session_id":   id,
			"job_id":       cfg.JobID,
			"candidate_id": cfg.CandidateID,
		}),
		terminal:  make([]State, len(cfg.Questions)),
		responses: map[int]models.VideoResponse{},
		current:   0,
		returnTo:  -1,
		redoOf:    -1,
	}, nil
}

// StateOf derives the lifecycle tag for one index.
func (s *Session) StateOf(index int) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateOfLocked(index)
}

func (s *Session) stateOfLocked(index int) State {
	if index < 0 || index >= len(s.cfg.Questions) {
		return Pending
	}
	if index == s.current {
		if s.recording != nil {
			return Recording
		}
		if s.terminal[index] == 0 {
			return Current
		}
		// current parked on a completed index (viewing, or pre-redo)
		return s.terminal[index]
	}
	if s.terminal[index] != 0 {
		return s.terminal[index]
	}
	if index == s.firstOpenLocked() {
		return Available
	}
	return Pending
}

// Current returns the index the session is on.
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Remaining returns the countdown value of the active recording, in ticks.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording == nil {
		return 0
	}
	return s.recording.remaining
}

// Select navigates to an Available or Completed index. Navigation is blocked
// entirely while a recording is active.
func (s *Session) Select(index int) error {
	const op = "Session.Select"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recording != nil {
		return utils.E(utils.CodeInvalidArgument, op, "navigation is disabled while recording", nil)
	}
	if index < 0 || index >= len(s.cfg.Questions) {
		return utils.E(utils.CodeInvalidArgument, op, "question index out of range", nil)
	}

	switch st := s.stateOfLocked(index); st {
	case Available, Completed, Current:
		if s.redoOf >= 0 && index != s.redoOf {
			// navigating away abandons the redo
			s.redoOf = -1
			s.returnTo = -1
		}
		s.current = index
		return nil
	default:
		return utils.E(utils.CodeInvalidArgument, op, "question is not selectable: "+st.String(), nil)
	}
}

// StartRecording opens a capture session on the Current index and starts the
// countdown at the question's time limit. Capture failure (permissions,
// hardware) is fatal to the start and surfaced to the user.
func (s *Session) StartRecording(ctx context.Context) error {
	const op = "Session.StartRecording"

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return utils.E(utils.CodeInvalidArgument, op, "session is closed", nil)
	}
	if s.recording != nil {
		s.mu.Unlock()
		return utils.E(utils.CodeInvalidArgument, op, "a recording is already in progress", nil)
	}
	if s.terminal[s.current] == Skipped {
		s.mu.Unlock()
		return utils.E(utils.CodeInvalidArgument, op, "question was skipped", nil)
	}
	if s.terminal[s.current] == Completed && s.current != s.redoOf {
		s.mu.Unlock()
		return utils.E(utils.CodeInvalidArgument, op, "question already answered; use Redo to replace it", nil)
	}

	index := s.current
	question := s.cfg.Questions[index]
	opts := s.cfg.CaptureOptions
	s.mu.Unlock()

	mimeType, ok := capture.PickMimeType(s.cfg.Device, s.cfg.MimePreference)
	if !ok {
		return utils.E(utils.CodeCapture, op, "no supported recording format", nil)
	}
	opts.MimeType = mimeType

	clip, err := s.cfg.Device.Start(ctx, opts)
	if err != nil {
		return utils.E(utils.CodeCapture, op, "failed to open camera/microphone", err)
	}

	r := &run{
		clip:      clip,
		mimeType:  mimeType,
		remaining: question.TimeLimit,
		stopTimer: make(chan struct{}),
	}

	s.mu.Lock()
	if s.recording != nil || s.current != index || s.closed {
		// lost a race with another start or a navigation; release the device
		s.mu.Unlock()
		_, _ = clip.Stop(context.Background())
		return utils.E(utils.CodeInvalidArgument, op, "session changed while opening capture", nil)
	}
	s.recording = r
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"question_index": index,
		"time_limit":     question.TimeLimit,
		"mime_type":      mimeType,
	}).Info("recording started")

	go s.countdown(r)
	return nil
}

// countdown decrements once per tick and finalizes the recording when it
// hits zero. The stopTimer channel cancels it deterministically, so a stale
// tick can never touch a later recording.
func (s *Session) countdown(r *run) {
	t := time.NewTicker(s.cfg.TickInterval)
	defer t.Stop()

	for {
		select {
		case <-r.stopTimer:
			return
		case <-t.C:
			s.mu.Lock()
			if s.recording != r || r.finalizing {
				s.mu.Unlock()
				return
			}
			r.remaining--
			expired := r.remaining <= 0
			s.mu.Unlock()

			if expired {
				// timeout terminates capture identically to a manual stop
				if _, err := s.StopRecording(context.Background()); err != nil {
					s.log.WithError(err).Warn("timeout stop failed")
				}
				return
			}
		}
	}
}

// StopRecording finalizes the active capture, uploads the artifact and
// replaces the VideoResponse for the Current index. Upload failure degrades
// the response (nil URL) but never blocks the session. After a normal
// completion the session advances to the lowest unanswered question; after a
// redo it returns to the index the user came from.
func (s *Session) StopRecording(ctx context.Context) (models.VideoResponse, error) {
	const op = "Session.StopRecording"

	s.mu.Lock()
	r := s.recording
	if r == nil || r.finalizing {
		s.mu.Unlock()
		return models.VideoResponse{}, utils.E(utils.CodeInvalidArgument, op, "no recording in progress", nil)
	}
	r.finalizing = true
	r.stopOnce.Do(func() { close(r.stopTimer) })
	index := s.current
	question := s.cfg.Questions[index]
	s.mu.Unlock()

	artifact, err := r.clip.Stop(ctx)
	if err != nil {
		s.mu.Lock()
		s.recording = nil
		s.mu.Unlock()
		return models.VideoResponse{}, utils.E(utils.CodeCapture, op, "failed to finalize capture", err)
	}

	vr := models.VideoResponse{
		QuestionIndex: index,
		Question:      question.Question,
		Timestamp:     time.Now().UTC(),
		MimeType:      artifact.MimeType,
	}
	if vr.MimeType == "" {
		vr.MimeType = r.mimeType
	}

	objectName := storage.RecordingObjectName(s.cfg.JobID, s.cfg.CandidateID, index, vr.MimeType)
	url, uerr := s.cfg.Uploader.Upload(ctx, objectName, vr.MimeType, artifact.Data)
	if uerr != nil {
		// degraded, surfaced via the nil URL, never hidden and never fatal
		s.log.WithError(uerr).WithField("question_index", index).Warn("artifact upload failed")
	} else {
		vr.CloudURL = &url
	}

	s.mu.Lock()
	s.responses[index] = vr
	s.terminal[index] = Completed
	s.recording = nil

	if s.returnTo >= 0 {
		// redo must not disrupt forward progress
		s.current = s.returnTo
		s.returnTo = -1
		s.redoOf = -1
	} else if next := s.firstOpenLocked(); next >= 0 {
		s.current = next
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"question_index": index,
		"uploaded":       vr.CloudURL != nil,
	}).Info("recording completed")

	return vr, nil
}

// Skip marks the Current question as Skipped. Only optional questions may be
// skipped, and a skip is not revocable.
func (s *Session) Skip() error {
	const op = "Session.Skip"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recording != nil {
		return utils.E(utils.CodeInvalidArgument, op, "cannot skip while recording", nil)
	}
	if s.terminal[s.current] != 0 {
		return utils.E(utils.CodeInvalidArgument, op, "question already answered or skipped", nil)
	}
	if !s.cfg.Questions[s.current].IsOptional {
		return utils.E(utils.CodeInvalidArgument, op, "question is not optional", nil)
	}

	s.terminal[s.current] = Skipped
	if next := s.firstOpenLocked(); next >= 0 {
		s.current = next
	}
	return nil
}

// Redo re-opens an already-Completed index for re-recording, remembering
// where the user came from so completion returns them there.
func (s *Session) Redo(index int) error {
	const op = "Session.Redo"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recording != nil {
		return utils.E(utils.CodeInvalidArgument, op, "cannot redo while recording", nil)
	}
	if index < 0 || index >= len(s.cfg.Questions) || s.terminal[index] != Completed {
		return utils.E(utils.CodeInvalidArgument, op, "only completed questions can be redone", nil)
	}

	s.returnTo = s.current
	s.redoOf = index
	s.current = index
	return nil
}

// AllDone reports the completion gate: every index Completed or Skipped.
// Only then is the finish action enabled.
func (s *Session) AllDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.terminal {
		if st != Completed && st != Skipped {
			return false
		}
	}
	return true
}

// Responses returns the recorded answers ordered by question index, exactly
// one per completed index.
func (s *Session) Responses() []models.VideoResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.VideoResponse, 0, len(s.responses))
	for _, vr := range s.responses {
		out = append(out, vr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionIndex < out[j].QuestionIndex })
	return out
}

// Close releases the capture device deterministically. An active recording
// is discarded, not submitted.
func (s *Session) Close() {
	s.mu.Lock()
	r := s.recording
	s.recording = nil
	s.closed = true
	s.mu.Unlock()

	if r != nil {
		r.stopOnce.Do(func() { close(r.stopTimer) })
		if _, err := r.clip.Stop(context.Background()); err != nil {
			s.log.WithError(err).Warn("failed to release capture device")
		}
	}
}

func (s *Session) firstOpenLocked() int {
	for i, st := range s.terminal {
		if st != Completed && st != Skipped {
			return i
		}
	}
	return -1
}
