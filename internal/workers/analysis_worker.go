package workers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/reelhire/reelhire/internal/providers/stt"
	"github.com/reelhire/reelhire/internal/submit"
)

// AnalysisQueue enqueues scoring work for the worker pool. It satisfies
// submit.AnalysisEnqueuer.
type AnalysisQueue struct {
	Redis  *redis.Client
	Stream string
}

func (q *AnalysisQueue) EnqueueAnalysis(ctx context.Context, jobID, candidateID string) error {
	stream := q.Stream
	if stream == "" {
		stream = "analysis:stream"
	}
	return q.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"job_id":       jobID,
			"candidate_id": candidateID,
			"ts_unix":      strconv.FormatInt(time.Now().UTC().Unix(), 10),
		},
	}).Err()
}

// AnalysisWorkerPool drains the analysis stream: transcribe the candidate's
// recordings when no transcript exists yet, run the scoring provider, and
// patch the result back through the reconcile store. At-least-once delivery
// is fine because re-applying the same scores is idempotent.
type AnalysisWorkerPool struct {
	Redis      *redis.Client
	Pipeline   *submit.Pipeline
	STT        stt.Provider // optional
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
	Language       string
}

func (p *AnalysisWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Pipeline == nil {
		return errors.New("AnalysisWorkerPool missing dependency: Redis/Pipeline must be set")
	}
	if p.Stream == "" {
		p.Stream = "analysis:stream"
	}
	if p.Group == "" {
		p.Group = "analysis-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *AnalysisWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *AnalysisWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	jobID := getStr("job_id")
	candidateID := getStr("candidate_id")
	if jobID == "" || candidateID == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":     msg.ID,
		"job_id":       jobID,
		"candidate_id": candidateID,
	})

	statusCh := "jobs:analysis:" + jobID

	_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"processing","candidate_id":"`+candidateID+`"}`).Err()

	if err := p.ensureTranscript(ctx, jobID, candidateID, log); err != nil {
		log.WithError(err).Warn("transcription failed, scoring on question coverage")
	}

	if err := p.Pipeline.Analyze(ctx, jobID, candidateID); err != nil {
		// non-fatal by contract: the submission already persisted, prior
		// scores stay intact
		log.WithError(err).Error("analysis failed")
		_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"failed","candidate_id":"`+candidateID+`"}`).Err()
		return
	}

	_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"done","candidate_id":"`+candidateID+`"}`).Err()
}

// ensureTranscript fetches each uploaded recording and transcribes it,
// joining the answers into one transcript on the candidate. Responses with
// no durable URL (degraded uploads) are skipped.
func (p *AnalysisWorkerPool) ensureTranscript(ctx context.Context, jobID, candidateID string, log *logrus.Entry) error {
	if p.STT == nil {
		return nil
	}

	job, ok := p.Pipeline.Store.FindJob(jobID)
	if !ok {
		return errors.New("job not found")
	}
	cand := job.FindCandidate(candidateID)
	if cand == nil {
		return errors.New("candidate not found")
	}
	if cand.Transcript != "" || len(cand.VideoResponses) == 0 {
		return nil
	}

	var b strings.Builder
	transcribed := 0
	for _, vr := range cand.VideoResponses {
		if vr.CloudURL == nil {
			continue
		}

		media, err := fetchMedia(ctx, *vr.CloudURL)
		if err != nil {
			log.WithError(err).WithField("question_index", vr.QuestionIndex).Warn("failed to fetch recording")
			continue
		}

		text, conf, err := p.STT.Transcribe(ctx, media, p.Language)
		if err != nil {
			log.WithError(err).WithField("question_index", vr.QuestionIndex).Warn("stt failed")
			continue
		}
		log.WithFields(logrus.Fields{"question_index": vr.QuestionIndex, "confidence": conf}).Debug("transcribed answer")

		b.WriteString("Q: " + vr.Question + "\n")
		b.WriteString("A: " + text + "\n\n")
		transcribed++
	}

	if transcribed == 0 {
		return errors.New("no responses could be transcribed")
	}

	cand.Transcript = strings.TrimSpace(b.String())
	if _, err := p.Pipeline.Store.UpdateJob(ctx, job); err != nil {
		return err
	}
	return nil
}

func fetchMedia(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	const maxBytes = 50 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty media")
	}
	return body, nil
}
