package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Analyze(ctx context.Context, req Request) (Result, error) {
	if len(req.Competencies) == 0 {
		return Result{}, errors.New("analysis: no competencies to score")
	}
	if req.Transcript == "" && len(req.VideoResponses) == 0 {
		return Result{}, errors.New("analysis: transcript or video responses required")
	}

	prompt := buildPrompt(req)

	text, err := v.generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}

	res, err := parseScoringJSON(text)
	if err != nil {
		return Result{}, err
	}
	if res.Transcript == "" {
		res.Transcript = req.Transcript
	}
	return res, nil
}

func (v *VertexGemini) generate(ctx context.Context, prompt string) (string, error) {
	it := v.model.GenerateContentStream(ctx, vertexgenai.Text(prompt))

	var full strings.Builder
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", err
		}

		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if t, ok := part.(vertexgenai.Text); ok {
					full.WriteString(string(t))
				}
			}
		}
	}
	return full.String(), nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an interview assessor. Score the candidate on each competency from 0 to 10 and explain each score in one or two sentences.\n\n")
	b.WriteString("Competencies:\n")
	for _, c := range req.Competencies {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	if req.Transcript != "" {
		b.WriteString("\nInterview transcript:\n")
		b.WriteString(req.Transcript)
		b.WriteString("\n")
	} else {
		b.WriteString("\nThe candidate answered the following questions (no transcript available; score on question coverage):\n")
		for _, vr := range req.VideoResponses {
			fmt.Fprintf(&b, "Q%d: %s\n", vr.QuestionIndex+1, vr.Question)
		}
	}

	b.WriteString("\nRespond with JSON only, shaped exactly as ")
	b.WriteString(`{"scores":{"<competency name>":<number>},"explanations":{"<competency name>":"<string>"}}`)
	b.WriteString(" using the competency names verbatim as keys.")
	return b.String()
}

// parseScoringJSON tolerates the model wrapping its JSON in prose or a code
// fence; everything outside the outermost braces is discarded.
func parseScoringJSON(text string) (Result, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Result{}, fmt.Errorf("analysis: no JSON object in model response")
	}

	var res Result
	if err := json.Unmarshal([]byte(text[start:end+1]), &res); err != nil {
		return Result{}, fmt.Errorf("analysis: decode model response: %w", err)
	}
	if len(res.Scores) == 0 {
		return Result{}, errors.New("analysis: model response carried no scores")
	}
	return res, nil
}
