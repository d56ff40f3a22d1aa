package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/screener/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type analyzeResult struct {
	analysis model.Analysis
	err      error
}

// analyzeCall is one blocked Analyze invocation, released by reply.
type analyzeCall struct {
	ctx   context.Context
	file  model.UploadedFile
	job   model.JobDescription
	reply chan analyzeResult
}

// gatedAnalyzer blocks every call until the test answers it.
type gatedAnalyzer struct {
	calls chan *analyzeCall
}

func newGatedAnalyzer() *gatedAnalyzer {
	return &gatedAnalyzer{calls: make(chan *analyzeCall, 16)}
}

func (g *gatedAnalyzer) Analyze(ctx context.Context, file model.UploadedFile, job model.JobDescription) (model.Analysis, error) {
	call := &analyzeCall{ctx: ctx, file: file, job: job, reply: make(chan analyzeResult, 1)}
	g.calls <- call
	select {
	case r := <-call.reply:
		return r.analysis, r.err
	case <-ctx.Done():
		return model.Analysis{}, ctx.Err()
	}
}

func (g *gatedAnalyzer) next(t *testing.T) *analyzeCall {
	t.Helper()
	select {
	case call := <-g.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("analyzer was not called")
		return nil
	}
}

type replyCall struct {
	ctx   context.Context
	req   model.ChatRequest
	reply chan chatReply
}

type chatReply struct {
	text string
	err  error
}

// gatedAssistant blocks every call until the test answers it.
type gatedAssistant struct {
	calls chan *replyCall
}

func newGatedAssistant() *gatedAssistant {
	return &gatedAssistant{calls: make(chan *replyCall, 16)}
}

func (g *gatedAssistant) Reply(ctx context.Context, req model.ChatRequest) (string, error) {
	call := &replyCall{ctx: ctx, req: req, reply: make(chan chatReply, 1)}
	g.calls <- call
	select {
	case r := <-call.reply:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *gatedAssistant) next(t *testing.T) *replyCall {
	t.Helper()
	select {
	case call := <-g.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("assistant was not called")
		return nil
	}
}

// start runs a controller for the duration of the test.
func start(t *testing.T, analyzer model.ResumeAnalyzer, assistant model.ChatAssistant, opts ...Option) *Controller {
	t.Helper()
	jobs := []model.JobDescription{
		{ID: "1", Title: "Senior Software Engineer"},
		{ID: "2", Title: "Product Manager"},
	}
	c := New(jobs, analyzer, assistant, discardLogger(), opts...)
	go c.Run(context.Background())
	t.Cleanup(c.Close)
	return c
}

func snapshot(t *testing.T, c *Controller) State {
	t.Helper()
	s, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return s
}

// waitFor polls until cond holds or fails the test.
func waitFor(t *testing.T, c *Controller, what string, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := snapshot(t, c)
		if cond(s) {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; state = %+v", what, s)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func files(names ...string) []model.UploadedFile {
	out := make([]model.UploadedFile, len(names))
	for i, n := range names {
		out[i] = model.NewMemoryFile("id-"+n, n, []byte("resume "+n))
	}
	return out
}

func mustSelectJob(t *testing.T, c *Controller, id string) {
	t.Helper()
	if err := c.SelectJob(id); err != nil {
		t.Fatalf("SelectJob(%q): %v", id, err)
	}
}

func mustUpload(t *testing.T, c *Controller, fs []model.UploadedFile) {
	t.Helper()
	if err := c.UploadFiles(fs); err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
}

func mustSelectFile(t *testing.T, c *Controller, id string) {
	t.Helper()
	if err := c.SelectFile(id); err != nil {
		t.Fatalf("SelectFile(%q): %v", id, err)
	}
}

func mustSend(t *testing.T, c *Controller, text string) string {
	t.Helper()
	id, err := c.SendChatMessage(text)
	if err != nil {
		t.Fatalf("SendChatMessage(%q): %v", text, err)
	}
	return id
}

func mustSubscribe(t *testing.T, c *Controller) (<-chan Event, func()) {
	t.Helper()
	events, cancel, err := c.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	return events, cancel
}

func fileIDs(fs []model.UploadedFile) []string {
	ids := make([]string, len(fs))
	for i, f := range fs {
		ids[i] = f.ID
	}
	return ids
}

var sarah = model.Analysis{
	Profile:        model.CandidateProfile{Name: "Sarah Anderson", YearsExperience: 7},
	SelectionScore: 85,
	RiskScore:      15,
	Feedback:       "Strong technical background.",
}
