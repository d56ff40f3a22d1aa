// Package session owns the recruiter's in-memory session: job selection,
// uploaded resumes, the selected resume's analysis and the chat transcript.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/screener/internal/model"
)

// command runs on the owner goroutine.
type command func()

// Controller serializes every mutation through one goroutine started by Run.
// Public methods block until their synchronous effects are applied, so a
// Snapshot taken afterwards observes them. Analyzer and assistant calls run
// on their own goroutines and report back tagged with a request id; results
// whose id is no longer current are dropped.
type Controller struct {
	analyzer  model.ResumeAnalyzer
	assistant model.ChatAssistant
	jobs      []model.JobDescription
	logger    *slog.Logger

	newID          func() string
	now            func() time.Time
	requestTimeout time.Duration

	cmds      chan command
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	started   atomic.Bool

	rootCtx    context.Context
	rootCancel context.CancelFunc

	// Owned by the Run goroutine.
	state          State
	analysisCancel context.CancelFunc
	chatCancels    map[string]context.CancelFunc
	subs           map[int]chan Event
	nextSub        int
}

// Option customises a Controller.
type Option func(*Controller)

// WithRequestTimeout bounds each analyzer and assistant call. Zero means no limit.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) { c.requestTimeout = d }
}

// WithIDGenerator replaces the UUID generator used for request ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// WithClock replaces the clock used to timestamp chat messages.
func WithClock(fn func() time.Time) Option {
	return func(c *Controller) { c.now = fn }
}

// New creates a controller over the given catalog. Run must be started
// before any other method is called.
func New(jobs []model.JobDescription, analyzer model.ResumeAnalyzer, assistant model.ChatAssistant, logger *slog.Logger, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		analyzer:    analyzer,
		assistant:   assistant,
		jobs:        slices.Clone(jobs),
		logger:      logger,
		newID:       uuid.NewString,
		now:         time.Now,
		cmds:        make(chan command),
		closing:     make(chan struct{}),
		done:        make(chan struct{}),
		rootCtx:     ctx,
		rootCancel:  cancel,
		chatCancels: make(map[string]context.CancelFunc),
		subs:        make(map[int]chan Event),
		state: State{
			Analysis:   AnalysisState{Status: StatusNone},
			FileErrors: make(map[string]error),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run applies commands until ctx is cancelled or Close is called.
func (c *Controller) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("session: Run called twice")
	}
	defer close(c.done)
	defer c.shutdown()

	c.logger.Debug("session started", "jobs", len(c.jobs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.closing:
			return nil
		case cmd := <-c.cmds:
			cmd()
		}
	}
}

// Close cancels every pending request and stops the controller. Later
// completions are dropped and every method returns model.ErrClosed.
func (c *Controller) Close() {
	c.closeOnce.Do(func() { close(c.closing) })
	if c.started.Load() {
		<-c.done
	} else {
		c.rootCancel()
	}
}

func (c *Controller) shutdown() {
	c.rootCancel()
	for id, cancel := range c.chatCancels {
		cancel()
		delete(c.chatCancels, id)
	}
	c.analysisCancel = nil
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.logger.Debug("session closed")
}

// do runs fn on the owner goroutine and waits for its result.
func (c *Controller) do(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case c.cmds <- func() { errc <- fn() }:
	case <-c.closing:
		return model.ErrClosed
	case <-c.done:
		return model.ErrClosed
	}
	return <-errc
}

// post hands a completion to the owner goroutine, or drops it once closed.
func (c *Controller) post(cmd command) {
	select {
	case c.cmds <- cmd:
	case <-c.closing:
	case <-c.done:
	}
}

func (c *Controller) requestContext() (context.Context, context.CancelFunc) {
	if c.requestTimeout > 0 {
		return context.WithTimeout(c.rootCtx, c.requestTimeout)
	}
	return context.WithCancel(c.rootCtx)
}

// Jobs returns the catalog the controller was created with.
func (c *Controller) Jobs() []model.JobDescription {
	return slices.Clone(c.jobs)
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() (State, error) {
	var s State
	err := c.do(func() error {
		s = c.state.clone()
		return nil
	})
	return s, err
}

// Subscribe registers for state-changed events. The current state is
// delivered first. A slow subscriber loses intermediate events but always
// receives the latest one. The channel is closed by cancel or Close.
func (c *Controller) Subscribe() (<-chan Event, func(), error) {
	ch := make(chan Event, 1)
	var id int
	err := c.do(func() error {
		id = c.nextSub
		c.nextSub++
		c.subs[id] = ch
		ch <- Event{Kind: EventSubscribed, State: c.state.clone()}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = c.do(func() error {
				if sub, ok := c.subs[id]; ok {
					close(sub)
					delete(c.subs, id)
				}
				return nil
			})
		})
	}
	return ch, cancel, nil
}

func (c *Controller) publish(kind EventKind) {
	if len(c.subs) == 0 {
		return
	}
	ev := Event{Kind: kind, State: c.state.clone()}
	for _, ch := range c.subs {
		deliver(ch, ev)
	}
}

// SelectJob sets the selected job id. Any string is accepted; the empty
// string hides the upload panel again.
func (c *Controller) SelectJob(id string) error {
	return c.do(func() error {
		c.state.SelectedJobID = id
		c.logger.Debug("job selected", "job_id", id)
		c.publish(EventJobSelected)
		return nil
	})
}

// UploadFiles replaces the upload list with files. The selected file and its
// analysis are left alone.
func (c *Controller) UploadFiles(files []model.UploadedFile) error {
	list := slices.Clone(files)
	return c.do(func() error {
		c.state.Files = list
		for id := range c.state.FileErrors {
			if !slices.ContainsFunc(list, func(f model.UploadedFile) bool { return f.ID == id }) {
				delete(c.state.FileErrors, id)
			}
		}
		c.logger.Debug("files uploaded", "count", len(list))
		c.publish(EventFilesUploaded)
		return nil
	})
}

// SelectFile selects an uploaded file and starts analysing it against the
// selected job. Any in-flight analysis is cancelled and its result ignored.
func (c *Controller) SelectFile(fileID string) error {
	return c.do(func() error {
		idx := slices.IndexFunc(c.state.Files, func(f model.UploadedFile) bool { return f.ID == fileID })
		if idx < 0 {
			return fmt.Errorf("%w: %s", model.ErrUnknownFile, fileID)
		}
		file := c.state.Files[idx]
		c.state.SelectedFile = &file
		c.startAnalysis(file)
		c.publish(EventFileSelected)
		return nil
	})
}

// RetryAnalysis re-runs a failed analysis of the selected file.
func (c *Controller) RetryAnalysis() error {
	return c.do(func() error {
		if c.state.SelectedFile == nil || c.state.Analysis.Status != StatusFailure {
			return model.ErrNothingToRetry
		}
		c.startAnalysis(*c.state.SelectedFile)
		c.publish(EventFileSelected)
		return nil
	})
}

func (c *Controller) startAnalysis(file model.UploadedFile) {
	if c.analysisCancel != nil {
		c.analysisCancel()
		c.analysisCancel = nil
	}

	reqID := c.newID()
	c.state.Analysis = AnalysisState{Status: StatusPending, RequestID: reqID, FileID: file.ID}

	job := c.selectedJob()
	ctx, cancel := c.requestContext()
	c.analysisCancel = cancel

	c.logger.Info("analysis started", "request_id", reqID, "file", file.Name, "job_id", job.ID)
	go func() {
		analysis, err := c.analyzer.Analyze(ctx, file, job)
		c.post(func() { c.finishAnalysis(reqID, analysis, err) })
	}()
}

func (c *Controller) finishAnalysis(reqID string, analysis model.Analysis, err error) {
	cur := c.state.Analysis
	if cur.RequestID != reqID || cur.Status != StatusPending {
		c.logger.Debug("stale analysis dropped", "request_id", reqID)
		return
	}
	if c.analysisCancel != nil {
		c.analysisCancel()
		c.analysisCancel = nil
	}

	if err != nil {
		if !errors.Is(err, model.ErrUnsupportedFile) && !errors.Is(err, model.ErrAnalysisUnavailable) {
			err = fmt.Errorf("%w: %v", model.ErrAnalysisUnavailable, err)
		}
		c.state.Analysis = AnalysisState{Status: StatusFailure, RequestID: reqID, FileID: cur.FileID, Err: err}
		if errors.Is(err, model.ErrUnsupportedFile) {
			c.state.FileErrors[cur.FileID] = err
		}
		c.logger.Warn("analysis failed", "request_id", reqID, "error", err)
	} else {
		a := analysis.Normalize()
		c.state.Analysis = AnalysisState{Status: StatusSuccess, RequestID: reqID, FileID: cur.FileID, Analysis: &a}
		delete(c.state.FileErrors, cur.FileID)
		c.logger.Info("analysis finished", "request_id", reqID,
			"selection", a.SelectionScore, "risk", a.RiskScore)
	}
	c.publish(EventAnalysisFinished)
}

// SendChatMessage appends the user's message and requests a reply. It
// returns the message id, which the reply carries in ReplyTo. Text without a
// non-whitespace character is rejected with model.ErrEmptyMessage.
func (c *Controller) SendChatMessage(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", model.ErrEmptyMessage
	}

	var id string
	err := c.do(func() error {
		id = c.newID()
		msg := model.ChatMessage{ID: id, Role: model.RoleUser, Content: text, At: c.now()}

		req := model.ChatRequest{
			RequestID:  id,
			Transcript: slices.Clone(c.state.Transcript),
			Message:    msg,
		}
		if job := c.selectedJob(); job.ID != "" {
			req.Job = &job
		}
		if a := c.state.Analysis.Analysis; a != nil && c.state.Analysis.Status == StatusSuccess {
			cp := *a
			req.Analysis = &cp
		}

		c.state.Transcript = append(c.state.Transcript, msg)
		c.state.PendingReplies++

		ctx, cancel := c.requestContext()
		c.chatCancels[id] = cancel
		go func() {
			reply, err := c.assistant.Reply(ctx, req)
			c.post(func() { c.finishChat(id, reply, err) })
		}()

		c.logger.Debug("chat message sent", "request_id", id)
		c.publish(EventChatSent)
		return nil
	})
	return id, err
}

func (c *Controller) finishChat(id, reply string, err error) {
	cancel, ok := c.chatCancels[id]
	if !ok {
		c.logger.Debug("stale chat reply dropped", "request_id", id)
		return
	}
	cancel()
	delete(c.chatCancels, id)
	c.state.PendingReplies--

	msg := model.ChatMessage{ID: c.newID(), Role: model.RoleAssistant, ReplyTo: id, At: c.now()}
	if err != nil {
		if !errors.Is(err, model.ErrChatService) {
			err = fmt.Errorf("%w: %v", model.ErrChatService, err)
		}
		msg.Content = err.Error()
		msg.Failed = true
		c.logger.Warn("chat reply failed", "request_id", id, "error", err)
	} else {
		msg.Content = reply
	}
	c.state.Transcript = append(c.state.Transcript, msg)
	c.publish(EventChatReplied)
}

// selectedJob resolves the selected id against the catalog. Unknown ids are
// passed through with only the ID set.
func (c *Controller) selectedJob() model.JobDescription {
	if c.state.SelectedJobID == "" {
		return model.JobDescription{}
	}
	if job, ok := model.FindJob(c.jobs, c.state.SelectedJobID); ok {
		return job
	}
	return model.JobDescription{ID: c.state.SelectedJobID}
}
