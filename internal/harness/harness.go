package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/persist"
	"github.com/roach88/binder/internal/roster"
	"github.com/roach88/binder/internal/store"
	"github.com/roach88/binder/internal/testutil"
)

// ClockStart is the first submission time handed out during a run.
var ClockStart = time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)

// Harness executes one scenario against its own data directory.
type Harness struct {
	dir    string
	coord  *persist.Coordinator
	roster *roster.Roster
	logger *slog.Logger
}

// Run executes a scenario in a fresh temporary directory and returns the
// result, including a copy of every file written. The directory is removed
// afterwards.
//
// Execution flow:
// 1. Create a fresh file backend and coordinator
// 2. Cache and save the scenario records
// 3. Execute flow steps with expect validation
// 4. Evaluate assertions and capture the written files
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "binder-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	defer os.RemoveAll(dir)

	return RunIn(dir, scenario, nil)
}

// RunIn executes a scenario with dir as the data directory. A nil logger
// discards logs.
func RunIn(dir string, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	files, err := store.NewFileBackend(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	coord, err := persist.New(persist.Options{
		Backend:     files,
		Logger:      logger,
		IDGenerator: testutil.NewSequenceGenerator("b"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}

	h := &Harness{
		dir:    dir,
		coord:  coord,
		roster: roster.New(coord, roster.WithClock(testutil.NewStepClock(ClockStart, time.Minute)), roster.WithLogger(logger)),
		logger: logger,
	}

	result := NewResult()
	if err := h.executeRecords(scenario.Records); err != nil {
		return nil, fmt.Errorf("failed to store records: %w", err)
	}
	h.executeFlow(scenario.Flow, result)

	for _, msg := range EvaluateAssertions(h.coord, scenario.Assertions) {
		result.AddError(msg)
	}

	if err := h.captureFiles(result); err != nil {
		return nil, fmt.Errorf("failed to capture files: %w", err)
	}
	return result, nil
}

// executeRecords caches every record and saves the touched paths.
func (h *Harness) executeRecords(records []Record) error {
	type target struct {
		kind model.Kind
		path string
	}
	var touched []target
	seen := make(map[target]bool)

	for i, r := range records {
		kind := model.Kind(r.Kind)
		data, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("records[%d]: %w", i, err)
		}
		if err := h.cacheRecord(kind, r.Path, data); err != nil {
			return fmt.Errorf("records[%d]: %w", i, err)
		}
		t := target{kind, r.Path}
		if !seen[t] {
			seen[t] = true
			touched = append(touched, t)
		}
	}

	for _, t := range touched {
		if err := h.saveKind(t.kind, t.path); err != nil {
			return err
		}
	}
	return nil
}

// cacheRecord decodes data with the kind's codec and caches the record.
func (h *Harness) cacheRecord(kind model.Kind, path string, data []byte) error {
	switch kind {
	case model.KindAnswer:
		return decodeAndCache(store.AnswerCodec, data, path, h.coord.CacheAnswer)
	case model.KindCourse:
		return decodeAndCache(store.CourseCodec, data, path, h.coord.CacheCourse)
	case model.KindQuestion:
		return decodeAndCache(store.QuestionCodec, data, path, h.coord.CacheQuestion)
	case model.KindTicket:
		return decodeAndCache(store.TicketCodec, data, path, h.coord.CacheTicket)
	case model.KindUser:
		return decodeAndCache(store.UserCodec, data, path, h.coord.CacheUser)
	}
	return fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
}

func decodeAndCache[K ~string, V model.Entity](codec store.Codec[K, V], data []byte, path string, cache func(string, V) error) error {
	v, err := codec.Decode(data)
	if err != nil {
		return err
	}
	return cache(path, v)
}

func (h *Harness) saveKind(kind model.Kind, path string) error {
	switch kind {
	case model.KindAnswer:
		return h.coord.SaveAnswers(path)
	case model.KindCourse:
		return h.coord.SaveCourses(path)
	case model.KindQuestion:
		return h.coord.SaveQuestions(path)
	case model.KindTicket:
		return h.coord.SaveTickets(path)
	case model.KindUser:
		return h.coord.SaveUsers(path)
	}
	return fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
}

// executeFlow runs every step and checks its expect clause. Step errors
// are recorded, not returned, so later steps still run.
func (h *Harness) executeFlow(flow []FlowStep, result *Result) {
	for i, step := range flow {
		res, err := h.executeStep(step)
		if err != nil {
			res.Error = err.Error()
		}
		result.Steps = append(result.Steps, res)

		h.logger.Info("flow step completed", "step", i, "op", res.Op, "created", res.Created)

		for _, msg := range checkExpect(i, step.Expect, res, err) {
			result.AddError(msg)
		}
	}
}

func (h *Harness) executeStep(step FlowStep) (StepResult, error) {
	switch {
	case step.Bind != nil:
		res := StepResult{Op: "bind"}
		src, err := parseRef(step.Bind.Src)
		if err != nil {
			return res, err
		}
		dest, err := parseRef(step.Bind.Dest)
		if err != nil {
			return res, err
		}
		b, created, err := h.coord.Bind(step.Bind.Path, src.String(), dest.String(), src.Kind(), dest.Kind())
		res.Binding, res.Created = string(b.ID), created
		return res, err

	case step.Enroll != nil:
		res := StepResult{Op: "enroll"}
		created, err := h.roster.Enroll(model.CourseID(step.Enroll.Course), model.UserID(step.Enroll.User))
		res.Created = created
		return res, err

	case step.AttachTicket != nil:
		res := StepResult{Op: "attach_ticket"}
		created, err := h.roster.AttachTicket(model.CourseID(step.AttachTicket.Parent), model.TicketID(step.AttachTicket.Child))
		res.Created = created
		return res, err

	case step.AttachQuestion != nil:
		res := StepResult{Op: "attach_question"}
		created, err := h.roster.AttachQuestion(model.TicketID(step.AttachQuestion.Parent), model.QuestionID(step.AttachQuestion.Child))
		res.Created = created
		return res, err

	case step.Submit != nil:
		res := StepResult{Op: "submit"}
		s := step.Submit
		a, err := h.roster.SubmitAnswer(roster.Submission{
			ID:       model.AnswerID(s.ID),
			Value:    s.Value,
			Question: model.QuestionID(s.Question),
			User:     model.UserID(s.User),
			Course:   model.CourseID(s.Course),
			Ticket:   model.TicketID(s.Ticket),
		})
		res.Binding, res.Created = string(a.ID), err == nil
		return res, err
	}
	return StepResult{}, fmt.Errorf("empty flow step")
}

func checkExpect(index int, expect *ExpectClause, res StepResult, err error) []string {
	if expect == nil || expect.Error == "" {
		if err != nil {
			return []string{fmt.Sprintf("flow[%d] %s: unexpected error: %v", index, res.Op, err)}
		}
	}
	if expect == nil {
		return nil
	}

	var msgs []string
	if expect.Error != "" {
		switch {
		case err == nil:
			msgs = append(msgs, fmt.Sprintf("flow[%d] %s: expected error containing %q, got success", index, res.Op, expect.Error))
		case !strings.Contains(err.Error(), expect.Error):
			msgs = append(msgs, fmt.Sprintf("flow[%d] %s: expected error containing %q, got %q", index, res.Op, expect.Error, err.Error()))
		}
	}
	if expect.Created != nil && *expect.Created != res.Created {
		msgs = append(msgs, fmt.Sprintf("flow[%d] %s: expected created=%t, got %t", index, res.Op, *expect.Created, res.Created))
	}
	return msgs
}

// captureFiles copies every regular file under the data directory into
// result.Files.
func (h *Harness) captureFiles(result *Result) error {
	return filepath.WalkDir(h.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(h.dir, path)
		if err != nil {
			return err
		}
		result.Files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
}

// parseRef parses a "kind:id" reference.
func parseRef(s string) (model.ID, error) {
	kindName, raw, ok := strings.Cut(s, ":")
	if !ok || raw == "" {
		return nil, fmt.Errorf("%w: reference %q must look like kind:id", model.ErrInvalidRecord, s)
	}
	kind, err := model.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	return kind.NewID(raw)
}
