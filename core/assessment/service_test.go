package assessment

import (
	"errors"
	"strings"
	"testing"

	"github.com/stemcert/backend/core"
	"github.com/stemcert/backend/core/trainer"
)

type memRepo struct {
	rows []Row
}

func (r *memRepo) QueryAllRows() ([]Row, error) { return r.rows, nil }

func (r *memRepo) QueryRowsByTrainerID(trainerID string) ([]Row, error) {
	var matched []Row
	for _, row := range r.rows {
		if row.TrainerID == trainerID {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func (r *memRepo) AppendOrUpdateLast(row Row) error {
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].TrainerID != row.TrainerID {
			continue
		}
		if r.rows[i].SubmissionID == row.SubmissionID || r.rows[i].EvaluatorUsername == row.EvaluatorUsername {
			r.rows[i] = row
			return nil
		}
	}
	r.rows = append(r.rows, row)
	return nil
}

type memDir struct {
	recs []trainer.Record
}

func (d *memDir) GetByID(id string) (trainer.Record, error) {
	for _, rec := range d.recs {
		if rec.ID == id {
			return rec, nil
		}
	}
	return trainer.Record{}, trainer.ErrNotFound
}

func (d *memDir) QueryAll() ([]trainer.Record, error) { return d.recs, nil }

func (d *memDir) Upsert(rec trainer.Record) error {
	for i := range d.recs {
		if d.recs[i].ID == rec.ID {
			d.recs[i] = rec
			return nil
		}
	}
	d.recs = append(d.recs, rec)
	return nil
}

type mailRecorder struct {
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func setup(t *testing.T) (*Service, *memRepo, *mailRecorder) {
	t.Helper()
	repo := &memRepo{}
	dir := &memDir{recs: []trainer.Record{
		{ID: "TR001", Name: "Jane Doe", Department: "Science", Branch: "HQ", Email: "jane@test.cd"},
	}}
	mailRec := &mailRecorder{}
	svc := NewService(repo, trainer.NewService(dir, nopLogger{}), mailRec, nopLogger{})
	return svc, repo, mailRec
}

// fullLevel builds an input with all ten courses cleared at the given average.
func fullLevel(proposed LevelStatus, avg float64, referral string) *LevelInput {
	in := &LevelInput{Proposed: proposed, ManagerReferral: referral}
	for i := range in.Courses {
		in.Courses[i] = CourseInput{
			Name:    "Robotics",
			Passed:  true,
			Total:   int(avg),
			Average: avg,
			Status:  CourseCleared,
		}
	}
	return in
}

func TestService_Submit(t *testing.T) {
	t.Run("unknown trainer", func(t *testing.T) {
		svc, repo, _ := setup(t)
		_, _, err := svc.Submit(SubmissionDraft{
			TrainerID:         "TR999",
			EvaluatorUsername: "alice",
			EvaluatorRole:     "Technical Evaluator",
			Levels:            map[Level]*LevelInput{Level1: fullLevel(Qualified, 80, "")},
		})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Submit() error = %v, want validation error", err)
		}
		if len(repo.rows) != 0 {
			t.Errorf("rows persisted on rejection: %d", len(repo.rows))
		}
	})

	t.Run("first evaluator qualifies provisionally", func(t *testing.T) {
		svc, repo, _ := setup(t)
		row, warnings, err := svc.Submit(SubmissionDraft{
			TrainerID:         "tr001", // IDs normalize to upper case
			EvaluatorUsername: "Alice",
			EvaluatorRole:     "Technical Evaluator",
			Levels:            map[Level]*LevelInput{Level1: fullLevel(Qualified, 80, "")},
		})
		if err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %v, want none", warnings)
		}
		if row.SubmissionID == "" {
			t.Error("missing submission ID")
		}
		if row.TrainerID != "TR001" || row.EvaluatorUsername != "alice" {
			t.Errorf("identity not normalized: %q %q", row.TrainerID, row.EvaluatorUsername)
		}
		if got := row.Level(Level1).Status; got != Qualified {
			t.Errorf("level 1 status = %s, want QUALIFIED", got)
		}
		if len(repo.rows) != 1 {
			t.Fatalf("rows = %d, want 1", len(repo.rows))
		}
	})

	t.Run("locked level rejected", func(t *testing.T) {
		svc, repo, _ := setup(t)
		_, _, err := svc.Submit(SubmissionDraft{
			TrainerID:         "TR001",
			EvaluatorUsername: "alice",
			EvaluatorRole:     "Technical Evaluator",
			Levels:            map[Level]*LevelInput{Level2: fullLevel(Qualified, 80, "")},
		})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Submit() error = %v, want validation error", err)
		}
		if len(repo.rows) != 0 {
			t.Errorf("rows persisted on rejection: %d", len(repo.rows))
		}
	})

	t.Run("second evaluator triggers adjudication", func(t *testing.T) {
		svc, repo, _ := setup(t)
		if _, _, err := svc.Submit(SubmissionDraft{
			TrainerID:         "TR001",
			EvaluatorUsername: "alice",
			EvaluatorRole:     "Technical Evaluator",
			Levels:            map[Level]*LevelInput{Level1: fullLevel(Qualified, 80, "")},
		}); err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}

		row, warnings, err := svc.Submit(SubmissionDraft{
			TrainerID:         "TR001",
			EvaluatorUsername: "bob",
			EvaluatorRole:     "School Operations Evaluator",
			Levels:            map[Level]*LevelInput{Level1: fullLevel(Qualified, 70, "")},
		})
		if err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
		if got := row.Level(Level1).Status; got != NotQualified {
			t.Errorf("level 1 status = %s, want downgraded NOT QUALIFIED", got)
		}
		if len(warnings) != 1 || warnings[0].Reason != ReasonBelowThreshold {
			t.Errorf("warnings = %v, want single below_threshold", warnings)
		}
		if len(repo.rows) != 2 {
			t.Errorf("rows = %d, want 2", len(repo.rows))
		}
	})

	t.Run("fully qualified level refuses another QUALIFIED", func(t *testing.T) {
		svc, _, _ := setup(t)
		for _, draft := range []SubmissionDraft{
			{TrainerID: "TR001", EvaluatorUsername: "alice", EvaluatorRole: "Technical Evaluator", Levels: map[Level]*LevelInput{Level1: fullLevel(Qualified, 80, "")}},
			{TrainerID: "TR001", EvaluatorUsername: "bob", EvaluatorRole: "School Operations Evaluator", Levels: map[Level]*LevelInput{Level1: fullLevel(Qualified, 80, "")}},
		} {
			if _, _, err := svc.Submit(draft); err != nil {
				t.Fatalf("Submit() failed: %v", err)
			}
		}

		_, _, err := svc.Submit(SubmissionDraft{
			TrainerID:         "TR001",
			EvaluatorUsername: "carol",
			EvaluatorRole:     "Technical Evaluator",
			Levels:            map[Level]*LevelInput{Level1: fullLevel(Qualified, 80, "")},
		})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Submit() error = %v, want validation error", err)
		}
	})

	t.Run("advancing to the next level keeps earlier qualifications", func(t *testing.T) {
		svc, _, _ := setup(t)
		submit := func(uname, role string, l Level, in *LevelInput) {
			t.Helper()
			if _, _, err := svc.Submit(SubmissionDraft{
				TrainerID:         "TR001",
				EvaluatorUsername: uname,
				EvaluatorRole:     role,
				Levels:            map[Level]*LevelInput{l: in},
			}); err != nil {
				t.Fatalf("Submit() failed: %v", err)
			}
		}
		submit("alice", "Technical Evaluator", Level1, fullLevel(Qualified, 80, ""))
		submit("bob", "School Operations Evaluator", Level1, fullLevel(Qualified, 80, ""))

		// both move on; their rows are replaced whole in the store
		submit("alice", "Technical Evaluator", Level2, fullLevel(Qualified, 80, ""))
		submit("bob", "School Operations Evaluator", Level2, fullLevel(Qualified, 80, ""))

		prog, err := svc.Progress("TR001")
		if err != nil {
			t.Fatalf("Progress() failed: %v", err)
		}
		if got := prog.Gates[Level1].State; got != QualifiedFull {
			t.Errorf("level 1 state = %s, want QUALIFIED_FULL kept", got)
		}
		if !prog.Unlocked[Level2] {
			t.Error("level 2 relocked after both evaluators advanced")
		}

		// corrections to the current level still go through
		in := &LevelInput{Proposed: NotQualified}
		in.Courses[0] = CourseInput{Name: "Robotics", Status: CourseRedo}
		submit("bob", "School Operations Evaluator", Level2, in)
	})

	t.Run("redo accumulates attempts across submissions", func(t *testing.T) {
		svc, repo, _ := setup(t)
		redo := func() SubmissionDraft {
			in := &LevelInput{Proposed: NotQualified}
			in.Courses[0] = CourseInput{Name: "Robotics", Status: CourseRedo}
			return SubmissionDraft{
				TrainerID:         "TR001",
				EvaluatorUsername: "alice",
				EvaluatorRole:     "Technical Evaluator",
				Levels:            map[Level]*LevelInput{Level1: in},
			}
		}
		if _, _, err := svc.Submit(redo()); err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
		row, _, err := svc.Submit(redo())
		if err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
		if got := row.Level(Level1).Courses[0].Attempts; got != 2 {
			t.Errorf("attempts = %d, want 2", got)
		}
		// same evaluator resubmitting overwrites their previous row
		if len(repo.rows) != 1 {
			t.Errorf("rows = %d, want 1", len(repo.rows))
		}
	})
}

func TestService_SendScoreCard(t *testing.T) {
	svc, repo, mailRec := setup(t)
	if _, _, err := svc.Submit(SubmissionDraft{
		TrainerID:         "TR001",
		EvaluatorUsername: "alice",
		EvaluatorRole:     "Technical Evaluator",
		Levels:            map[Level]*LevelInput{Level1: fullLevel(Qualified, 80, "")},
	}); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	msg, err := svc.SendScoreCard("TR001", Level1)
	if err != nil {
		t.Fatalf("SendScoreCard() failed: %v", err)
	}
	if len(mailRec.sent) != 1 {
		t.Fatalf("sent = %d messages, want 1", len(mailRec.sent))
	}
	if got := msg.To[0].Address; got != "jane@test.cd" {
		t.Errorf("recipient = %s, want jane@test.cd", got)
	}
	if !strings.Contains(msg.BodyStr, "Score Card for Trainer ID: TR001") {
		t.Errorf("unexpected body:\n%s", msg.BodyStr)
	}
	if !strings.Contains(msg.BodyStr, "LEVEL #1 Status: QUALIFIED") {
		t.Errorf("level status missing from body:\n%s", msg.BodyStr)
	}
	if !repo.rows[len(repo.rows)-1].Level(Level1).ScoreCardSent {
		t.Error("score card flag not persisted")
	}

	// a flagged level refuses a resend
	_, err = svc.SendScoreCard("TR001", Level1)
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("SendScoreCard() resend error = %v, want validation error", err)
	}
	if len(mailRec.sent) != 1 {
		t.Errorf("sent = %d messages after resend attempt, want 1", len(mailRec.sent))
	}

	// no assessments at all
	if _, err := svc.SendScoreCard("TR999", Level1); err == nil {
		t.Error("SendScoreCard() expected error for unknown trainer")
	}
}

func TestService_SendReminder(t *testing.T) {
	svc, _, mailRec := setup(t)
	if _, _, err := svc.Submit(SubmissionDraft{
		TrainerID:         "TR001",
		EvaluatorUsername: "alice",
		EvaluatorRole:     "Technical Evaluator",
		Levels:            map[Level]*LevelInput{Level1: fullLevel(Qualified, 80, "")},
	}); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	msg, err := svc.SendReminder("TR001", Level1, "manager@test.cd", "Schedule the retake.")
	if err != nil {
		t.Fatalf("SendReminder() failed: %v", err)
	}
	if len(mailRec.sent) != 1 {
		t.Fatalf("sent = %d messages, want 1", len(mailRec.sent))
	}
	if !strings.Contains(msg.BodyStr, "Schedule the retake.") {
		t.Errorf("reminder message missing from body:\n%s", msg.BodyStr)
	}

	if _, err := svc.SendReminder("TR001", Level1, "not-an-email", "hey"); err == nil {
		t.Error("SendReminder() expected error for invalid recipient")
	}
}
