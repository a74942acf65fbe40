package assessment

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/stemcert/backend/core"
	"github.com/stemcert/backend/core/trainer"
)

type (
	// Repository is the assessment record store: a flat table of rows,
	// one per trainer-submission event.
	Repository interface {
		QueryAllRows() ([]Row, error)
		QueryRowsByTrainerID(trainerID string) ([]Row, error)
		// AppendOrUpdateLast replaces the trainer's most recent row from
		// the same evaluator, or appends when none exists.
		AppendOrUpdateLast(row Row) error
	}

	Service struct {
		repo     Repository
		trainers *trainer.Service
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

func NewService(repo Repository, trainers *trainer.Service, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, trainers: trainers, mailSvc: mailSvc, logger: logger}
}

func (svc *Service) History(trainerID string) ([]Row, error) {
	return svc.repo.QueryRowsByTrainerID(strings.ToUpper(core.CleanString(trainerID)))
}

// Progress derives the trainer's per-level gate states and unlock flags.
func (svc *Service) Progress(trainerID string) (Progress, error) {
	rec, err := svc.trainers.GetByID(trainerID)
	if err != nil {
		return Progress{}, err
	}
	history, err := svc.repo.QueryRowsByTrainerID(rec.ID)
	if err != nil {
		return Progress{}, errors.Wrap(err, "reading trainer history")
	}
	gates := ComputeGateStates(history)
	unlocked := make(map[Level]bool, LevelCount)
	for _, l := range Levels() {
		unlocked[l] = IsLevelUnlocked(l, gates)
	}
	return Progress{TrainerID: rec.ID, Gates: gates, Unlocked: unlocked}, nil
}

// Submit runs one evaluation through the engine: validate the draft, gate the
// levels, adjudicate, and persist a single row. Nothing is persisted on
// rejection; downgrades come back as warnings on success.
func (svc *Service) Submit(draft SubmissionDraft) (Row, []Warning, error) {
	if err := draft.Validate(); err != nil {
		return Row{}, nil, err
	}

	rec, err := svc.trainers.GetByID(draft.TrainerID)
	if err != nil {
		if err == trainer.ErrNotFound {
			return Row{}, nil, core.NewValidationError(err, core.FieldError{Field: "trainer_id", Error: err.Error()})
		}
		return Row{}, nil, errors.Wrap(err, "looking up trainer")
	}

	history, err := svc.repo.QueryRowsByTrainerID(rec.ID)
	if err != nil {
		return Row{}, nil, errors.Wrap(err, "reading trainer history")
	}
	gates := ComputeGateStates(history)

	for _, l := range Levels() {
		in, ok := draft.Levels[l]
		if !ok || in == nil {
			continue
		}
		if !IsLevelUnlocked(l, gates) {
			return Row{}, nil, core.NewValidationError(
				fmt.Errorf("%s is locked; complete previous level(s) first", l),
				core.FieldError{Field: "levels", Error: fmt.Sprintf("%s is locked", l)},
			)
		}
		if gates[l].State == QualifiedFull && in.Proposed == Qualified {
			return Row{}, nil, core.NewValidationError(
				fmt.Errorf("%s is already qualified by both evaluators", l),
				core.FieldError{Field: "levels", Error: fmt.Sprintf("%s already qualified", l)},
			)
		}
	}

	role := draft.Role()
	row := Row{
		SubmissionID:      uuid.New().String(),
		TrainerID:         rec.ID,
		TrainerName:       rec.Name,
		Department:        rec.Department,
		EvaluatorUsername: draft.EvaluatorUsername,
		EvaluatorRole:     role,
		AssessedAt:        time.Now().UTC(),
	}

	var warnings []Warning
	for _, l := range Levels() {
		in, ok := draft.Levels[l]
		if !ok || in == nil {
			continue
		}
		// the submitting evaluator counts towards the two-evaluator rule
		evals := qualifiedEvaluators(history, l)
		distinct := len(evals)
		if _, ok := evals[draft.EvaluatorUsername]; !ok && in.Proposed == Qualified {
			distinct++
		}
		lr, warns := buildLevel(l, in, role, history, distinct)
		*row.Level(l) = lr
		warnings = append(warnings, warns...)
	}

	// The store replaces the evaluator's previous row whole, so levels the
	// draft leaves out keep the blocks from that row. Without this an
	// evaluator advancing to the next level would erase their earlier
	// qualifications.
	if prev, ok := latestRowByEvaluator(history, draft.EvaluatorUsername); ok {
		for _, l := range Levels() {
			if in, ok := draft.Levels[l]; ok && in != nil {
				continue
			}
			*row.Level(l) = *prev.Level(l)
		}
	}

	if err := svc.repo.AppendOrUpdateLast(row); err != nil {
		return Row{}, nil, errors.Wrap(err, "persisting assessment row")
	}
	for _, w := range warnings {
		svc.logger.Warn(fmt.Sprintf("submission %s downgraded: %s", row.SubmissionID, w.Message))
	}
	return row, warnings, nil
}

// latestRowByEvaluator returns the evaluator's most recent row in history.
func latestRowByEvaluator(history []Row, username string) (Row, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].EvaluatorUsername == username {
			return history[i], true
		}
	}
	return Row{}, false
}

// latestRow returns the trainer's most recent persisted row.
func (svc *Service) latestRow(trainerID string) (Row, error) {
	history, err := svc.History(trainerID)
	if err != nil {
		return Row{}, err
	}
	if len(history) == 0 {
		return Row{}, core.NewValidationError(
			errors.New("no assessments recorded for this trainer"),
			core.FieldError{Field: "trainer_id", Error: "no assessments recorded"},
		)
	}
	return history[len(history)-1], nil
}

// ComposeScoreCard builds the score-card email for a level out of the
// trainer's latest row: one block per course with the evaluator's parameter
// scores, totals and statuses. The caller decides how it is delivered.
func (svc *Service) ComposeScoreCard(rec trainer.Record, row Row, l Level) (*core.EmailMessage, error) {
	to, err := core.ParseEmailAddress(rec.Email)
	if err != nil {
		return nil, err
	}
	lr := row.Level(l)

	var b strings.Builder
	fmt.Fprintf(&b, "Score Card for Trainer ID: %s\n", row.TrainerID)
	fmt.Fprintf(&b, "Trainer Name: %s\n", row.TrainerName)
	fmt.Fprintf(&b, "Department: %s\n", row.Department)
	fmt.Fprintf(&b, "Date of Assessment: %s\n", row.AssessedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Evaluator: %s (%s)\n", row.EvaluatorUsername, row.EvaluatorRole)
	fmt.Fprintf(&b, "\nAssessment Details for %s:\n", l)
	for i := range lr.Courses {
		course := &lr.Courses[i]
		fmt.Fprintf(&b, "\nCourse :%d:\n", i+1)
		for _, p := range row.EvaluatorRole.Parameters() {
			fmt.Fprintf(&b, "  %s: %d\n", p.Label(), course.Scores[p.Name])
		}
		fmt.Fprintf(&b, "  Course Name: %s (%s)\n", course.Name, passedText(course.Passed))
		fmt.Fprintf(&b, "  TOTAL: %d\n", course.Total)
		fmt.Fprintf(&b, "  AVERAGE: %g\n", course.Average)
		fmt.Fprintf(&b, "  STATUS: %s\n", course.Status)
	}
	fmt.Fprintf(&b, "\n%s Status: %s\n", l, lr.Status)
	if l == Level3 && lr.ManagerReferral != "" {
		fmt.Fprintf(&b, "Manager Referral: %s\n", lr.ManagerReferral)
	}
	reminder := lr.Reminder
	if reminder == "" {
		reminder = "None"
	}
	fmt.Fprintf(&b, "Reminder: %s", reminder)

	return &core.EmailMessage{
		To:      []mail.Address{to},
		Subject: fmt.Sprintf("Score Card for Trainer %s - %s - %s", row.TrainerID, l, row.AssessedAt.Format("2006-01-02")),
		BodyStr: b.String(),
	}, nil
}

// SendScoreCard emails the level's score card to the trainer and flags the
// row; a level whose latest row is already flagged refuses to send again.
func (svc *Service) SendScoreCard(trainerID string, l Level) (*core.EmailMessage, error) {
	if !l.Valid() {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "level", Error: "invalid level"})
	}
	rec, err := svc.trainers.GetByID(trainerID)
	if err != nil {
		return nil, err
	}
	row, err := svc.latestRow(rec.ID)
	if err != nil {
		return nil, err
	}
	if row.Level(l).ScoreCardSent {
		return nil, core.NewValidationError(
			fmt.Errorf("score card for %s already sent", l),
			core.FieldError{Field: "level", Error: "score card already sent"},
		)
	}

	msg, err := svc.ComposeScoreCard(rec, row, l)
	if err != nil {
		return nil, err
	}
	svc.mailSvc.SendMessages(msg)

	row.Level(l).ScoreCardSent = true
	if err := svc.repo.AppendOrUpdateLast(row); err != nil {
		return msg, errors.Wrap(err, "recording score card status")
	}
	return msg, nil
}

// SendReminder emails an assessment reminder for a level to the given
// address, with a brief course pass overview from the latest row.
func (svc *Service) SendReminder(trainerID string, l Level, recipient, reminder string) (*core.EmailMessage, error) {
	if !l.Valid() {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "level", Error: "invalid level"})
	}
	to, err := core.ParseEmailAddress(recipient)
	if err != nil {
		return nil, err
	}
	rec, err := svc.trainers.GetByID(trainerID)
	if err != nil {
		return nil, err
	}
	row, err := svc.latestRow(rec.ID)
	if err != nil {
		return nil, err
	}
	lr := row.Level(l)

	if reminder == "" {
		reminder = "No reminder message provided."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Reminder for Trainer ID: %s\n", row.TrainerID)
	fmt.Fprintf(&b, "Trainer Name: %s\n", row.TrainerName)
	fmt.Fprintf(&b, "Department: %s\n", row.Department)
	fmt.Fprintf(&b, "Date of Assessment: %s\n", row.AssessedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Evaluator: %s (%s)\n", row.EvaluatorUsername, row.EvaluatorRole)
	fmt.Fprintf(&b, "\nReminder Message:\n%s\n", reminder)
	fmt.Fprintf(&b, "\nAssessment Overview for %s:\n", l)
	for i := range lr.Courses {
		name := lr.Courses[i].Name
		if name == "" {
			name = "N/A"
		}
		fmt.Fprintf(&b, "  Course :%d: %s (%s)\n", i+1, name, passedText(lr.Courses[i].Passed))
	}
	if l == Level3 && lr.ManagerReferral != "" {
		fmt.Fprintf(&b, "\nManager Referral: %s\n", lr.ManagerReferral)
	}

	msg := &core.EmailMessage{
		To:      []mail.Address{to},
		Subject: fmt.Sprintf("Reminder for Trainer %s - %s - %s", row.TrainerID, l, time.Now().UTC().Format("2006-01-02")),
		BodyStr: b.String(),
	}
	svc.mailSvc.SendMessages(msg)
	return msg, nil
}

func passedText(passed bool) string {
	if passed {
		return "Passed"
	}
	return "Not Passed"
}
