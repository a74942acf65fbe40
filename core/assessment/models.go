package assessment

import (
	"fmt"
	"strings"
	"time"

	"github.com/stemcert/backend/core"
)

// Level is one of the three sequential certification stages a trainer
// progresses through. Each level contains CourseCount scored courses.
type Level int

const (
	Level1 Level = iota + 1
	Level2
	Level3

	LevelCount  = 3
	CourseCount = 10
)

func Levels() []Level { return []Level{Level1, Level2, Level3} }

func (l Level) Valid() bool { return l >= Level1 && l <= Level3 }

func (l Level) String() string { return fmt.Sprintf("LEVEL #%d", int(l)) }

// Threshold is the minimum aggregate average required to qualify the level.
func (l Level) Threshold() float64 {
	if l == Level3 {
		return 90.0
	}
	return 75.0
}

// Parameter is one scored criterion. Every parameter is scored out of 5
// except STEM integration, which is out of 10.
type Parameter struct {
	Name string
	Max  int
}

// Label is the parameter's display/column form, e.g. "Language Fluency (5)".
func (p Parameter) Label() string { return fmt.Sprintf("%s (%d)", p.Name, p.Max) }

// Role is the evaluator role tag. Each role scores a disjoint parameter
// subset; a level qualifies only once both roles have confirmed it.
type Role int

const (
	RoleTechnical Role = iota
	RoleSchoolOperations
)

var (
	technicalParams = []Parameter{
		{Name: "Has Knowledge of STEM", Max: 5},
		{Name: "Ability to integrate STEM With related activities", Max: 10},
		{Name: "Discusses Up-to-date information related to STEM", Max: 5},
		{Name: "Provides Course Outline", Max: 5},
		{Name: "Language Fluency", Max: 5},
		{Name: "Preparation with Lesson Plan / Practicals", Max: 5},
	}
	schoolOperationsParams = []Parameter{
		{Name: "Time Based Activity", Max: 5},
		{Name: "Student Engagement Ideas", Max: 5},
		{Name: "Pleasing Look", Max: 5},
		{Name: "Poised & Confident", Max: 5},
		{Name: "Well Modulated Voice", Max: 5},
	}
)

func (r Role) String() string {
	if r == RoleSchoolOperations {
		return "School Operations Evaluator"
	}
	return "Technical Evaluator"
}

// Parameters returns the role's parameter set; total over all roles.
func (r Role) Parameters() []Parameter {
	if r == RoleSchoolOperations {
		return schoolOperationsParams
	}
	return technicalParams
}

// AllParameters returns every parameter across both roles, technical first.
func AllParameters() []Parameter {
	all := make([]Parameter, 0, len(technicalParams)+len(schoolOperationsParams))
	all = append(all, technicalParams...)
	all = append(all, schoolOperationsParams...)
	return all
}

// ParseRole matches role names the way historical rows spell them:
// case-insensitive substring match on "technical" / "school".
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "technical"):
		return RoleTechnical, true
	case strings.Contains(s, "school"):
		return RoleSchoolOperations, true
	}
	return RoleTechnical, false
}

type CourseStatus string

const (
	CourseCleared CourseStatus = "CLEARED"
	CourseRedo    CourseStatus = "REDO"
)

type LevelStatus string

const (
	Qualified    LevelStatus = "QUALIFIED"
	NotQualified LevelStatus = "NOT QUALIFIED"
)

// CourseResult is one scored course inside a persisted row.
type CourseResult struct {
	Name     string         `json:"name"`
	Passed   bool           `json:"passed"`
	Scores   map[string]int `json:"scores,omitempty"` // parameter name -> score
	Total    int            `json:"total"`
	Average  float64        `json:"average"`
	Status   CourseStatus   `json:"status"`
	Remarks  string         `json:"remarks"`
	Attempts int            `json:"attempts"`
}

// LevelResult is one level's block inside a persisted row.
type LevelResult struct {
	Courses         [CourseCount]CourseResult `json:"courses"`
	Total           int                       `json:"total"`
	Average         float64                   `json:"average"`
	Status          LevelStatus               `json:"status"`
	Reminder        string                    `json:"reminder"`
	ScoreCardSent   bool                      `json:"score_card_sent"`
	ManagerReferral string                    `json:"manager_referral,omitempty"` // level 3 only
}

// Submitted reports whether the evaluator filled anything in for this level.
func (lr *LevelResult) Submitted() bool {
	if lr.Status != "" {
		return true
	}
	for i := range lr.Courses {
		if lr.Courses[i].Name != "" || lr.Courses[i].Status != "" {
			return true
		}
	}
	return false
}

// Row is one trainer-submission event: the unit owned by the record store.
type Row struct {
	SubmissionID      string                  `json:"submission_id"`
	TrainerID         string                  `json:"trainer_id"`
	TrainerName       string                  `json:"trainer_name"`
	Department        string                  `json:"department"`
	EvaluatorUsername string                  `json:"evaluator_username"`
	EvaluatorRole     Role                    `json:"-"`
	AssessedAt        time.Time               `json:"assessed_at"`
	Levels            [LevelCount]LevelResult `json:"levels"`
}

// Level returns the block for l; callers must pass a valid level.
func (r *Row) Level(l Level) *LevelResult { return &r.Levels[l-1] }

// CourseInput is an evaluator's proposed scoring for one course. Total and
// Average may be supplied explicitly (historical rows carry evaluator-entered
// percentages); when both are zero they are computed from Scores.
type CourseInput struct {
	Name    string         `json:"name"`
	Passed  bool           `json:"passed"`
	Scores  map[string]int `json:"scores"`
	Total   int            `json:"total"`
	Average float64        `json:"average"`
	Status  CourseStatus   `json:"status" validate:"omitempty,oneof=CLEARED REDO"`
	Remarks string         `json:"remarks"`
}

// LevelInput is an evaluator's proposed level block.
type LevelInput struct {
	Courses         [CourseCount]CourseInput `json:"courses" validate:"dive"`
	Proposed        LevelStatus              `json:"status" validate:"required,oneof=QUALIFIED 'NOT QUALIFIED'"`
	Reminder        string                   `json:"reminder"`
	ManagerReferral string                   `json:"manager_referral"`
}

// AllFilled reports whether all ten courses are named and marked passed.
func (li *LevelInput) AllFilled() bool {
	for i := range li.Courses {
		if li.Courses[i].Name == "" || !li.Courses[i].Passed {
			return false
		}
	}
	return true
}

// SubmissionDraft is the explicit value object carrying one evaluator's
// proposed submission through the engine. It is only persisted on Submit.
type SubmissionDraft struct {
	TrainerID         string                `json:"trainer_id" validate:"required"`
	EvaluatorUsername string                `json:"evaluator_username" validate:"required"`
	EvaluatorRole     string                `json:"evaluator_role" validate:"required"`
	Levels            map[Level]*LevelInput `json:"levels" validate:"required,min=1,dive"`
}

func (d *SubmissionDraft) Validate() error {
	d.TrainerID = strings.ToUpper(core.CleanString(d.TrainerID))
	d.EvaluatorUsername = core.CleanString(d.EvaluatorUsername, true /* lower */)

	if err := core.Validate.Struct(d); err != nil {
		return err
	}
	if _, ok := ParseRole(d.EvaluatorRole); !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "evaluator_role", Error: "unknown evaluator role"})
	}
	for l := range d.Levels {
		if !l.Valid() {
			return core.NewValidationError(nil, core.FieldError{Field: "levels", Error: fmt.Sprintf("invalid level %d", int(l))})
		}
	}
	return nil
}

func (d *SubmissionDraft) Role() Role {
	r, _ := ParseRole(d.EvaluatorRole)
	return r
}

// MachineState is the per-level gate state machine. QualifiedFull is terminal:
// no transition revokes a fully confirmed qualification.
type MachineState int

const (
	Locked MachineState = iota
	UnlockedPending
	QualifiedPartial
	QualifiedFull
)

func (s MachineState) String() string {
	switch s {
	case UnlockedPending:
		return "UNLOCKED_PENDING"
	case QualifiedPartial:
		return "QUALIFIED_PARTIAL"
	case QualifiedFull:
		return "QUALIFIED_FULL"
	}
	return "LOCKED"
}

func (s MachineState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *MachineState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "UNLOCKED_PENDING":
		*s = UnlockedPending
	case "QUALIFIED_PARTIAL":
		*s = QualifiedPartial
	case "QUALIFIED_FULL":
		*s = QualifiedFull
	default:
		*s = Locked
	}
	return nil
}

// LevelGateState is the derived qualification state of one level.
type LevelGateState struct {
	Status             LevelStatus       `json:"status"`
	DistinctEvaluators int               `json:"distinct_evaluators"`
	CoursesCleared     [CourseCount]bool `json:"courses_cleared"`
	State              MachineState      `json:"state"`
}

// AllCoursesCleared reports whether every course's latest status is CLEARED.
func (gs LevelGateState) AllCoursesCleared() bool {
	for _, cleared := range gs.CoursesCleared {
		if !cleared {
			return false
		}
	}
	return true
}

// Reason codes for submit-time downgrades. Downgrades are business outcomes,
// returned as warnings, never as errors.
type Reason string

const (
	ReasonCoursesIncomplete Reason = "courses_incomplete"
	ReasonBelowThreshold    Reason = "below_threshold"
	ReasonMissingReferral   Reason = "missing_manager_referral"
)

// Warning reports one unmet qualification condition for a level.
type Warning struct {
	Level   Level  `json:"level"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// Progress is a trainer's derived gate state across all levels.
type Progress struct {
	TrainerID string                   `json:"trainer_id"`
	Gates     map[Level]LevelGateState `json:"gates"`
	Unlocked  map[Level]bool           `json:"unlocked"`
}
