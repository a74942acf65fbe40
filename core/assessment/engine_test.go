package assessment

import (
	"testing"
	"time"
)

func scores(role Role, val int) map[string]int {
	s := make(map[string]int)
	for _, p := range role.Parameters() {
		s[p.Name] = val
	}
	return s
}

// historyRow builds one submitted row with every course of the level set to status.
func historyRow(trainerID, evaluator string, role Role, l Level, status CourseStatus, levelStatus LevelStatus) Row {
	row := Row{
		TrainerID:         trainerID,
		EvaluatorUsername: evaluator,
		EvaluatorRole:     role,
		AssessedAt:        time.Now(),
	}
	lr := row.Level(l)
	for i := 0; i < CourseCount; i++ {
		lr.Courses[i] = CourseResult{
			Name:    "Course",
			Passed:  status == CourseCleared,
			Status:  status,
			Average: 80,
		}
	}
	lr.Status = levelStatus
	return row
}

func TestScoreCourse(t *testing.T) {
	tests := []struct {
		name    string
		scores  map[string]int
		role    Role
		wantTot int
		wantAvg float64
	}{
		{name: "empty", scores: nil, role: RoleTechnical, wantTot: 0, wantAvg: 0},
		{
			name:    "technical max",
			scores:  map[string]int{"Has Knowledge of STEM": 5, "Ability to integrate STEM With related activities": 10, "Discusses Up-to-date information related to STEM": 5, "Provides Course Outline": 5, "Language Fluency": 5, "Preparation with Lesson Plan / Practicals": 5},
			role:    RoleTechnical,
			wantTot: 35,
			wantAvg: 35.0 / 6,
		},
		{
			name:    "clamps above max",
			scores:  map[string]int{"Language Fluency": 99},
			role:    RoleTechnical,
			wantTot: 5,
			wantAvg: 5.0 / 6,
		},
		{
			name:    "clamps below zero",
			scores:  map[string]int{"Pleasing Look": -3, "Poised & Confident": 4},
			role:    RoleSchoolOperations,
			wantTot: 4,
			wantAvg: 4.0 / 5,
		},
		{
			name:    "ignores parameters of the other role",
			scores:  map[string]int{"Pleasing Look": 5},
			role:    RoleTechnical,
			wantTot: 0,
			wantAvg: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tot, avg := ScoreCourse(tt.scores, tt.role)
			if tot != tt.wantTot {
				t.Errorf("ScoreCourse() total = %d, want %d", tot, tt.wantTot)
			}
			if avg != tt.wantAvg {
				t.Errorf("ScoreCourse() average = %v, want %v", avg, tt.wantAvg)
			}
		})
	}
}

func TestScoreCourse_integrationParamDominates(t *testing.T) {
	// only the STEM integration parameter accepts up to 10; every other
	// technical parameter caps at 5.
	tot, _ := ScoreCourse(map[string]int{"Ability to integrate STEM With related activities": 10}, RoleTechnical)
	if tot != 10 {
		t.Errorf("integration parameter total = %d, want 10", tot)
	}

	full := scores(RoleTechnical, 10)
	tot, _ = ScoreCourse(full, RoleTechnical)
	want := 5*(len(technicalParams)-1) + 10
	if tot != want {
		t.Errorf("max total = %d, want %d", tot, want)
	}
}

func TestComputeGateStates(t *testing.T) {
	const id = "TR001"

	t.Run("no history", func(t *testing.T) {
		gates := ComputeGateStates(nil)
		if got := gates[Level1].State; got != UnlockedPending {
			t.Errorf("level 1 state = %s, want UNLOCKED_PENDING", got)
		}
		for _, l := range []Level{Level2, Level3} {
			if got := gates[l].State; got != Locked {
				t.Errorf("%s state = %s, want LOCKED", l, got)
			}
		}
	})

	t.Run("single evaluator is partial", func(t *testing.T) {
		history := []Row{
			historyRow(id, "alice", RoleTechnical, Level1, CourseCleared, Qualified),
		}
		gs := ComputeGateStates(history)[Level1]
		if gs.State != QualifiedPartial {
			t.Errorf("state = %s, want QUALIFIED_PARTIAL", gs.State)
		}
		if gs.Status != NotQualified {
			t.Errorf("status = %s, want NOT QUALIFIED", gs.Status)
		}
		if gs.DistinctEvaluators != 1 {
			t.Errorf("distinct evaluators = %d, want 1", gs.DistinctEvaluators)
		}
	})

	t.Run("same evaluator twice stays partial", func(t *testing.T) {
		history := []Row{
			historyRow(id, "alice", RoleTechnical, Level1, CourseCleared, Qualified),
			historyRow(id, "alice", RoleTechnical, Level1, CourseCleared, Qualified),
		}
		gs := ComputeGateStates(history)[Level1]
		if gs.State != QualifiedPartial {
			t.Errorf("state = %s, want QUALIFIED_PARTIAL", gs.State)
		}
	})

	t.Run("both roles from distinct evaluators fully qualify", func(t *testing.T) {
		history := []Row{
			historyRow(id, "alice", RoleTechnical, Level1, CourseCleared, Qualified),
			historyRow(id, "bob", RoleSchoolOperations, Level1, CourseCleared, Qualified),
		}
		gs := ComputeGateStates(history)[Level1]
		if gs.State != QualifiedFull {
			t.Errorf("state = %s, want QUALIFIED_FULL", gs.State)
		}
		if gs.Status != Qualified {
			t.Errorf("status = %s, want QUALIFIED", gs.Status)
		}
	})

	t.Run("latest course status wins", func(t *testing.T) {
		history := []Row{
			historyRow(id, "alice", RoleTechnical, Level1, CourseCleared, Qualified),
			historyRow(id, "alice", RoleTechnical, Level1, CourseRedo, NotQualified),
		}
		gs := ComputeGateStates(history)[Level1]
		if gs.AllCoursesCleared() {
			t.Error("courses still cleared after a REDO resubmission")
		}
	})

	t.Run("clearing a level unlocks the next", func(t *testing.T) {
		history := []Row{
			historyRow(id, "alice", RoleTechnical, Level1, CourseCleared, Qualified),
		}
		gates := ComputeGateStates(history)
		if !IsLevelUnlocked(Level2, gates) {
			t.Error("level 2 locked after level 1 cleared")
		}
		if IsLevelUnlocked(Level3, gates) {
			t.Error("level 3 unlocked without level 2 cleared")
		}
		if gates[Level2].State != UnlockedPending {
			t.Errorf("level 2 state = %s, want UNLOCKED_PENDING", gates[Level2].State)
		}
	})
}

func TestAdjudicate(t *testing.T) {
	fullCourses := func(avg float64) *[CourseCount]CourseResult {
		var cs [CourseCount]CourseResult
		for i := range cs {
			cs[i] = CourseResult{Name: "Course", Passed: true, Status: CourseCleared, Average: avg}
		}
		return &cs
	}

	t.Run("passes through without two evaluators", func(t *testing.T) {
		status, warnings := Adjudicate(Level1, fullCourses(10), Qualified, "", 1)
		if status != Qualified {
			t.Errorf("status = %s, want QUALIFIED", status)
		}
		if warnings != nil {
			t.Errorf("warnings = %v, want none", warnings)
		}
	})

	t.Run("not qualified proposals pass through", func(t *testing.T) {
		status, warnings := Adjudicate(Level1, fullCourses(99), NotQualified, "", 2)
		if status != NotQualified || warnings != nil {
			t.Errorf("Adjudicate() = (%s, %v), want pass-through", status, warnings)
		}
	})

	t.Run("qualifies when all conditions hold", func(t *testing.T) {
		status, warnings := Adjudicate(Level1, fullCourses(80), Qualified, "", 2)
		if status != Qualified {
			t.Errorf("status = %s, want QUALIFIED", status)
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %v, want none", warnings)
		}
	})

	t.Run("downgrades below threshold", func(t *testing.T) {
		status, warnings := Adjudicate(Level1, fullCourses(70), Qualified, "", 2)
		if status != NotQualified {
			t.Errorf("status = %s, want NOT QUALIFIED", status)
		}
		if len(warnings) != 1 || warnings[0].Reason != ReasonBelowThreshold {
			t.Errorf("warnings = %v, want single below_threshold", warnings)
		}
	})

	t.Run("level 3 collects every unmet condition", func(t *testing.T) {
		cs := fullCourses(80)  // below the 90 threshold for level 3
		cs[9] = CourseResult{} // and one course missing
		status, warnings := Adjudicate(Level3, cs, Qualified, "", 2)
		if status != NotQualified {
			t.Errorf("status = %s, want NOT QUALIFIED", status)
		}
		reasons := make(map[Reason]bool, len(warnings))
		for _, w := range warnings {
			reasons[w.Reason] = true
		}
		for _, want := range []Reason{ReasonCoursesIncomplete, ReasonBelowThreshold, ReasonMissingReferral} {
			if !reasons[want] {
				t.Errorf("missing warning %s in %v", want, warnings)
			}
		}
	})

	t.Run("level 3 referral satisfies the check", func(t *testing.T) {
		status, warnings := Adjudicate(Level3, fullCourses(95), Qualified, "manager@test.cd", 2)
		if status != Qualified {
			t.Errorf("status = %s, want QUALIFIED, warnings %v", status, warnings)
		}
	})
}

func Test_buildCourse(t *testing.T) {
	t.Run("computes totals from scores", func(t *testing.T) {
		in := &CourseInput{Name: "Robotics", Passed: true, Scores: scores(RoleSchoolOperations, 4), Status: CourseCleared}
		cr := buildCourse(in, RoleSchoolOperations, 0)
		if cr.Total != 20 {
			t.Errorf("total = %d, want 20", cr.Total)
		}
		if cr.Average != 4 {
			t.Errorf("average = %v, want 4", cr.Average)
		}
		if cr.Attempts != 0 {
			t.Errorf("attempts = %d, want 0", cr.Attempts)
		}
	})

	t.Run("explicit totals are kept", func(t *testing.T) {
		in := &CourseInput{Name: "Robotics", Passed: true, Scores: scores(RoleTechnical, 3), Total: 88, Average: 88, Status: CourseCleared}
		cr := buildCourse(in, RoleTechnical, 0)
		if cr.Total != 88 || cr.Average != 88 {
			t.Errorf("totals = (%d, %v), want evaluator-entered (88, 88)", cr.Total, cr.Average)
		}
	})

	t.Run("redo increments attempts", func(t *testing.T) {
		in := &CourseInput{Name: "Robotics", Status: CourseRedo}
		cr := buildCourse(in, RoleTechnical, 2)
		if cr.Attempts != 3 {
			t.Errorf("attempts = %d, want 3", cr.Attempts)
		}
	})

	t.Run("cleared keeps the attempt counter", func(t *testing.T) {
		in := &CourseInput{Name: "Robotics", Passed: true, Status: CourseCleared}
		cr := buildCourse(in, RoleTechnical, 2)
		if cr.Attempts != 2 {
			t.Errorf("attempts = %d, want 2", cr.Attempts)
		}
	})
}

func TestLevelAverage(t *testing.T) {
	var cs [CourseCount]CourseResult
	for i := range cs {
		cs[i].Average = float64(i + 1) // 1..10
	}
	if avg := LevelAverage(&cs); avg != 5.5 {
		t.Errorf("LevelAverage() = %v, want 5.5", avg)
	}
}
