package assessment

import "fmt"

// ComputeGateStates derives each level's qualification state from a trainer's
// history. A level is QUALIFIED only once rows from two distinct evaluators,
// one Technical and one School Operations, each carry QUALIFIED for it.
// History is expected in submission order; the latest word on a course wins.
func ComputeGateStates(history []Row) map[Level]LevelGateState {
	gates := make(map[Level]LevelGateState, LevelCount)

	for _, l := range Levels() {
		var gs LevelGateState
		gs.Status = NotQualified

		var hasTechnical, hasOperations bool

		for i := range history {
			row := &history[i]
			lr := row.Level(l)

			for c := 0; c < CourseCount; c++ {
				if status := lr.Courses[c].Status; status != "" {
					gs.CoursesCleared[c] = status == CourseCleared
				}
			}

			if lr.Status != Qualified {
				continue
			}
			switch row.EvaluatorRole {
			case RoleTechnical:
				hasTechnical = true
			case RoleSchoolOperations:
				hasOperations = true
			}
		}

		gs.DistinctEvaluators = len(qualifiedEvaluators(history, l))
		if hasTechnical && hasOperations {
			gs.Status = Qualified
		}

		unlocked := l == Level1
		if !unlocked {
			prev := gates[l-1]
			unlocked = prev.AllCoursesCleared()
		}
		switch {
		case gs.Status == Qualified && gs.DistinctEvaluators >= 2:
			gs.State = QualifiedFull
		case !unlocked:
			gs.State = Locked
		case gs.DistinctEvaluators >= 1:
			gs.State = QualifiedPartial
		default:
			gs.State = UnlockedPending
		}

		gates[l] = gs
	}
	return gates
}

// qualifiedEvaluators collects the usernames behind the level's QUALIFIED rows.
func qualifiedEvaluators(history []Row, l Level) map[string]struct{} {
	evaluators := make(map[string]struct{})
	for i := range history {
		row := &history[i]
		if row.Level(l).Status == Qualified && row.EvaluatorUsername != "" {
			evaluators[row.EvaluatorUsername] = struct{}{}
		}
	}
	return evaluators
}

// IsLevelUnlocked gates level access. Level 1 is always open; levels 2 and 3
// open only once every one of the prior level's ten courses is cleared.
func IsLevelUnlocked(l Level, gates map[Level]LevelGateState) bool {
	if l == Level1 {
		return true
	}
	if !l.Valid() {
		return false
	}
	return gates[l-1].AllCoursesCleared()
}

// ScoreCourse sums a course's parameter scores for the role's parameter set.
// Missing parameters count as 0; each score is clamped to [0, max]. The
// average is relative to the role's parameter count.
func ScoreCourse(scores map[string]int, role Role) (int, float64) {
	params := role.Parameters()
	var total int
	for _, p := range params {
		v := scores[p.Name]
		if v < 0 {
			v = 0
		} else if v > p.Max {
			v = p.Max
		}
		total += v
	}
	return total, float64(total) / float64(len(params))
}

// LevelAverage is the aggregate average over a level's courses: the mean of
// the ten per-course averages.
func LevelAverage(courses *[CourseCount]CourseResult) float64 {
	var sum float64
	for i := range courses {
		sum += courses[i].Average
	}
	return sum / CourseCount
}

// Adjudicate applies the qualification thresholds to a proposed level status.
// A QUALIFIED proposal is only adjudicated once two distinct evaluators are in
// play; otherwise the proposal passes through unchanged. Downgrades report
// every unmet condition.
func Adjudicate(l Level, courses *[CourseCount]CourseResult, proposed LevelStatus, referral string, distinctEvaluators int) (LevelStatus, []Warning) {
	if proposed != Qualified || distinctEvaluators < 2 {
		return proposed, nil
	}

	var warnings []Warning
	allFilled := true
	for i := range courses {
		if courses[i].Name == "" || !courses[i].Passed {
			allFilled = false
			break
		}
	}
	if !allFilled {
		warnings = append(warnings, Warning{
			Level:   l,
			Reason:  ReasonCoursesIncomplete,
			Message: fmt.Sprintf("%s requires all %d courses named and passed", l, CourseCount),
		})
	}
	if avg := LevelAverage(courses); avg < l.Threshold() {
		warnings = append(warnings, Warning{
			Level:   l,
			Reason:  ReasonBelowThreshold,
			Message: fmt.Sprintf("%s requires an average of at least %.0f%% (got %.1f%%)", l, l.Threshold(), avg),
		})
	}
	if l == Level3 && referral == "" {
		warnings = append(warnings, Warning{
			Level:   l,
			Reason:  ReasonMissingReferral,
			Message: fmt.Sprintf("%s requires a manager referral", l),
		})
	}

	if len(warnings) > 0 {
		return NotQualified, warnings
	}
	return Qualified, nil
}

// priorAttempts returns the last recorded attempt counter for a course.
func priorAttempts(history []Row, l Level, course int) int {
	var attempts int
	for i := range history {
		if n := history[i].Level(l).Courses[course].Attempts; n > 0 {
			attempts = n
		}
	}
	return attempts
}

// buildCourse materializes one CourseResult from its input. REDO increments
// the course's attempt counter; CLEARED does not.
func buildCourse(in *CourseInput, role Role, attempts int) CourseResult {
	cr := CourseResult{
		Name:     in.Name,
		Passed:   in.Passed,
		Total:    in.Total,
		Average:  in.Average,
		Status:   in.Status,
		Remarks:  in.Remarks,
		Attempts: attempts,
	}
	if len(in.Scores) > 0 {
		cr.Scores = make(map[string]int, len(in.Scores))
		for _, p := range role.Parameters() {
			if v, ok := in.Scores[p.Name]; ok {
				if v < 0 {
					v = 0
				} else if v > p.Max {
					v = p.Max
				}
				cr.Scores[p.Name] = v
			}
		}
	}
	if cr.Total == 0 && cr.Average == 0 && len(cr.Scores) > 0 {
		cr.Total, cr.Average = ScoreCourse(cr.Scores, role)
	}
	if cr.Status == CourseRedo {
		cr.Attempts++
	}
	return cr
}

// buildLevel assembles one level block: per-course results, aggregate total
// (sum of course totals), aggregate average (mean of course averages) and the
// adjudicated status.
func buildLevel(l Level, in *LevelInput, role Role, history []Row, distinctEvaluators int) (LevelResult, []Warning) {
	var lr LevelResult
	for i := range in.Courses {
		lr.Courses[i] = buildCourse(&in.Courses[i], role, priorAttempts(history, l, i))
		lr.Total += lr.Courses[i].Total
	}
	lr.Average = LevelAverage(&lr.Courses)
	lr.Reminder = in.Reminder
	if l == Level3 {
		lr.ManagerReferral = in.ManagerReferral
	}

	status, warnings := Adjudicate(l, &lr.Courses, in.Proposed, lr.ManagerReferral, distinctEvaluators)
	lr.Status = status
	return lr, warnings
}
