package csvstore

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/stemcert/backend/core/assessment"
)

// The assessment table uses a fixed, wide column schema: an identity block
// followed, per level, by course names, per-parameter scores and per-course
// and aggregate figures. Cells are addressed through the column builders
// below rather than ad-hoc string concatenation.

const (
	colSubmissionID      = "Submission ID"
	colTrainerID         = "Trainer ID"
	colTrainerName       = "Trainer Name"
	colDepartment        = "Department"
	colAssessedAt        = "Date of assessment"
	colEvaluatorUsername = "Evaluator Username"
	colEvaluatorRole     = "Evaluator Role"
	colManagerReferral   = "Manager Referral"

	scoreCardSent    = "Score Cards has been sent"
	scoreCardNotSent = "Score Cards has not been sent"

	dateLayout = "2006-01-02"
)

func colCourseName(l assessment.Level, course int) string {
	return fmt.Sprintf("%s Course :%d", l, course+1)
}

func colCourseParam(p assessment.Parameter, l assessment.Level, course int) string {
	return fmt.Sprintf("%s %s Course :%d", p.Label(), l, course+1)
}

func colCourseField(l assessment.Level, course int, field string) string {
	return fmt.Sprintf("%s Course :%d %s", l, course+1, field)
}

func colLevelField(l assessment.Level, field string) string {
	return fmt.Sprintf("%s %s", l, field)
}

var (
	columnsOnce sync.Once
	columns     []string
)

// Columns is the full assessment schema in file order.
func Columns() []string {
	columnsOnce.Do(func() {
		columns = append(columns,
			colSubmissionID, colTrainerID, colTrainerName, colDepartment, colAssessedAt,
			colEvaluatorUsername, colEvaluatorRole, colManagerReferral,
		)
		for _, l := range assessment.Levels() {
			for c := 0; c < assessment.CourseCount; c++ {
				columns = append(columns, colCourseName(l, c))
				for _, p := range assessment.AllParameters() {
					columns = append(columns, colCourseParam(p, l, c))
				}
				columns = append(columns,
					colCourseField(l, c, "TOTAL"),
					colCourseField(l, c, "AVERAGE"),
					colCourseField(l, c, "STATUS"),
					colCourseField(l, c, "ATTEMPTS"),
					colCourseField(l, c, "Remarks"),
				)
			}
			columns = append(columns,
				colLevelField(l, "TOTAL"),
				colLevelField(l, "AVERAGE"),
				colLevelField(l, "STATUS"),
				colLevelField(l, "Reminder"),
				colLevelField(l, "Score Card Status"),
			)
		}
	})
	return columns
}

// MarshalRow flattens a row onto the wide schema. Levels the evaluator did
// not submit stay as empty cells.
func MarshalRow(row assessment.Row) map[string]string {
	cells := make(map[string]string, len(Columns()))
	for _, name := range Columns() {
		cells[name] = ""
	}

	cells[colSubmissionID] = row.SubmissionID
	cells[colTrainerID] = row.TrainerID
	cells[colTrainerName] = row.TrainerName
	cells[colDepartment] = row.Department
	cells[colEvaluatorUsername] = row.EvaluatorUsername
	cells[colEvaluatorRole] = row.EvaluatorRole.String()
	if !row.AssessedAt.IsZero() {
		cells[colAssessedAt] = row.AssessedAt.Format(dateLayout)
	}

	for _, l := range assessment.Levels() {
		lr := row.Level(l)
		if !lr.Submitted() {
			continue
		}
		for c := 0; c < assessment.CourseCount; c++ {
			course := &lr.Courses[c]
			cells[colCourseName(l, c)] = course.Name
			for _, p := range assessment.AllParameters() {
				if v, ok := course.Scores[p.Name]; ok {
					cells[colCourseParam(p, l, c)] = strconv.Itoa(v)
				}
			}
			cells[colCourseField(l, c, "TOTAL")] = strconv.Itoa(course.Total)
			cells[colCourseField(l, c, "AVERAGE")] = strconv.FormatFloat(course.Average, 'g', -1, 64)
			cells[colCourseField(l, c, "STATUS")] = string(course.Status)
			cells[colCourseField(l, c, "ATTEMPTS")] = strconv.Itoa(course.Attempts)
			cells[colCourseField(l, c, "Remarks")] = course.Remarks
		}
		cells[colLevelField(l, "TOTAL")] = strconv.Itoa(lr.Total)
		cells[colLevelField(l, "AVERAGE")] = strconv.FormatFloat(lr.Average, 'g', -1, 64)
		cells[colLevelField(l, "STATUS")] = string(lr.Status)
		cells[colLevelField(l, "Reminder")] = lr.Reminder
		if lr.ScoreCardSent {
			cells[colLevelField(l, "Score Card Status")] = scoreCardSent
		} else {
			cells[colLevelField(l, "Score Card Status")] = scoreCardNotSent
		}
		if l == assessment.Level3 {
			cells[colManagerReferral] = lr.ManagerReferral
		}
	}
	return cells
}

// UnmarshalRow rebuilds a row from its cells. Numeric cells that fail to
// parse (or are empty) read as zero, matching the empty-string defaults
// synthesized for absent columns.
func UnmarshalRow(cells map[string]string) assessment.Row {
	row := assessment.Row{
		SubmissionID:      cells[colSubmissionID],
		TrainerID:         cells[colTrainerID],
		TrainerName:       cells[colTrainerName],
		Department:        cells[colDepartment],
		EvaluatorUsername: cells[colEvaluatorUsername],
	}
	row.EvaluatorRole, _ = assessment.ParseRole(cells[colEvaluatorRole])
	if v := cells[colAssessedAt]; v != "" {
		row.AssessedAt, _ = time.Parse(dateLayout, v)
	}

	for _, l := range assessment.Levels() {
		lr := row.Level(l)
		for c := 0; c < assessment.CourseCount; c++ {
			course := &lr.Courses[c]
			course.Name = cells[colCourseName(l, c)]
			for _, p := range assessment.AllParameters() {
				if v := cells[colCourseParam(p, l, c)]; v != "" {
					if course.Scores == nil {
						course.Scores = make(map[string]int)
					}
					course.Scores[p.Name] = atoi(v)
				}
			}
			course.Total = atoi(cells[colCourseField(l, c, "TOTAL")])
			course.Average = atof(cells[colCourseField(l, c, "AVERAGE")])
			course.Status = assessment.CourseStatus(cells[colCourseField(l, c, "STATUS")])
			course.Attempts = atoi(cells[colCourseField(l, c, "ATTEMPTS")])
			course.Remarks = cells[colCourseField(l, c, "Remarks")]
			course.Passed = course.Name != "" && course.Status == assessment.CourseCleared
		}
		lr.Total = atoi(cells[colLevelField(l, "TOTAL")])
		lr.Average = atof(cells[colLevelField(l, "AVERAGE")])
		lr.Status = assessment.LevelStatus(cells[colLevelField(l, "STATUS")])
		lr.Reminder = cells[colLevelField(l, "Reminder")]
		lr.ScoreCardSent = cells[colLevelField(l, "Score Card Status")] == scoreCardSent
		if l == assessment.Level3 && lr.Submitted() {
			lr.ManagerReferral = cells[colManagerReferral]
		}
	}
	return row
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
