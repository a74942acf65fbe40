package reportsvc

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/stemcert/backend/core/assessment"
)

const (
	pdfFont     = "Helvetica"
	pdfFontSize = 12
	lineHeight  = 7 // mm
)

// PDF renders a trainer's assessment report: summary lines per recorded row,
// then the latest row's per-level course detail for the evaluator role's
// parameter set. Pages break automatically when vertical space runs out.
func PDF(rows []assessment.Row, role assessment.Role) ([]byte, error) {
	if len(rows) == 0 {
		return nil, errors.New("no rows to render")
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont(pdfFont, "", pdfFontSize)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	latest := &rows[len(rows)-1]

	line := func(format string, args ...interface{}) {
		doc.CellFormat(0, lineHeight, fmt.Sprintf(format, args...), "", 1, "L", false, 0, "")
	}

	line("Trainer Assessment Report")
	line("Generated on: %s", time.Now().Format("02-01-2006 03:04 PM"))
	line("Trainer: %s (ID: %s)", latest.TrainerName, latest.TrainerID)
	line("Evaluator: %s (%s)", latest.EvaluatorUsername, latest.EvaluatorRole)
	doc.Ln(lineHeight)

	line("Assessment Records")
	for i := range rows {
		row := &rows[i]
		line("Date of Assessment: %s", row.AssessedAt.Format("2006-01-02"))
		for _, l := range assessment.Levels() {
			lr := row.Level(l)
			line("%s TOTAL: %d", l, lr.Total)
			line("%s AVERAGE: %g", l, lr.Average)
			line("%s STATUS: %s", l, orNA(string(lr.Status)))
		}
		line("Manager Referral: %s", orNA(row.Level(assessment.Level3).ManagerReferral))
		doc.Ln(lineHeight)
	}

	for _, l := range assessment.Levels() {
		lr := latest.Level(l)
		line("%s Courses", l)
		for c := 0; c < assessment.CourseCount; c++ {
			course := &lr.Courses[c]
			line("Course :%d: %s", c+1, orNA(course.Name))
			for _, p := range role.Parameters() {
				line("  %s: %d", p.Label(), course.Scores[p.Name])
			}
			line("  TOTAL: %d", course.Total)
			line("  AVERAGE: %g", course.Average)
			line("  STATUS: %s", orNA(string(course.Status)))
			if course.Remarks != "" {
				line("  REMARKS: %s", course.Remarks)
			}
		}
		doc.Ln(lineHeight)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "rendering PDF report")
	}
	return buf.Bytes(), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
