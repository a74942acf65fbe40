package reportsvc

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemcert/backend/core/assessment"
	"github.com/stemcert/backend/storage/csvstore"
)

func sampleRow(evaluator string) assessment.Row {
	row := assessment.Row{
		SubmissionID:      "sub-1",
		TrainerID:         "TR001",
		TrainerName:       "Jane Doe",
		Department:        "Science",
		EvaluatorUsername: evaluator,
		EvaluatorRole:     assessment.RoleTechnical,
		AssessedAt:        time.Date(2023, 4, 12, 0, 0, 0, 0, time.UTC),
	}
	lr := row.Level(assessment.Level1)
	for i := 0; i < assessment.CourseCount; i++ {
		lr.Courses[i] = assessment.CourseResult{
			Name:    "Robotics",
			Passed:  true,
			Scores:  map[string]int{"Language Fluency": 4},
			Total:   80,
			Average: 80,
			Status:  assessment.CourseCleared,
		}
	}
	lr.Total = 800
	lr.Average = 80
	lr.Status = assessment.Qualified
	return row
}

func TestCSVText(t *testing.T) {
	rows := []assessment.Row{sampleRow("alice")}

	text, err := CSVText(rows)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.Len(t, lines, 2, "want header + 1 row")
	assert.True(t, strings.HasPrefix(lines[0], "Submission ID,Trainer ID"), "unexpected header")
	assert.Contains(t, lines[1], "TR001")
	assert.Contains(t, lines[1], "Jane Doe")

	// deterministic output
	again, err := CSVText(rows)
	require.NoError(t, err)
	assert.Equal(t, text, again)

	// an empty history still renders the header
	header, err := CSVText(nil)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimRight(header, "\n"), ","), len(csvstore.Columns()))
}

func TestPDF(t *testing.T) {
	doc, err := PDF([]assessment.Row{sampleRow("alice")}, assessment.RoleTechnical)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")), "output does not start with a PDF header")

	_, err = PDF(nil, assessment.RoleTechnical)
	assert.Error(t, err, "empty history must not render")
}
