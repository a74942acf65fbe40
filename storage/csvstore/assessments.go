package csvstore

import (
	"sync"

	"github.com/stemcert/backend/core"
	"github.com/stemcert/backend/core/assessment"
)

type assessmentRepository struct {
	path   string
	logger core.Logger

	mu sync.RWMutex // serializes read-modify-write of the backing file
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(path string, logger core.Logger) assessment.Repository {
	return &assessmentRepository{path: path, logger: logger}
}

// load absorbs unreadable-store faults: a broken file degrades to an empty
// schema-only table so read paths keep working; the fault is logged.
func (repo *assessmentRepository) load() []map[string]string {
	rows, err := readTable(repo.path, Columns())
	if err != nil {
		repo.logger.Warn("assessment store unreadable; falling back to empty table", err)
		return nil
	}
	return rows
}

func (repo *assessmentRepository) QueryAllRows() ([]assessment.Row, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	raw := repo.load()
	rows := make([]assessment.Row, 0, len(raw))
	for _, cells := range raw {
		rows = append(rows, UnmarshalRow(cells))
	}
	return rows, nil
}

func (repo *assessmentRepository) QueryRowsByTrainerID(trainerID string) ([]assessment.Row, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var rows []assessment.Row
	for _, cells := range repo.load() {
		if cells[colTrainerID] == trainerID {
			rows = append(rows, UnmarshalRow(cells))
		}
	}
	return rows, nil
}

// AppendOrUpdateLast replaces the trainer's most recent row from the same
// evaluator, or appends when there is none. Overwrites are logged: the
// replaced submission is gone from the file afterwards.
func (repo *assessmentRepository) AppendOrUpdateLast(row assessment.Row) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	raw := repo.load()
	cells := MarshalRow(row)

	last := -1
	for i := range raw {
		if raw[i][colTrainerID] != row.TrainerID {
			continue
		}
		if raw[i][colSubmissionID] == row.SubmissionID || raw[i][colEvaluatorUsername] == row.EvaluatorUsername {
			last = i
		}
	}
	if last >= 0 {
		if prev := raw[last][colSubmissionID]; prev != "" && prev != row.SubmissionID {
			repo.logger.Warn("overwriting latest assessment row for trainer " + row.TrainerID + " (submission " + prev + ")")
		}
		raw[last] = cells
	} else {
		raw = append(raw, cells)
	}
	return writeTable(repo.path, Columns(), raw)
}
