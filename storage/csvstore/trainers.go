package csvstore

import (
	"sync"

	"github.com/stemcert/backend/core"
	"github.com/stemcert/backend/core/trainer"
)

var trainerColumns = []string{"Trainer ID", "Trainer Name", "Department", "Branch", "Email"}

type trainerDirectory struct {
	path   string
	logger core.Logger

	mu sync.RWMutex
}

var _ trainer.Directory = (*trainerDirectory)(nil) // interface compliance check

func NewTrainerDirectory(path string, logger core.Logger) trainer.Directory {
	return &trainerDirectory{path: path, logger: logger}
}

func (dir *trainerDirectory) load() []map[string]string {
	rows, err := readTable(dir.path, trainerColumns)
	if err != nil {
		dir.logger.Warn("trainer directory unreadable; falling back to empty table", err)
		return nil
	}
	return rows
}

func marshalTrainer(rec trainer.Record) map[string]string {
	return map[string]string{
		"Trainer ID":   rec.ID,
		"Trainer Name": rec.Name,
		"Department":   rec.Department,
		"Branch":       rec.Branch,
		"Email":        rec.Email,
	}
}

func unmarshalTrainer(cells map[string]string) trainer.Record {
	return trainer.Record{
		ID:         cells["Trainer ID"],
		Name:       cells["Trainer Name"],
		Department: cells["Department"],
		Branch:     cells["Branch"],
		Email:      cells["Email"],
	}
}

func (dir *trainerDirectory) GetByID(id string) (trainer.Record, error) {
	dir.mu.RLock()
	defer dir.mu.RUnlock()

	for _, cells := range dir.load() {
		if cells["Trainer ID"] == id {
			return unmarshalTrainer(cells), nil
		}
	}
	return trainer.Record{}, trainer.ErrNotFound
}

func (dir *trainerDirectory) QueryAll() ([]trainer.Record, error) {
	dir.mu.RLock()
	defer dir.mu.RUnlock()

	raw := dir.load()
	recs := make([]trainer.Record, 0, len(raw))
	for _, cells := range raw {
		recs = append(recs, unmarshalTrainer(cells))
	}
	return recs, nil
}

func (dir *trainerDirectory) Upsert(rec trainer.Record) error {
	dir.mu.Lock()
	defer dir.mu.Unlock()

	raw := dir.load()
	cells := marshalTrainer(rec)
	for i := range raw {
		if raw[i]["Trainer ID"] == rec.ID {
			raw[i] = cells
			return writeTable(dir.path, trainerColumns, raw)
		}
	}
	raw = append(raw, cells)
	return writeTable(dir.path, trainerColumns, raw)
}
