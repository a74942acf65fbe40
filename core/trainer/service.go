package trainer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stemcert/backend/core"
)

var ErrNotFound = errors.New("trainer not found")

type (
	// Directory is the trainer identity store.
	Directory interface {
		GetByID(id string) (Record, error)
		QueryAll() ([]Record, error)
		// Upsert updates the record matching Record.ID in place, or appends it.
		Upsert(rec Record) error
	}

	Service struct {
		dir    Directory
		logger core.Logger
	}
)

func NewService(dir Directory, logger core.Logger) *Service {
	return &Service{dir: dir, logger: logger}
}

func (svc *Service) GetByID(id string) (Record, error) {
	return svc.dir.GetByID(strings.ToUpper(core.CleanString(id)))
}

func (svc *Service) QueryAll() ([]Record, error) {
	return svc.dir.QueryAll()
}

func (svc *Service) Filter(qf QueryFilter) ([]Record, error) {
	qf.Clean()
	recs, err := svc.dir.QueryAll()
	if err != nil {
		return nil, err
	}
	if qf.IsEmpty() {
		return recs, nil
	}
	matched := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if qf.Match(rec) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// Create registers a trainer. An empty NewTrainer.ID requests an
// auto-generated one; identity fields must have validated already.
func (svc *Service) Create(nt NewTrainer) (Record, error) {
	id := nt.ID
	if id == "" {
		var err error
		if id, err = svc.NextAutoID(); err != nil {
			return Record{}, err
		}
	}
	rec := Record{
		ID:         id,
		Name:       nt.Name,
		Department: nt.Department,
		Branch:     nt.Branch,
		Email:      nt.Email,
	}
	if err := svc.dir.Upsert(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (svc *Service) Upsert(rec Record) error {
	return svc.dir.Upsert(rec)
}

// NextAutoID derives the next trainer ID from the numeric suffixes of
// existing TR00-prefixed IDs; TR001 when none exist.
func (svc *Service) NextAutoID() (string, error) {
	recs, err := svc.dir.QueryAll()
	if err != nil {
		return "", err
	}
	var max int
	for _, rec := range recs {
		if !strings.HasPrefix(rec.ID, IDPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(rec.ID, IDPrefix))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%d", IDPrefix, max+1), nil
}
