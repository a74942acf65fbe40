package trainer

import (
	"strings"

	"github.com/stemcert/backend/core"
)

// IDPrefix is the fixed prefix of auto-generated trainer IDs (TR001, TR002, ...).
const IDPrefix = "TR00"

// Record is a trainer identity row. Created on first submission or supplied
// explicitly; later submissions may overwrite name, department and email.
type Record struct {
	ID         string `json:"trainer_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Branch     string `json:"branch"`
	Email      string `json:"email"`
}

// NewTrainer contains information needed to register a trainer. Leaving ID
// empty requests an auto-generated one, which in turn requires name,
// department and email to be present.
type NewTrainer struct {
	ID         string `json:"trainer_id"`
	Name       string `json:"name" validate:"required"`
	Department string `json:"department" validate:"required"`
	Branch     string `json:"branch"`
	Email      string `json:"email" validate:"required,email"`
}

func (nt *NewTrainer) Validate() error {
	nt.ID = strings.ToUpper(core.CleanString(nt.ID))
	nt.Name = core.CleanString(nt.Name)
	nt.Department = core.CleanString(nt.Department)
	nt.Branch = core.CleanString(nt.Branch)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return core.Validate.Struct(nt)
}

// QueryFilter applies AND over its non-empty fields. Search does a
// case-insensitive match on Record.Name or Record.ID.
type QueryFilter struct {
	Search     string `query:"search"`
	Branch     string `query:"branch"`
	Department string `query:"department"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Branch == "" && qf.Department == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Branch = core.CleanString(qf.Branch)
	qf.Department = core.CleanString(qf.Department)
}

func (qf *QueryFilter) Match(rec Record) bool {
	if qf.Branch != "" && rec.Branch != qf.Branch {
		return false
	}
	if qf.Department != "" && rec.Department != qf.Department {
		return false
	}
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(rec.Name), s) && !strings.Contains(strings.ToLower(rec.ID), s) {
			return false
		}
	}
	return true
}
