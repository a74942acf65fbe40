package staff

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stemcert/backend/core"
)

// Roles map to the portals: evaluators score trainers (each account is bound
// to one scoring panel), viewers browse reports, admins manage staff accounts.
const (
	RoleTechnicalEvaluator = "technical_evaluator"
	RoleSchoolOpsEvaluator = "school_operations_evaluator"
	RoleViewer             = "viewer"
	RoleAdmin              = "admin"
)

var AllRoles = []string{RoleTechnicalEvaluator, RoleSchoolOpsEvaluator, RoleViewer, RoleAdmin}

type User struct {
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsEvaluator() bool {
	return u.Role == RoleTechnicalEvaluator || u.Role == RoleSchoolOpsEvaluator
}
func (u *User) IsViewer() bool { return u.Role == RoleViewer }
func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }

// NewUser contains information needed to create a new staff User.
type NewUser struct {
	Username string `json:"username" validate:"required,min=4,alphanum_"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=technical_evaluator school_operations_evaluator viewer admin"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username)
}

// UpdateUser defines what information may be provided to modify an existing User.
// The username is immutable.
type UpdateUser struct {
	FullName string `json:"full_name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,oneof=technical_evaluator school_operations_evaluator viewer admin"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

func (uu *UpdateUser) Validate(orig User) error {
	name := core.CleanString(uu.FullName)
	if name == "" {
		name = orig.FullName
	}
	uu.FullName = name

	email := core.CleanString(uu.Email, true /* lower */)
	if email == "" {
		email = orig.Email
	}
	uu.Email = email

	role := core.CleanString(uu.Role, true /* lower */)
	if role == "" {
		role = orig.Role
	}
	uu.Role = role

	return core.Validate.Struct(uu)
}
