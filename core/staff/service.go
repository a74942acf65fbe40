package staff

import (
	"errors"
	"time"

	"github.com/stemcert/backend/core"
)

var (
	ErrNotFound       = errors.New("staff member not found")
	ErrUsernameExists = errors.New("a staff member with this username already exists")
)

type (
	Repository interface {
		GetByUsername(username string) (User, error)
		QueryAll() ([]User, error)
		CreateUser(usr User) (User, error)
		UpdateUser(usr User) (User, error)
		DeleteUser(username string) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) CheckUniqueness(username string) error {
	if _, err := svc.repo.GetByUsername(username); err == nil {
		return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	} else if err != ErrNotFound {
		return err
	}
	return nil
}

func (svc *Service) Create(nu NewUser) (User, error) {
	usr := User{
		Username:  nu.Username,
		FullName:  nu.FullName,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAll()
}

func (svc *Service) GetByUsername(uname string) (User, error) {
	return svc.repo.GetByUsername(core.CleanString(uname, true /* lower */))
}

func (svc *Service) Update(uname string, uu UpdateUser) (User, error) {
	usr, err := svc.GetByUsername(uname)
	if err != nil {
		return User{}, err
	}
	if err := uu.Validate(usr); err != nil {
		return User{}, err
	}

	usr.FullName = uu.FullName
	usr.Email = uu.Email
	usr.Role = uu.Role
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(usr)
}

func (svc *Service) SetPassword(uname, pwd string) error {
	usr, err := svc.GetByUsername(uname)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = svc.repo.UpdateUser(usr)
	return err
}

func (svc *Service) Delete(uname string) error {
	return svc.repo.DeleteUser(core.CleanString(uname, true /* lower */))
}

// Authenticate checks a (username, password) pair against the staff table.
func (svc *Service) Authenticate(uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(uname)
	if err != nil {
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, err
	}
	return usr, nil
}
