package csvstore

import (
	"sync"
	"time"

	"github.com/stemcert/backend/core"
	"github.com/stemcert/backend/core/staff"
)

var staffColumns = []string{"username", "password_hash", "full_name", "email", "role", "created_at"}

type staffRepository struct {
	path   string
	logger core.Logger

	mu sync.RWMutex
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(path string, logger core.Logger) staff.Repository {
	return &staffRepository{path: path, logger: logger}
}

func (repo *staffRepository) load() []map[string]string {
	rows, err := readTable(repo.path, staffColumns)
	if err != nil {
		repo.logger.Warn("staff table unreadable; falling back to empty table", err)
		return nil
	}
	return rows
}

func marshalStaff(usr staff.User) map[string]string {
	var createdAt string
	if !usr.CreatedAt.IsZero() {
		createdAt = usr.CreatedAt.UTC().Format(time.RFC3339)
	}
	return map[string]string{
		"username":      usr.Username,
		"password_hash": string(usr.PasswordHash),
		"full_name":     usr.FullName,
		"email":         usr.Email,
		"role":          usr.Role,
		"created_at":    createdAt,
	}
}

func unmarshalStaff(cells map[string]string) staff.User {
	usr := staff.User{
		Username: cells["username"],
		FullName: cells["full_name"],
		Email:    cells["email"],
		Role:     cells["role"],
	}
	if hash := cells["password_hash"]; hash != "" {
		usr.PasswordHash = []byte(hash)
	}
	if v := cells["created_at"]; v != "" {
		usr.CreatedAt, _ = time.Parse(time.RFC3339, v)
	}
	return usr
}

func (repo *staffRepository) GetByUsername(username string) (staff.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, cells := range repo.load() {
		if cells["username"] == username {
			return unmarshalStaff(cells), nil
		}
	}
	return staff.User{}, staff.ErrNotFound
}

func (repo *staffRepository) QueryAll() ([]staff.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	raw := repo.load()
	users := make([]staff.User, 0, len(raw))
	for _, cells := range raw {
		users = append(users, unmarshalStaff(cells))
	}
	return users, nil
}

func (repo *staffRepository) CreateUser(usr staff.User) (staff.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	raw := repo.load()
	for i := range raw {
		if raw[i]["username"] == usr.Username {
			return staff.User{}, staff.ErrUsernameExists
		}
	}
	raw = append(raw, marshalStaff(usr))
	return usr, writeTable(repo.path, staffColumns, raw)
}

func (repo *staffRepository) UpdateUser(usr staff.User) (staff.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	raw := repo.load()
	for i := range raw {
		if raw[i]["username"] == usr.Username {
			raw[i] = marshalStaff(usr)
			return usr, writeTable(repo.path, staffColumns, raw)
		}
	}
	return staff.User{}, staff.ErrNotFound
}

func (repo *staffRepository) DeleteUser(username string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	raw := repo.load()
	for i := range raw {
		if raw[i]["username"] == username {
			raw = append(raw[:i], raw[i+1:]...)
			return writeTable(repo.path, staffColumns, raw)
		}
	}
	return staff.ErrNotFound
}
