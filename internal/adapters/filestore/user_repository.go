package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portsrepo "github.com/SscSPs/btc_rate_service/internal/core/ports/repositories"
)

// usersFile is the on-disk layout: {"users":[{"email":..., "hashedPassword":...}]}.
type usersFile struct {
	Users []userRecord `json:"users"`
}

type userRecord struct {
	Email          string     `json:"email"`
	HashedPassword string     `json:"hashedPassword"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// UserRepository keeps users in a single JSON file. Writers in this process are
// serialized and every write replaces the file atomically. Other processes writing
// the same file are not coordinated.
type UserRepository struct {
	path string
	mu   sync.RWMutex
}

// NewUserRepository returns a repository backed by path. The file is created on first write.
func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

func (r *UserRepository) FindUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	db, err := r.load()
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(db.Users))
	for _, rec := range db.Users {
		users = append(users, rec.toDomain())
	}
	return users, nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	db, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range db.Users {
		if rec.Email == email {
			user := rec.toDomain()
			return &user, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.load()
	if err != nil {
		return err
	}
	for _, rec := range db.Users {
		if rec.Email == user.Email {
			return apperrors.ErrDuplicate
		}
	}

	rec := userRecord{Email: user.Email, HashedPassword: user.PasswordHash}
	if !user.CreatedAt.IsZero() {
		createdAt := user.CreatedAt
		rec.CreatedAt = &createdAt
	}
	db.Users = append(db.Users, rec)
	return r.store(db)
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.load()
	if err != nil {
		return err
	}
	for i := range db.Users {
		if db.Users[i].Email == email {
			db.Users[i].HashedPassword = passwordHash
			return r.store(db)
		}
	}
	return apperrors.ErrNotFound
}

func (r *UserRepository) load() (*usersFile, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &usersFile{}, nil
		}
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	var db usersFile
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("failed to parse users file %s: %w", r.path, err)
	}
	return &db, nil
}

// store writes to a temp file in the same directory and renames it over the original.
func (r *UserRepository) store(db *usersFile) error {
	data, err := json.Marshal(db)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp users file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write users file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to sync users file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close users file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace users file: %w", err)
	}
	return nil
}

func (rec userRecord) toDomain() domain.User {
	user := domain.User{Email: rec.Email, PasswordHash: rec.HashedPassword}
	if rec.CreatedAt != nil {
		user.CreatedAt = *rec.CreatedAt
	}
	return user
}
