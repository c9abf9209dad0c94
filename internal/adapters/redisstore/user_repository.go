package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portsrepo "github.com/SscSPs/btc_rate_service/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

// DefaultUsersKey is the hash holding one field per user email.
const DefaultUsersKey = "users"

type userValue struct {
	HashedPassword string    `json:"hashedPassword"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserRepository stores users in a single Redis hash. HSETNX makes creation
// atomic across every instance sharing the Redis server.
type UserRepository struct {
	client redis.Cmdable
	key    string
}

// NewUserRepository creates a repository; an empty key selects DefaultUsersKey.
func NewUserRepository(client redis.Cmdable, key string) *UserRepository {
	if key == "" {
		key = DefaultUsersKey
	}
	return &UserRepository{client: client, key: key}
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	payload, err := json.Marshal(userValue{HashedPassword: user.PasswordHash, CreatedAt: user.CreatedAt})
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	created, err := r.client.HSetNX(ctx, r.key, user.Email, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	if !created {
		return apperrors.ErrDuplicate
	}
	return nil
}

// UpdatePasswordHash rewrites the user's value, keeping its creation time.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	user, err := r.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(userValue{HashedPassword: passwordHash, CreatedAt: user.CreatedAt})
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := r.client.HSet(ctx, r.key, email, payload).Err(); err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	return nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	raw, err := r.client.HGet(ctx, r.key, email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	user, err := decodeUser(email, raw)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindUsers(ctx context.Context) ([]domain.User, error) {
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]domain.User, 0, len(all))
	for email, raw := range all {
		user, err := decodeUser(email, raw)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func decodeUser(email, raw string) (domain.User, error) {
	var v userValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return domain.User{}, fmt.Errorf("failed to decode user %s: %w", email, err)
	}
	return domain.User{Email: email, PasswordHash: v.HashedPassword, CreatedAt: v.CreatedAt}, nil
}
