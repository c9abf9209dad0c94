package services

import (
	"context"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	"github.com/SscSPs/btc_rate_service/internal/dto"
)

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// CreateUser validates the request, hashes the password and stores the new user.
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserWriterSvc
}
