package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/SscSPs/btc_rate_service/internal/core/services"
	"github.com/SscSPs/btc_rate_service/internal/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const testCost = bcrypt.MinCost

// recordingComparer wraps bcrypt and records the cost of every hash it is asked to compare.
type recordingComparer struct {
	mu    sync.Mutex
	costs []int
}

func (r *recordingComparer) Compare(hash, password []byte) error {
	cost, err := bcrypt.Cost(hash)
	r.mu.Lock()
	if err != nil {
		cost = -1
	}
	r.costs = append(r.costs, cost)
	r.mu.Unlock()
	return bcrypt.CompareHashAndPassword(hash, password)
}

func (r *recordingComparer) reset() {
	r.mu.Lock()
	r.costs = nil
	r.mu.Unlock()
}

type CredentialVerifierTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	comparer *recordingComparer
	verifier portssvc.CredentialVerifierSvc
	ctx      context.Context
	user     domain.User
}

func (s *CredentialVerifierTestSuite) SetupTest() {
	s.mockRepo = new(MockUserRepository)
	s.comparer = &recordingComparer{}
	s.verifier = services.NewCredentialVerifier(s.mockRepo, testCost, discardLogger(),
		services.WithPasswordComparer(s.comparer.Compare))
	s.ctx = context.Background()

	hash, err := utils.HashPassword("pw1", testCost)
	s.Require().NoError(err)
	s.user = domain.User{Email: "a@x.com", PasswordHash: hash}
}

func TestCredentialVerifierService(t *testing.T) {
	suite.Run(t, new(CredentialVerifierTestSuite))
}

func (s *CredentialVerifierTestSuite) TestVerify_Match() {
	s.mockRepo.On("FindUserByEmail", s.ctx, "a@x.com").Return(&s.user, nil).Once()

	user, err := s.verifier.Verify(s.ctx, "a@x.com", "pw1")

	s.Require().NoError(err)
	s.Equal("a@x.com", user.Email)
	s.Equal([]int{testCost}, s.comparer.costs)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *CredentialVerifierTestSuite) TestVerify_WrongPassword() {
	s.mockRepo.On("FindUserByEmail", s.ctx, "a@x.com").Return(&s.user, nil).Once()

	user, err := s.verifier.Verify(s.ctx, "a@x.com", "wrong")

	s.Nil(user)
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)
	s.Len(s.comparer.costs, 1)
}

func (s *CredentialVerifierTestSuite) TestVerify_UnknownEmail() {
	s.mockRepo.On("FindUserByEmail", s.ctx, "nobody@x.com").Return(nil, apperrors.ErrNotFound).Once()

	user, err := s.verifier.Verify(s.ctx, "nobody@x.com", "pw1")

	s.Nil(user)
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)
	s.Equal([]int{testCost}, s.comparer.costs, "comparison must still run once at the real cost")
}

func (s *CredentialVerifierTestSuite) TestVerify_BothFailureBranchesDoEqualWork() {
	s.mockRepo.On("FindUserByEmail", s.ctx, "a@x.com").Return(&s.user, nil)
	s.mockRepo.On("FindUserByEmail", s.ctx, "nobody@x.com").Return(nil, apperrors.ErrNotFound)

	_, errWrong := s.verifier.Verify(s.ctx, "a@x.com", "wrong")
	wrongCosts := append([]int(nil), s.comparer.costs...)
	s.comparer.reset()

	_, errUnknown := s.verifier.Verify(s.ctx, "nobody@x.com", "wrong")
	unknownCosts := append([]int(nil), s.comparer.costs...)

	s.ErrorIs(errWrong, apperrors.ErrInvalidCredentials)
	s.ErrorIs(errUnknown, apperrors.ErrInvalidCredentials)
	s.Equal(errWrong.Error(), errUnknown.Error())
	s.Equal(wrongCosts, unknownCosts)
	s.Len(unknownCosts, 1)
}

func (s *CredentialVerifierTestSuite) TestVerify_StorageFailure() {
	s.mockRepo.On("FindUserByEmail", s.ctx, "a@x.com").Return(nil, errors.New("disk on fire")).Once()

	user, err := s.verifier.Verify(s.ctx, "a@x.com", "pw1")

	s.Nil(user)
	s.ErrorIs(err, apperrors.ErrStorageUnavailable)
	s.NotErrorIs(err, apperrors.ErrInvalidCredentials)
	s.Empty(s.comparer.costs)
}

func (s *CredentialVerifierTestSuite) TestVerify_PlaceholderFailure() {
	s.mockRepo.On("FindUserByEmail", mock.Anything, "nobody@x.com").Return(nil, apperrors.ErrNotFound).Once()
	verifier := services.NewCredentialVerifier(s.mockRepo, testCost, discardLogger(),
		services.WithPasswordComparer(s.comparer.Compare),
		services.WithPlaceholderHasher(func(int) (string, error) { return "", errors.New("no entropy") }))

	_, err := verifier.Verify(s.ctx, "nobody@x.com", "pw1")

	s.Error(err)
	s.NotErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (s *CredentialVerifierTestSuite) TestVerify_RehashesOutdatedCost() {
	oldHash, err := utils.HashPassword("pw1", testCost)
	s.Require().NoError(err)
	stored := domain.User{Email: "a@x.com", PasswordHash: oldHash}
	s.mockRepo.On("FindUserByEmail", s.ctx, "a@x.com").Return(&stored, nil).Once()

	var newHash string
	s.mockRepo.On("UpdatePasswordHash", s.ctx, "a@x.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { newHash = args.String(2) }).
		Return(nil).Once()

	verifier := services.NewCredentialVerifier(s.mockRepo, testCost+1, discardLogger(),
		services.WithPasswordRehash(s.mockRepo))

	user, err := verifier.Verify(s.ctx, "a@x.com", "pw1")

	s.Require().NoError(err)
	s.Equal("a@x.com", user.Email)
	cost, err := bcrypt.Cost([]byte(newHash))
	s.Require().NoError(err)
	s.Equal(testCost+1, cost)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(newHash), []byte("pw1")))
	s.mockRepo.AssertExpectations(s.T())
}

func (s *CredentialVerifierTestSuite) TestVerify_NoRehashAtCurrentCostOrOnFailure() {
	s.mockRepo.On("FindUserByEmail", s.ctx, "a@x.com").Return(&s.user, nil)
	verifier := services.NewCredentialVerifier(s.mockRepo, testCost, discardLogger(),
		services.WithPasswordRehash(s.mockRepo))

	_, err := verifier.Verify(s.ctx, "a@x.com", "pw1")
	s.Require().NoError(err)

	mismatched := services.NewCredentialVerifier(s.mockRepo, testCost+1, discardLogger(),
		services.WithPasswordRehash(s.mockRepo))
	_, err = mismatched.Verify(s.ctx, "a@x.com", "wrong")
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)

	s.mockRepo.AssertNotCalled(s.T(), "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CredentialVerifierTestSuite) TestVerify_RehashFailureStillLogsIn() {
	s.mockRepo.On("FindUserByEmail", s.ctx, "a@x.com").Return(&s.user, nil).Once()
	s.mockRepo.On("UpdatePasswordHash", s.ctx, "a@x.com", mock.Anything).Return(errors.New("read-only")).Once()
	verifier := services.NewCredentialVerifier(s.mockRepo, testCost+1, discardLogger(),
		services.WithPasswordRehash(s.mockRepo))

	user, err := verifier.Verify(s.ctx, "a@x.com", "pw1")

	s.Require().NoError(err)
	s.Equal("a@x.com", user.Email)
}
