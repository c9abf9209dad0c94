package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/SscSPs/btc_rate_service/internal/dto"
	"github.com/SscSPs/btc_rate_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Client-facing messages
const (
	msgInvalidJSON        = "Invalid JSON syntax"
	msgMissingBody        = "Invalid JSON. Missing request body."
	msgBadCredentials     = "Email or password incorrect."
	msgServerError        = "Server error while processing data."
	msgEmailTaken         = "Email is invalid or already taken"
	msgUserCreated        = "User created"
	msgRateNotAvailable   = "BTC rate is not available yet. Try again later."
	msgInvalidRequestBody = "Invalid request body"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// userHandler handles account creation and login.
type userHandler struct {
	credentials portssvc.CredentialVerifierSvc
	sessions    portssvc.SessionIssuerSvc
	users       portssvc.UserSvcFacade
}

func newUserHandler(credentials portssvc.CredentialVerifierSvc, sessions portssvc.SessionIssuerSvc, users portssvc.UserSvcFacade) *userHandler {
	return &userHandler{credentials: credentials, sessions: sessions, users: users}
}

// registerUserRoutes sets up /user/login and /user/create. Each route gets its own limiter.
func registerUserRoutes(rg *gin.RouterGroup, h *userHandler, loginLimit, createLimit gin.HandlerFunc) {
	user := rg.Group("/user")
	{
		user.POST("/login", loginLimit, h.Login)
		user.POST("/create", createLimit, h.CreateUser)
	}
}

// bindCredentials decodes the body and writes a 400 response when it is unusable.
func bindCredentials(c *gin.Context) (dto.CredentialsRequest, bool) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := msgInvalidJSON
		if errors.Is(err, io.EOF) {
			msg = msgMissingBody
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
		return req, false
	}
	if missing := req.MissingKeys(); len(missing) > 0 {
		var sb strings.Builder
		sb.WriteString("Invalid JSON.")
		for _, key := range missing {
			sb.WriteString(" Missing " + key + " key.")
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: sb.String()})
		return req, false
	}
	return req, true
}

// Login godoc
// @Summary User login
// @Description Checks email and password and returns a signed session token.
// @Tags user
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /user/login [post]
func (h *userHandler) Login(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	user, err := h.credentials.Verify(c.Request.Context(), *req.Email, *req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			logger.Info("Login rejected")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: msgBadCredentials})
			return
		}
		logger.Error("Login failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}

	token, _, err := h.sessions.Issue(c.Request.Context(), user.Email)
	if err != nil {
		logger.Error("Failed to issue session token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{Token: token})
}

// CreateUser godoc
// @Summary Register new user
// @Description Creates a new user with a bcrypt-hashed password.
// @Tags user
// @Accept json
// @Produce json
// @Param register body dto.CreateUserRequest true "User Registration Info"
// @Success 201 {object} dto.CreateUserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already taken"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /user/create [post]
func (h *userHandler) CreateUser(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	_, err := h.users.CreateUser(c.Request.Context(), req)
	if err != nil {
		var appErr *apperrors.AppError
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, ErrorResponse{Error: msgEmailTaken})
		case errors.Is(err, apperrors.ErrValidation) && errors.As(err, &appErr):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: appErr.Message})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequestBody})
		default:
			logger.Error("Failed to create user", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.CreateUserResponse{Message: msgUserCreated})
}
