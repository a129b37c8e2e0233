package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/transfa/banking-service/pkg/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrAdminCredentialsMissing is returned when neither a password nor a hash is configured.
var ErrAdminCredentialsMissing = errors.New("admin credentials are not configured")

// AuthSettings configures the single administrative login.
type AuthSettings struct {
	JWTSecret         string
	TokenTTL          time.Duration
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
}

// LoginRequest defines the expected JSON body for logging in.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthHandler issues tokens for the configured administrator.
type AuthHandler struct {
	secret       string
	ttl          time.Duration
	username     string
	passwordHash []byte
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthHandler creates an AuthHandler. A plain ADMIN_PASSWORD is hashed once at
// startup so both configuration styles share the bcrypt comparison.
func NewAuthHandler(settings AuthSettings, logger *zap.Logger) (*AuthHandler, error) {
	hash := []byte(strings.TrimSpace(settings.AdminPasswordHash))
	if len(hash) == 0 {
		if settings.AdminPassword == "" {
			return nil, ErrAdminCredentialsMissing
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(settings.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = generated
	}

	return &AuthHandler{
		secret:       settings.JWTSecret,
		ttl:          settings.TokenTTL,
		username:     settings.AdminUsername,
		passwordHash: hash,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password))
	if !usernameOK || passwordErr != nil {
		h.logger.Warn("login rejected", zap.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := middleware.IssueToken(h.secret, h.username, h.ttl, h.now())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt})
}
