package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/middleware"
	"expensetracker/internal/models"
	"expensetracker/internal/services"
)

// AuthHandler handles authentication and profile requests
type AuthHandler struct {
	userService services.UserServicer
	tokens      *middleware.TokenManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, tokens *middleware.TokenManager) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdatePreferencesRequest carries a partial preferences update. Omitted fields are unchanged.
type UpdatePreferencesRequest struct {
	Currency             *string          `json:"currency" binding:"omitempty,iso4217"`
	Theme                *models.Theme    `json:"theme" binding:"omitempty,theme"`
	NotificationsEnabled *bool            `json:"notifications_enabled"`
	MonthlyBudget        *decimal.Decimal `json:"monthly_budget" binding:"omitempty,gte=0,decimal_scale=4"`
}

// PushTokenRequest carries the device's Expo push token. An empty token clears it.
type PushTokenRequest struct {
	Token string `json:"token" binding:"max=255"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// UserResponse wraps a user profile
type UserResponse struct {
	User models.User `json:"user"`
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with name, email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(status, gin.H{"token": token, "user": user})
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile and preferences
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdatePreferences handles partial preference updates
// @Summary     Update preferences
// @Description Update currency, theme, notification and monthly budget preferences
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdatePreferencesRequest true "Preference changes"
// @Success     200 {object} UserResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile/preferences [put]
func (h *AuthHandler) UpdatePreferences(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.UpdatePreferences(userID, services.PreferencesUpdate{
		Currency:             req.Currency,
		Theme:                req.Theme,
		NotificationsEnabled: req.NotificationsEnabled,
		MonthlyBudget:        req.MonthlyBudget,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SetPushToken registers the device token used for push notifications
// @Summary     Set push token
// @Description Store or clear the Expo push token for the authenticated user
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PushTokenRequest true "Push token"
// @Success     200 {object} MessageResponse "Token stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile/push-token [put]
func (h *AuthHandler) SetPushToken(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if _, err := h.userService.SetPushToken(userID, req.Token); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push token updated successfully"})
}

// FieldErrorDetail represents a single invalid field in an error response.
type FieldErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details []FieldErrorDetail `json:"details,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
