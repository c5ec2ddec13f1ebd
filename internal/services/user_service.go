package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
	"expensetracker/internal/notify"
	"expensetracker/internal/uuid"
)

// userService handles user-related business logic.
type userService struct {
	db    *gorm.DB
	queue notify.Queue
	log   *zap.SugaredLogger
}

// NewUserService creates a new UserServicer. queue may be nil, in which case
// no welcome notification is sent.
func NewUserService(db *gorm.DB, queue notify.Queue) UserServicer {
	return &userService{db: db, queue: queue, log: logger.Named("users")}
}

// CreateUser registers a new user
func (s *userService) CreateUser(name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	var details []apperrors.FieldError
	if name == "" {
		details = append(details, apperrors.FieldError{Field: "name", Message: "name is required"})
	}
	if email == "" {
		details = append(details, apperrors.FieldError{Field: "email", Message: "email is required"})
	}
	if password == "" {
		details = append(details, apperrors.FieldError{Field: "password", Message: "password is required"})
	}
	if len(details) > 0 {
		return nil, apperrors.WithDetails(apperrors.ErrInvalidInput, details)
	}

	// Check if user with email exists
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Name:        name,
		Email:       email,
		Password:    string(hashedPassword),
		Preferences: models.DefaultPreferences(),
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	notify.Dispatch(context.Background(), s.queue, notify.WelcomeJob(user), s.log)
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrUserNotFound
	}
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin returns the user when the credentials match. Unknown emails and
// wrong passwords produce the same error.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.VerifyPassword(user, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// UpdatePreferences applies a partial preferences update.
func (s *userService) UpdatePreferences(userID string, update PreferencesUpdate) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Currency != nil {
		updates["pref_currency"] = strings.ToUpper(*update.Currency)
	}
	if update.Theme != nil {
		updates["pref_theme"] = *update.Theme
	}
	if update.NotificationsEnabled != nil {
		updates["pref_notifications_enabled"] = *update.NotificationsEnabled
	}
	if update.MonthlyBudget != nil {
		if update.MonthlyBudget.IsNegative() {
			return nil, apperrors.WithDetails(apperrors.ErrInvalidInput, []apperrors.FieldError{
				{Field: "monthly_budget", Message: "monthly_budget must not be negative"},
			})
		}
		updates["monthly_budget"] = *update.MonthlyBudget
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetUserByID(userID)
}

// SetPushToken stores the Expo push token used for mobile notifications.
// An empty token clears it.
func (s *userService) SetPushToken(userID, token string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("pref_push_token", strings.TrimSpace(token)).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.Preferences.PushToken = strings.TrimSpace(token)
	return user, nil
}
