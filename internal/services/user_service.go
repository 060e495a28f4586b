package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/helpers"
	"github.com/marhabatours/api/internal/models"
)

type UserService struct {
	userRepo  models.UserRepo
	jwtSecret string
	jwtTTL    time.Duration
}

func NewUserService(userRepo models.UserRepo, jwtSecret string, jwtTTL time.Duration) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// Register creates an identity. The password is hashed before anything is
// persisted and the plaintext never leaves this function.
func (us *UserService) Register(ctx context.Context, user *models.User, password string) (*models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.Preferences = models.DefaultPreferences()
	user.IsActive = true
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := user.ValidateNew(); err != nil {
		return nil, err
	}
	if err := us.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials, stamps the login time and issues an access
// token. Wrong email and wrong password are indistinguishable to the caller.
func (us *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", models.ErrInvalidCredentials
	}
	if !user.ComparePassword(password) {
		return nil, "", models.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", models.ErrAccountDeactivated
	}

	token, err := helpers.NewAccessToken(us.jwtSecret, user.ID.Hex(), user.Role, us.jwtTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	if err := us.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (us *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return us.userRepo.GetUserByID(ctx, id)
}

// profileFields is the whitelist of identity attributes a client may edit.
// Role, active flag, password and token fields have their own paths.
var profileFields = map[string]bool{
	"name":          true,
	"phone":         true,
	"avatar":        true,
	"date_of_birth": true,
	"address":       true,
	"preferences":   true,
}

func (us *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.User, error) {
	fields := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		if profileFields[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no editable fields provided", models.ErrValidation)
	}
	return us.userRepo.UpdateUser(ctx, id, fields)
}

func (us *UserService) ChangePassword(ctx context.Context, id primitive.ObjectID, current, next string) error {
	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.ComparePassword(current) {
		return models.ErrInvalidCredentials
	}
	if err := user.SetPassword(next); err != nil {
		return err
	}
	_, err = us.userRepo.UpdateUser(ctx, id, map[string]interface{}{"password": user.Password})
	return err
}

func (us *UserService) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return us.userRepo.SetActive(ctx, id, false)
}

func (us *UserService) ListUsers(ctx context.Context, offset, limit int64) ([]*models.User, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: invalid offset or limit", models.ErrValidation)
	}
	return us.userRepo.ListUsers(ctx, offset, limit)
}
