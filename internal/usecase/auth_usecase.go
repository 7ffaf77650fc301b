package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lab-booking/internal/converter"
	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/domain/entity"
	"lab-booking/internal/domain/repository"
	"lab-booking/internal/service"
	"lab-booking/pkg/jwt"
	"lab-booking/pkg/password"
	"lab-booking/pkg/sanitize"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
)

// PasswordResetTTL is how long a reset token stays usable
const PasswordResetTTL = 30 * time.Minute

type AuthUsecase interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, actor entity.Actor, accessTokenID, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	userRepo     repository.UserRepository
	outboxRepo   repository.NotificationOutboxRepository
	auditService service.AuditService
	publisher    NotificationPublisher
	jwtService   *jwt.JWTService
	redisClient  redis.Cmdable
}

func NewAuthUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	outboxRepo repository.NotificationOutboxRepository,
	auditService service.AuditService,
	publisher NotificationPublisher,
	jwtService *jwt.JWTService,
	redisClient redis.Cmdable,
) AuthUsecase {
	return &authUsecase{
		tx:           tx,
		log:          log,
		userRepo:     userRepo,
		outboxRepo:   outboxRepo,
		auditService: auditService,
		publisher:    publisher,
		jwtService:   jwtService,
		redisClient:  redisClient,
	}
}

func (u *authUsecase) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error) {
	if err := password.Validate(req.Password); err != nil {
		return nil, err
	}

	email := sanitize.Email(req.Email)
	if email == "" {
		return nil, newValidationError("email", "Invalid email format")
	}
	name := sanitize.String(req.Name)
	if len([]rune(name)) < 2 {
		return nil, newValidationError("name", "Name must be at least 2 characters")
	}
	phone := sanitize.Phone(req.Phone)
	if phone == "" {
		return nil, newValidationError("phone", "Phone must contain 10 to 15 digits")
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		ID:       uuid.New(),
		Email:    email,
		Name:     name,
		Phone:    phone,
		Password: hashedPassword,
		Role:     entity.RoleUser,
	}

	event, err := entity.NewNotificationEvent(entity.NotificationUserWelcome, user.Email, entity.WelcomePayload{Name: user.Name})
	if err != nil {
		return nil, err
	}

	var outboxIDs []uuid.UUID
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.userRepo.Create(ctx, tx, user); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrEmailAlreadyExists
			}
			u.log.Warnf("Failed to create user: %+v", err)
			return err
		}
		if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserSignup, "user", user.ID.String(), entity.JSON{"email": user.Email}); err != nil {
			return err
		}
		ids, err := stageNotifications(ctx, tx, u.outboxRepo, []entity.NotificationEvent{event})
		if err != nil {
			u.log.Warnf("Failed to stage welcome notification: %+v", err)
			return err
		}
		outboxIDs = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(u.publisher, outboxIDs)
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// Read-only, no transaction needed
	user, err := u.userRepo.FindByEmail(ctx, u.tx.Conn(ctx), sanitize.Email(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil || !password.Compare(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, user.ID, user.Email, string(user.Role))
}

func (u *authUsecase) Logout(ctx context.Context, actor entity.Actor, accessTokenID, refreshToken string) error {
	keys := []string{accessTokenKey(actor.ID, accessTokenID)}

	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == actor.ID {
			keys = append(keys, refreshTokenKey(claims.UserID, claims.TokenID))
		}
	}

	if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
		u.log.Warnf("Failed to delete tokens: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Refresh tokens are single use; deleting the key claims it
	refreshKey := refreshTokenKey(claims.UserID, claims.TokenID)
	deleted, err := u.redisClient.Del(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}
	if deleted == 0 {
		return nil, ErrTokenRevoked
	}

	// Role and email come from the stored account, not the old claims
	user, err := u.userRepo.FindByID(ctx, u.tx.Conn(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	return u.issueTokens(ctx, user.ID, user.Email, string(user.Role))
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	user, err := u.userRepo.FindByID(ctx, u.tx.Conn(ctx), actor.ID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

// ForgotPassword issues a reset token when the email belongs to an account.
// It succeeds either way so callers cannot probe for registered emails.
func (u *authUsecase) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	user, err := u.userRepo.FindByEmail(ctx, u.tx.Conn(ctx), sanitize.Email(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return err
	}
	if user == nil {
		return nil
	}

	token := uuid.NewString()
	if err := u.redisClient.Set(ctx, passwordResetKey(token), user.ID.String(), PasswordResetTTL).Err(); err != nil {
		u.log.Warnf("Failed to store password reset token: %+v", err)
		return err
	}

	event, err := entity.NewNotificationEvent(entity.NotificationPasswordReset, user.Email, entity.PasswordResetPayload{
		Name:             user.Name,
		Token:            token,
		ExpiresInMinutes: int(PasswordResetTTL / time.Minute),
	})
	if err != nil {
		return err
	}

	var outboxIDs []uuid.UUID
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		ids, err := stageNotifications(ctx, tx, u.outboxRepo, []entity.NotificationEvent{event})
		outboxIDs = ids
		return err
	})
	if err != nil {
		u.log.Warnf("Failed to stage password reset notification: %+v", err)
		return err
	}

	publish(u.publisher, outboxIDs)
	return nil
}

// ResetPassword consumes a reset token, sets the new password and revokes
// every session of the user
func (u *authUsecase) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := password.Validate(req.Password); err != nil {
		return err
	}

	raw, err := u.redisClient.GetDel(ctx, passwordResetKey(req.Token)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidToken
	}
	if err != nil {
		u.log.Warnf("Failed to read password reset token: %+v", err)
		return err
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return ErrInvalidToken
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.userRepo.UpdatePassword(ctx, tx, userID, hashedPassword); err != nil {
			u.log.Warnf("Failed to update password: %+v", err)
			return err
		}
		return u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionUserPasswordReset, "user", userID.String(), nil, nil)
	})
	if err != nil {
		return err
	}

	return u.revokeAllUserTokens(ctx, userID)
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email, role string) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email, role)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email, role)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, accessTokenKey(userID, accessTokenID), "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, refreshTokenKey(userID, refreshTokenID), "valid", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

// revokeAllUserTokens revokes all tokens for a user (password changed or account compromised)
func (u *authUsecase) revokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	for _, pattern := range []string{
		fmt.Sprintf("access_token:%s:*", userID),
		fmt.Sprintf("refresh_token:%s:*", userID),
	} {
		keys, err := u.redisClient.Keys(ctx, pattern).Result()
		if err != nil {
			u.log.Warnf("Failed to get token keys: %+v", err)
			return err
		}
		if len(keys) == 0 {
			continue
		}
		if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
			u.log.Warnf("Failed to delete tokens: %+v", err)
			return err
		}
	}
	return nil
}

func accessTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", userID, tokenID)
}

func refreshTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("refresh_token:%s:%s", userID, tokenID)
}

func passwordResetKey(token string) string {
	return "password_reset:" + token
}
