package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/martinmanurung/account-service/internal/domain/auth"
	"github.com/martinmanurung/account-service/internal/domain/users"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/martinmanurung/account-service/pkg/jwt"
	"github.com/rs/zerolog"
)

type UserRepository interface {
	FindUserByLogin(ctx context.Context, login string) (*users.User, error)
	FindUserByEmail(ctx context.Context, email string) (*users.User, error)
	FindUserByID(ctx context.Context, userID string) (*users.User, error)
	CreateNewUser(ctx context.Context, user users.User) (*users.User, error)
	UpdateUser(ctx context.Context, user users.User) (*users.User, error)
}

// TokenStore tracks the live refresh token per user and the spent ones.
type TokenStore interface {
	Matches(ctx context.Context, userID, token string) (bool, error)
	Set(ctx context.Context, userID, token string) error
	Blacklist(ctx context.Context, token string) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	Remove(ctx context.Context, userID string) error
	Rotate(ctx context.Context, userID, current, next string) (bool, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type MessagePublisher interface {
	Publish(ctx context.Context, message any) error
}

type ImageStore interface {
	Upload(ctx context.Context, user users.User, content []byte) (string, error)
}

type Usecase struct {
	repo         UserRepository
	tokens       TokenStore
	hasher       PasswordHasher
	jwtService   *jwt.JWTService
	publisher    MessagePublisher
	images       ImageStore
	resetBaseURL string
	now          func() time.Time
}

func NewUsecase(
	repo UserRepository,
	tokens TokenStore,
	hasher PasswordHasher,
	jwtService *jwt.JWTService,
	publisher MessagePublisher,
	images ImageStore,
	resetBaseURL string,
) *Usecase {
	return &Usecase{
		repo:         repo,
		tokens:       tokens,
		hasher:       hasher,
		jwtService:   jwtService,
		publisher:    publisher,
		images:       images,
		resetBaseURL: strings.TrimRight(resetBaseURL, "/"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Signup creates a USER account and stores the optional avatar. Duplicate
// email, username or phone surface as a conflict from the repository.
func (u Usecase) Signup(ctx context.Context, payload auth.SignupRequest, image []byte) (*users.User, error) {
	logger := zerolog.Ctx(ctx)

	hashed, err := u.hasher.Hash(payload.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := u.now()
	created, err := u.repo.CreateNewUser(ctx, users.User{
		ID:             uuid.NewString(),
		Email:          payload.Email,
		Username:       payload.Username,
		Phone:          payload.Phone,
		HashedPassword: hashed,
		Role:           users.RoleUser,
		CreatedAt:      now,
		ModifiedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("user_id", created.ID).Msg("User registered")

	if image == nil {
		return created, nil
	}

	uri, err := u.images.Upload(ctx, *created, image)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", created.ID).Msg("Signup avatar rejected")
		return nil, err
	}
	withImage := *created
	withImage.Image = &uri
	withImage.ModifiedAt = u.now()
	return u.repo.UpdateUser(ctx, withImage)
}

func (u Usecase) Login(ctx context.Context, payload auth.LoginRequest) (*auth.TokenPair, error) {
	logger := zerolog.Ctx(ctx)

	user, err := u.repo.FindUserByLogin(ctx, payload.Login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.UserNotFound(payload.Login)
	}
	if user.IsBlocked {
		logger.Warn().Str("user_id", user.ID).Msg("Blocked user tried to log in")
		return nil, apperror.UserIsBlocked(user.ID)
	}
	if !u.hasher.Verify(payload.Password, user.HashedPassword) {
		return nil, apperror.PasswordDoesNotMatch(user.ID)
	}

	pair, err := u.issuePair(*user)
	if err != nil {
		return nil, err
	}
	if err := u.tokens.Set(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	logger.Info().Str("user_id", user.ID).Msg("User logged in")
	return pair, nil
}

// Refresh exchanges a live refresh token for a new pair. The presented token
// is spent in the same atomic step that installs its successor, so it can be
// used at most once even under concurrent calls.
func (u Usecase) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	logger := zerolog.Ctx(ctx)

	claims, err := u.checkRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := u.repo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidID) {
			return nil, apperror.InvalidToken("malformed user id", err)
		}
		return nil, err
	}
	if user == nil {
		return nil, apperror.InvalidToken("user does not exist", nil)
	}
	if user.IsBlocked {
		return nil, apperror.UserIsBlocked(user.ID)
	}

	pair, err := u.issuePair(*user)
	if err != nil {
		return nil, err
	}

	swapped, err := u.tokens.Rotate(ctx, user.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		logger.Warn().Str("user_id", user.ID).Msg("Refresh token lost a concurrent rotation")
		return nil, apperror.TokenIsBlacklisted()
	}

	logger.Info().Str("user_id", user.ID).Msg("Refresh token rotated")
	return pair, nil
}

// Logout ends the session of the refresh token's owner and spends the token.
func (u Usecase) Logout(ctx context.Context, refreshToken string) error {
	claims, err := u.checkRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := u.tokens.Remove(ctx, claims.UserID); err != nil {
		return err
	}
	if err := u.tokens.Blacklist(ctx, refreshToken); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", claims.UserID).Msg("User logged out")
	return nil
}

// checkRefresh decodes token and requires it to be the caller's live,
// unspent refresh token.
func (u Usecase) checkRefresh(ctx context.Context, token string) (*jwt.MyClaims, error) {
	claims, err := u.jwtService.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Mode != jwt.ModeRefresh {
		return nil, apperror.NotARefreshToken()
	}
	if claims.UserID == "" {
		return nil, apperror.InvalidToken("missing user id", nil)
	}

	blacklisted, err := u.tokens.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, apperror.TokenIsBlacklisted()
	}
	live, err := u.tokens.Matches(ctx, claims.UserID, token)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, apperror.TokenIsBlacklisted()
	}
	return claims, nil
}

// InitiateReset publishes a reset link for the account behind email. A
// failed publish is logged but not reported to the caller.
func (u Usecase) InitiateReset(ctx context.Context, email string) (*auth.ResetPasswordResponse, error) {
	logger := zerolog.Ctx(ctx)

	user, err := u.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.UserNotFound(email)
	}

	linkToken, err := u.jwtService.IssueLink(jwt.LinkClaims{
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: auth.PurposeResetPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue reset link token: %w", err)
	}

	message := auth.ResetPasswordMessage{
		UserID:      user.ID,
		Subject:     "Resetting Password To Your Account: " + user.Email,
		Body:        "Click this link to reset your password " + u.resetLink(user.ID, linkToken),
		Email:       user.Email,
		PublishedAt: u.now(),
	}
	if err := u.publisher.Publish(ctx, message); err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to publish reset password message")
	} else {
		logger.Info().Str("user_id", user.ID).Msg("Reset password message published")
	}

	return &auth.ResetPasswordResponse{
		Email:   user.Email,
		Message: "Reset link was sent to your email",
	}, nil
}

func (u Usecase) resetLink(userID, token string) string {
	return fmt.Sprintf("%s/%s?token=%s", u.resetBaseURL, url.PathEscape(userID), url.QueryEscape(token))
}

// Resolve returns the owner of an access token. Deleted or blocked owners
// are rejected even while the token itself is still valid.
func (u Usecase) Resolve(ctx context.Context, accessToken string) (*users.User, error) {
	claims, err := u.jwtService.Decode(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Mode != jwt.ModeAccess {
		return nil, apperror.InvalidToken("not an access token", nil)
	}
	if claims.UserID == "" {
		return nil, apperror.InvalidToken("missing user id", nil)
	}

	user, err := u.repo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidID) {
			return nil, apperror.InvalidToken("malformed user id", err)
		}
		return nil, err
	}
	if user == nil {
		return nil, apperror.InvalidToken("user does not exist", nil)
	}
	if user.IsBlocked {
		return nil, apperror.UserIsBlocked(user.ID)
	}
	return user, nil
}

func (u Usecase) issuePair(user users.User) (*auth.TokenPair, error) {
	refreshToken, err := u.jwtService.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	accessToken, err := u.jwtService.IssueAccess(user.ID, user.GroupRef())
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	return &auth.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Type:         auth.TokenTypeBearer,
	}, nil
}
