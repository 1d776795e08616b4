package usecase

import (
	"context"
	"time"

	"github.com/martinmanurung/account-service/internal/domain/users"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/rs/zerolog"
)

type UserRepository interface {
	FindUserByID(ctx context.Context, userID string) (*users.User, error)
	UpdateUser(ctx context.Context, user users.User) (*users.User, error)
	DeleteUser(ctx context.Context, userID string) error
	FindAllUsers(ctx context.Context, filter users.ListFilter) ([]users.User, error)
	FindUsersByGroup(ctx context.Context, groupID string, filter users.ListFilter) ([]users.User, error)
}

type ImageStore interface {
	Upload(ctx context.Context, user users.User, content []byte) (string, error)
}

// SessionStore ends refresh sessions of deleted or blocked accounts.
type SessionStore interface {
	Remove(ctx context.Context, userID string) error
}

type Usecase struct {
	repo     UserRepository
	images   ImageStore
	sessions SessionStore
	now      func() time.Time
}

func NewUsecase(repo UserRepository, images ImageStore, sessions SessionStore) *Usecase {
	return &Usecase{
		repo:     repo,
		images:   images,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PatchSelf applies patch to the caller's own record. Restricted fields are
// not part of UserPatch and cannot be changed this way.
func (u Usecase) PatchSelf(ctx context.Context, caller users.User, patch users.UserPatch) (*users.User, error) {
	if patch.IsEmpty() {
		return nil, apperror.EmptyUpdateData(caller.ID)
	}
	updated := patch.Apply(caller)
	updated.ModifiedAt = u.now()
	return u.repo.UpdateUser(ctx, updated)
}

func (u Usecase) DeleteSelf(ctx context.Context, caller users.User) error {
	if err := u.repo.DeleteUser(ctx, caller.ID); err != nil {
		return err
	}
	u.endSession(ctx, caller.ID)
	zerolog.Ctx(ctx).Info().Str("user_id", caller.ID).Msg("User deleted own account")
	return nil
}

// GetByID returns targetID as seen by caller. Moderators see members of
// their own group only; anyone else is reported as not found.
func (u Usecase) GetByID(ctx context.Context, caller users.User, targetID string) (*users.User, error) {
	if targetID == caller.ID {
		self := caller
		return &self, nil
	}

	switch caller.Role {
	case users.RoleAdmin:
		return u.findExisting(ctx, targetID)
	case users.RoleModerator:
		target, err := u.findExisting(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if !target.InGroup(caller.GroupID) {
			return nil, apperror.UserNotFound(targetID)
		}
		return target, nil
	default:
		return nil, apperror.MethodNotAllowed(caller.ID)
	}
}

// PatchByID is the admin-only update path; it may change role, group and
// the blocked flag. Blocking a user also ends their refresh session.
func (u Usecase) PatchByID(ctx context.Context, caller users.User, targetID string, patch users.AdminPatch) (*users.User, error) {
	if caller.Role != users.RoleAdmin {
		return nil, apperror.MethodNotAllowed(caller.ID)
	}
	target, err := u.findExisting(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, apperror.EmptyUpdateData(targetID)
	}

	updated := patch.Apply(*target)
	updated.ModifiedAt = u.now()
	saved, err := u.repo.UpdateUser(ctx, updated)
	if err != nil {
		return nil, err
	}

	if saved.IsBlocked && !target.IsBlocked {
		u.endSession(ctx, saved.ID)
		zerolog.Ctx(ctx).Info().Str("user_id", saved.ID).Str("admin_id", caller.ID).Msg("User blocked")
	}
	return saved, nil
}

func (u Usecase) DeleteByID(ctx context.Context, caller users.User, targetID string) error {
	if caller.Role != users.RoleAdmin {
		return apperror.MethodNotAllowed(caller.ID)
	}
	if err := u.repo.DeleteUser(ctx, targetID); err != nil {
		return err
	}
	u.endSession(ctx, targetID)
	zerolog.Ctx(ctx).Info().Str("user_id", targetID).Str("admin_id", caller.ID).Msg("User deleted")
	return nil
}

// List pages through users visible to caller: everyone for an admin, the
// caller's group for a moderator.
func (u Usecase) List(ctx context.Context, caller users.User, filter users.ListFilter) ([]users.User, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit > users.MaxListLimit {
		filter.Limit = users.MaxListLimit
	}

	switch caller.Role {
	case users.RoleAdmin:
		return u.repo.FindAllUsers(ctx, filter)
	case users.RoleModerator:
		if caller.GroupID == nil {
			return []users.User{}, nil
		}
		return u.repo.FindUsersByGroup(ctx, *caller.GroupID, filter)
	default:
		return nil, apperror.MethodNotAllowed(caller.ID)
	}
}

// UploadAvatar stores content as the caller's new avatar and records its URI.
func (u Usecase) UploadAvatar(ctx context.Context, caller users.User, content []byte) (*users.UploadImageResponse, error) {
	uri, err := u.images.Upload(ctx, caller, content)
	if err != nil {
		return nil, err
	}

	updated := caller
	updated.Image = &uri
	updated.ModifiedAt = u.now()
	if _, err := u.repo.UpdateUser(ctx, updated); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", caller.ID).Msg("Avatar uploaded")
	return &users.UploadImageResponse{Image: uri, Status: "uploaded"}, nil
}

func (u Usecase) findExisting(ctx context.Context, userID string) (*users.User, error) {
	user, err := u.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.UserNotFound(userID)
	}
	return user, nil
}

// endSession is best effort; the deleted or blocked account is already
// rejected when the session is next used.
func (u Usecase) endSession(ctx context.Context, userID string) {
	if u.sessions == nil {
		return
	}
	if err := u.sessions.Remove(ctx, userID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("Failed to end refresh session")
	}
}
