package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/martinmanurung/account-service/internal/domain/users"
	"github.com/martinmanurung/account-service/pkg/apperror"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns lists the columns a listing may be ordered by.
var sortColumns = map[string]string{
	"id":          "id",
	"email":       "email",
	"username":    "username",
	"phone":       "phone",
	"name":        "name",
	"surname":     "surname",
	"role":        "role",
	"group_id":    "group_id",
	"is_blocked":  "is_blocked",
	"created_at":  "created_at",
	"modified_at": "modified_at",
}

type User struct {
	db *gorm.DB
}

func NewUser(db *gorm.DB) *User {
	return &User{db: db}
}

// FindUserByLogin matches login against email, phone or username.
func (u User) FindUserByLogin(ctx context.Context, login string) (*users.User, error) {
	var user users.User
	err := u.db.WithContext(ctx).
		Where("email = ? OR phone = ? OR username = ?", login, login, login).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Database(err)
	}
	return &user, nil
}

func (u User) FindUserByEmail(ctx context.Context, email string) (*users.User, error) {
	var user users.User
	err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Database(err)
	}
	return &user, nil
}

func (u User) FindUserByID(ctx context.Context, userID string) (*users.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperror.InvalidID(userID)
	}
	var user users.User
	err := u.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Database(err)
	}
	return &user, nil
}

func (u User) CreateNewUser(ctx context.Context, user users.User) (*users.User, error) {
	if err := u.db.WithContext(ctx).Create(&user).Error; err != nil {
		zlog.Error().Err(err).Str("username", user.Username).Msg("User creating failed")
		return nil, translateWriteError(err)
	}
	return &user, nil
}

// UpdateUser writes every column of user, zero values included. A user
// deleted in the meantime yields UserNotFound.
func (u User) UpdateUser(ctx context.Context, user users.User) (*users.User, error) {
	result := u.db.WithContext(ctx).
		Model(&users.User{}).
		Where("id = ?", user.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&user)
	if result.Error != nil {
		zlog.Error().Err(result.Error).Str("user_id", user.ID).Msg("Partial update failed")
		return nil, translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.UserNotFound(user.ID)
	}
	return &user, nil
}

func (u User) DeleteUser(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return apperror.InvalidID(userID)
	}
	result := u.db.WithContext(ctx).Where("id = ?", userID).Delete(&users.User{})
	if result.Error != nil {
		zlog.Error().Err(result.Error).Str("user_id", userID).Msg("User deleting failed")
		return apperror.Database(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.UserNotFound(userID)
	}
	return nil
}

func (u User) FindAllUsers(ctx context.Context, filter users.ListFilter) ([]users.User, error) {
	return u.list(ctx, nil, filter)
}

func (u User) FindUsersByGroup(ctx context.Context, groupID string, filter users.ListFilter) ([]users.User, error) {
	return u.list(ctx, &groupID, filter)
}

func (u User) list(ctx context.Context, groupID *string, filter users.ListFilter) ([]users.User, error) {
	order, err := orderClause(filter)
	if err != nil {
		return nil, err
	}

	result := []users.User{}
	if filter.Limit <= 0 {
		return result, nil
	}

	query := u.db.WithContext(ctx).Model(&users.User{})
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}
	if filter.FilterByName != "" {
		query = query.Where("name LIKE ?", "%"+escapeLike(filter.FilterByName)+"%")
	}

	err = query.
		Order(order).
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&result).Error
	if err != nil {
		zlog.Error().Err(err).Str("sort_by", filter.SortBy).Msg("Users listing failed")
		return nil, apperror.Database(err)
	}
	return result, nil
}

// orderClause validates the sort key before any query is built.
func orderClause(filter users.ListFilter) (clause.OrderByColumn, error) {
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = users.DefaultSortBy
	}
	column, ok := sortColumns[strings.ToLower(sortBy)]
	if !ok {
		return clause.OrderByColumn{}, apperror.NonExistSortKey(sortBy)
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   filter.OrderBy != users.OrderAsc,
	}, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict(err)
	}
	return apperror.Database(err)
}
