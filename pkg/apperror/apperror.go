package apperror

import (
	"errors"
	"fmt"
)

// Kind identifies a domain error independently of how the transport renders it.
type Kind int

const (
	KindUnknown Kind = iota
	KindUserNotFound
	KindUserIsBlocked
	KindPasswordDoesNotMatch
	KindInvalidToken
	KindNotARefreshToken
	KindTokenIsBlacklisted
	KindMethodNotAllowed
	KindEmptyUpdateData
	KindNonExistSortKey
	KindInvalidID
	KindNoFileContent
	KindFileSize
	KindInvalidFileType
	KindImagesBucket
	KindDatabase
	KindConflict
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindUserNotFound:         "user_not_found",
	KindUserIsBlocked:        "user_is_blocked",
	KindPasswordDoesNotMatch: "password_does_not_match",
	KindInvalidToken:         "invalid_token",
	KindNotARefreshToken:     "not_a_refresh_token",
	KindTokenIsBlacklisted:   "token_is_blacklisted",
	KindMethodNotAllowed:     "method_not_allowed",
	KindEmptyUpdateData:      "empty_update_data",
	KindNonExistSortKey:      "non_exist_sort_key",
	KindInvalidID:            "invalid_id",
	KindNoFileContent:        "no_file_content",
	KindFileSize:             "file_size",
	KindInvalidFileType:      "invalid_file_type",
	KindImagesBucket:         "images_bucket",
	KindDatabase:             "database",
	KindConflict:             "conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by use cases and adapters.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so wrapped errors compare equal to the sentinels below.
// A conflict is a database-class error and also matches ErrDatabase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind == t.Kind {
		return true
	}
	return e.Kind == KindConflict && t.Kind == KindDatabase
}

// Sentinels for errors.Is.
var (
	ErrUserNotFound         = &Error{Kind: KindUserNotFound}
	ErrUserIsBlocked        = &Error{Kind: KindUserIsBlocked}
	ErrPasswordDoesNotMatch = &Error{Kind: KindPasswordDoesNotMatch}
	ErrInvalidToken         = &Error{Kind: KindInvalidToken}
	ErrNotARefreshToken     = &Error{Kind: KindNotARefreshToken}
	ErrTokenIsBlacklisted   = &Error{Kind: KindTokenIsBlacklisted}
	ErrMethodNotAllowed     = &Error{Kind: KindMethodNotAllowed}
	ErrEmptyUpdateData      = &Error{Kind: KindEmptyUpdateData}
	ErrNonExistSortKey      = &Error{Kind: KindNonExistSortKey}
	ErrInvalidID            = &Error{Kind: KindInvalidID}
	ErrNoFileContent        = &Error{Kind: KindNoFileContent}
	ErrFileSize             = &Error{Kind: KindFileSize}
	ErrInvalidFileType      = &Error{Kind: KindInvalidFileType}
	ErrImagesBucket         = &Error{Kind: KindImagesBucket}
	ErrDatabase             = &Error{Kind: KindDatabase}
	ErrConflict             = &Error{Kind: KindConflict}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// UserNotFound takes whatever identified the user: login, email or id.
func UserNotFound(ref string) error {
	return &Error{Kind: KindUserNotFound, Message: fmt.Sprintf("user not found: %s", ref)}
}

func UserIsBlocked(userID string) error {
	return &Error{Kind: KindUserIsBlocked, Message: fmt.Sprintf("user is blocked: %s", userID)}
}

func PasswordDoesNotMatch(userID string) error {
	return &Error{Kind: KindPasswordDoesNotMatch, Message: fmt.Sprintf("password does not match for user: %s", userID)}
}

func InvalidToken(reason string, err error) error {
	return &Error{Kind: KindInvalidToken, Message: "invalid token: " + reason, Err: err}
}

func NotARefreshToken() error {
	return &Error{Kind: KindNotARefreshToken, Message: "provided token is not a refresh token"}
}

func TokenIsBlacklisted() error {
	return &Error{Kind: KindTokenIsBlacklisted, Message: "can't refresh token, current is blacklisted"}
}

func MethodNotAllowed(userID string) error {
	return &Error{Kind: KindMethodNotAllowed, Message: fmt.Sprintf("method not allowed for user: %s", userID)}
}

func EmptyUpdateData(userID string) error {
	return &Error{Kind: KindEmptyUpdateData, Message: fmt.Sprintf("empty update data for user: %s", userID)}
}

func NonExistSortKey(field string) error {
	return &Error{Kind: KindNonExistSortKey, Message: fmt.Sprintf("sort field %s does not exist", field)}
}

func InvalidID(id string) error {
	return &Error{Kind: KindInvalidID, Message: fmt.Sprintf("invalid id provided: %s", id)}
}

func NoFileContent() error {
	return &Error{Kind: KindNoFileContent, Message: "file is empty or not provided"}
}

func FileSize(size, limit int64) error {
	return &Error{Kind: KindFileSize, Message: fmt.Sprintf("file size %d is outside of 1..%d bytes", size, limit)}
}

func InvalidFileType(mime string) error {
	return &Error{Kind: KindInvalidFileType, Message: fmt.Sprintf("unsupported file type %s, supported types: image/png, image/jpeg", mime)}
}

func ImagesBucket(err error) error {
	return &Error{Kind: KindImagesBucket, Message: "images bucket error", Err: err}
}

func Database(err error) error {
	return &Error{Kind: KindDatabase, Message: "database error", Err: err}
}

func Conflict(err error) error {
	return &Error{Kind: KindConflict, Message: "user with the same email, username or phone already exists", Err: err}
}
