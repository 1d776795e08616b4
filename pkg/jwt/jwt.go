package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/segmentio/ksuid"
)

// Mode tells what a token may be used for.
type Mode string

const (
	ModeAccess  Mode = "access_token"
	ModeRefresh Mode = "refresh_token"
	ModeLink    Mode = "link_token"
)

const (
	DefaultAccessExpiry  = 60 * time.Minute
	DefaultRefreshExpiry = 31 * 24 * time.Hour
	DefaultLinkExpiry    = 30 * 24 * time.Hour
)

type MyClaims struct {
	UserID  string `json:"user_id,omitempty"`
	GroupID string `json:"group_id,omitempty"`
	Mode    Mode   `json:"mode,omitempty"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// LinkClaims is the payload of an out-of-band link token. A zero ExpiresAt
// falls back to the service link expiry.
type LinkClaims struct {
	UserID    string
	Email     string
	Purpose   string
	ExpiresAt time.Time
}

type Expiry struct {
	Access  time.Duration
	Refresh time.Duration
	Link    time.Duration
}

type JWTService struct {
	SignatureKey []byte
	expiry       Expiry
	now          func() time.Time
}

func NewJWTService(secretKey string, expiry Expiry) *JWTService {
	if expiry.Access <= 0 {
		expiry.Access = DefaultAccessExpiry
	}
	if expiry.Refresh <= 0 {
		expiry.Refresh = DefaultRefreshExpiry
	}
	if expiry.Link <= 0 {
		expiry.Link = DefaultLinkExpiry
	}
	return &JWTService{
		SignatureKey: []byte(secretKey),
		expiry:       expiry,
		now:          time.Now,
	}
}

// RefreshExpiry is how long an issued refresh token stays valid.
func (j *JWTService) RefreshExpiry() time.Duration {
	return j.expiry.Refresh
}

func (j *JWTService) IssueAccess(userID, groupID string) (string, error) {
	if userID == "" {
		return "", errors.New("user_id cannot be empty")
	}
	now := j.now()
	claims := MyClaims{
		UserID:  userID,
		GroupID: groupID,
		Mode:    ModeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry.Access)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return j.sign(claims)
}

// IssueRefresh signs a refresh token. Every token gets a unique id so two
// tokens issued within the same second never compare equal.
func (j *JWTService) IssueRefresh(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user_id cannot be empty")
	}
	now := j.now()
	claims := MyClaims{
		UserID: userID,
		Mode:   ModeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "rt_" + ksuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry.Refresh)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return j.sign(claims)
}

func (j *JWTService) IssueLink(link LinkClaims) (string, error) {
	now := j.now()
	expiresAt := link.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(j.expiry.Link)
	}
	claims := MyClaims{
		UserID:  link.UserID,
		Mode:    ModeLink,
		Email:   link.Email,
		Purpose: link.Purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return j.sign(claims)
}

// Decode verifies signature and expiry. Every failure is an invalid token error.
func (j *JWTService) Decode(tokenStr string) (*MyClaims, error) {
	if tokenStr == "" {
		return nil, apperror.InvalidToken("empty token", nil)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &MyClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("invalid signing method")
		}
		return j.SignatureKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.InvalidToken("token expired", err)
		}
		return nil, apperror.InvalidToken("malformed or badly signed", err)
	}

	if claims, ok := token.Claims.(*MyClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperror.InvalidToken("claims rejected", nil)
}

func (j *JWTService) sign(claims MyClaims) (string, error) {
	if len(j.SignatureKey) == 0 {
		return "", errors.New("signature_key cannot be empty")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.SignatureKey)
}
