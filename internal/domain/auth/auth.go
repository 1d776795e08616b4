package auth

import "time"

const (
	TokenTypeBearer = "bearer"

	PurposeResetPassword = "reset_password"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Type         string `json:"type"`
}

// LoginRequest identifies the user by email, phone or username.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type SignupRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=60"`
	Username string `json:"username" form:"username" validate:"required,min=3,max=40,username"`
	Phone    string `json:"phone" form:"phone" validate:"required,e164"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ResetPasswordMessage is published to the reset-password queue and
// consumed by the mail sender.
type ResetPasswordMessage struct {
	UserID      string    `json:"user_id"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Email       string    `json:"email"`
	PublishedAt time.Time `json:"published_at"`
}
