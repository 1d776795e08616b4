package constant

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// Context keys
const (
	CtxKeyUser   ContextKey = "user"
	CtxKeyLogger ContextKey = "logger"
)

const (
	HeaderRequestID    = "X-Request-Id"
	HeaderRefreshToken = "Refresh-Tkn"
)
