package auth

// Constants for error messages
const (
	ErrNoIdentity          = "No identity provided"
	ErrTokenGenerateFailed = "Failed to generate token"
	ErrNotAuthenticated    = "Not authenticated"
)

// TokenRequest model for token issuance
type TokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// TokenResponse model for token issuance responses
type TokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}
