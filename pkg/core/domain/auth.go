package domain

// LoginResponse is the body of POST /auth/login
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

// VerifyResponse is the body of POST /auth/verify
type VerifyResponse struct {
	Valid bool `json:"valid"`
}
