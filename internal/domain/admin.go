package domain

// AdminRole is the only role minted into admin tokens
const AdminRole = "admin"

// AdminUser identifies the authenticated administrator
type AdminUser struct {
	Username string `json:"username"`
}

// LoginRequest is the body of POST /admin/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	OK    bool      `json:"ok"`
	Token string    `json:"token"`
	User  AdminUser `json:"user"`
}
