package api

// swagger:model api.RegisterRequest
type RegisterRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email" example:"ann@example.com"`
	Password string `json:"password" form:"password" validate:"required,max=72" example:"Secret123!"`
	Name     string `json:"name" form:"name" validate:"max=100" example:"Ann"`
}

// swagger:model api.RegisterResponse
type RegisterResponse struct {
	Token string `json:"token"`
	Email string `json:"email" example:"ann@example.com"`
}

// swagger:model api.LoginRequest
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email" example:"ann@example.com"`
	Password string `json:"password" form:"password" validate:"required" example:"Secret123!"`
}

// swagger:model api.LoginResponse
type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name" example:"Ann"`
	Email string `json:"email" example:"ann@example.com"`
}

// UpdateAccountRequest identifies the account by email. The email may also
// arrive in the email header, which older clients send instead.
// swagger:model api.UpdateAccountRequest
type UpdateAccountRequest struct {
	Email string `json:"email" form:"email" validate:"required,email" example:"ann@example.com"`
	Name  string `json:"name" form:"name" validate:"required,max=100" example:"Annie"`
}

// swagger:model api.UpdateAccountResponse
type UpdateAccountResponse struct {
	Token string `json:"token"`
}
