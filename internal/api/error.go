package api

// swagger:model api.ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// swagger:model api.PingResponse
type PingResponse struct {
	Message string `json:"message" example:"pong"`
}
