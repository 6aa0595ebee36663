package handler

import "github.com/erp/stockscan/internal/interfaces/http/dto"

// APIResponse is dto.Response with a typed data field, for the API docs
//
//	@Description	Standard response envelope with typed data
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the error form of dto.Response, for the API docs
//
//	@Description	Standard error envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
