package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"query-desk/internal/domain"
	"query-desk/internal/service"
	"query-desk/internal/validate"
)

// Error kinds reported in the "error" field of failed responses.
const (
	kindValidation         = "ValidationError"
	kindDuplicateUsername  = "DuplicateUsername"
	kindDuplicateEmail     = "DuplicateEmail"
	kindInvalidCredentials = "InvalidCredentials"
	kindNotFound           = "NotFound"
	kindStore              = "StoreError"
	kindUnauthorized       = "Unauthorized"
)

type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

type AccountResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	CreatedAt string  `json:"created_at,omitempty"`
	LastLogin *string `json:"last_login,omitempty"`
}

// QueryResponse keeps the column names of the query table; the dashboard script reads
// username and msg.
type QueryResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Msg       string `json:"msg"`
	CreatedAt string `json:"created_at"`
}

type OverviewResponse struct {
	Success bool              `json:"success"`
	Users   []AccountResponse `json:"users"`
	Queries []QueryResponse   `json:"queries"`
}

func accountToResponse(account domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
	}
	if !account.CreatedAt.IsZero() {
		resp.CreatedAt = account.CreatedAt.Format(time.RFC3339)
	}
	if account.LastLogin != nil {
		v := account.LastLogin.Format(time.RFC3339)
		resp.LastLogin = &v
	}
	return resp
}

func queryToResponse(msg domain.QueryMessage) QueryResponse {
	return QueryResponse{
		ID:        msg.ID,
		Username:  msg.Name,
		Email:     msg.Email,
		Msg:       msg.Message,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// fail maps service and validation errors to a status and a caller-safe body. Anything
// unrecognised is logged in full and reported as a store error.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, envelope{Message: verr.Message, Error: kindValidation, Fields: verr.Fields})
	case errors.Is(err, service.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, envelope{Message: "Username already exists", Error: kindDuplicateUsername})
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, envelope{Message: "Email already exists", Error: kindDuplicateEmail})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, envelope{Message: "Invalid username or password", Error: kindInvalidCredentials})
	case errors.Is(err, service.ErrQueryNotFound):
		c.JSON(http.StatusNotFound, envelope{Message: "Query not found", Error: kindNotFound})
	default:
		requestLog(c, h.logger).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, envelope{Message: "Internal server error", Error: kindStore})
	}
}

func badBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, envelope{Message: "Invalid request body", Error: kindValidation})
	_ = c.Error(err)
}
