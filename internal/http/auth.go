package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	account, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", accountToResponse(*account))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	account, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", accountToResponse(*account))
}

// overview serves the dashboard: every account and every query, side by side.
func (h *Handler) overview(c *gin.Context) {
	overview, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := OverviewResponse{
		Success: true,
		Users:   make([]AccountResponse, 0, len(overview.Users)),
		Queries: make([]QueryResponse, 0, len(overview.Queries)),
	}
	for _, account := range overview.Users {
		resp.Users = append(resp.Users, accountToResponse(account))
	}
	for _, msg := range overview.Queries {
		resp.Queries = append(resp.Queries, queryToResponse(msg))
	}
	c.JSON(http.StatusOK, resp)
}
