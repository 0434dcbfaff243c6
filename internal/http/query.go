package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"query-desk/internal/domain"
	"query-desk/internal/validate"
)

type submitQueryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// updateQueryRequest distinguishes an absent field (nil) from one sent as an empty string.
type updateQueryRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Message *string `json:"message"`
}

func (h *Handler) submitQuery(c *gin.Context) {
	var req submitQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	msg, err := h.queries.Submit(c.Request.Context(), domain.QueryInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Query submitted successfully", queryToResponse(*msg))
}

func (h *Handler) listQueries(c *gin.Context) {
	msgs, err := h.queries.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]QueryResponse, 0, len(msgs))
	for _, msg := range msgs {
		resp = append(resp, queryToResponse(msg))
	}
	respond(c, http.StatusOK, "", resp)
}

func (h *Handler) updateQuery(c *gin.Context) {
	id, err := validate.QueryID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var req updateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	patch := domain.QueryPatch{Name: req.Name, Email: req.Email, Message: req.Message}
	if err := h.queries.Update(c.Request.Context(), id, patch); err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Query updated successfully", nil)
}

func (h *Handler) deleteQuery(c *gin.Context) {
	id, err := validate.QueryID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.queries.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Query deleted successfully", nil)
}
