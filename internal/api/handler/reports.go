package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tipsy/backend/internal/models"
	"tipsy/backend/internal/store"
)

// storeError maps the store's sentinel errors onto status codes.
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": "not found"})
	case errors.Is(err, store.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"err": "no active session"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
	}
}

// ListReports returns all reports, optionally filtered by status
// and/or criticality query params.
func (h *Handler) ListReports(c *gin.Context) {
	status := models.ReportStatus(c.Query("status"))
	criticality := models.Criticality(c.Query("criticality"))

	if status != "" && !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "unknown status"})
		return
	}

	c.JSON(http.StatusOK, h.Store.FilterReports(status, criticality))
}

// GetReport returns one redacted report.
func (h *Handler) GetReport(c *gin.Context) {
	report, err := h.Store.ReportByID(c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// CreateReport submits a new report for the authenticated user.
func (h *Handler) CreateReport(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=5,max=255"`
		Description string `json:"description" binding:"required,min=20,max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	title := h.sanitizer.Sanitize(req.Title)
	description := h.sanitizer.Sanitize(req.Description)

	report, err := h.Store.SubmitReport(c.Request.Context(), title, description, h.identity(c))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// VoteReport casts an up- or downvote on a report.
func (h *Handler) VoteReport(c *gin.Context) {
	var req struct {
		Direction string `json:"direction" binding:"required,oneof=up down"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := h.Store.Vote(c.Param("id"), store.VoteDirection(req.Direction)); err != nil {
		storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddComment appends a comment to a report.
func (h *Handler) AddComment(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	comment, err := h.Store.AddComment(c.Param("id"), h.sanitizer.Sanitize(req.Text), h.identity(c))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ChangeStatus moves a report to a new triage state. Admin only.
func (h *Handler) ChangeStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof='Open' 'Under Review' 'Resolved'"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := h.Store.ChangeStatus(c.Param("id"), models.ReportStatus(req.Status)); err != nil {
		storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReportStats returns the chart aggregates.
func (h *Handler) ReportStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"byStatus":      h.Store.CountsByStatus(),
		"byCriticality": h.Store.CountsByCriticality(),
	})
}

// ReportSubmitter resolves a report's real submitter. Admin only.
func (h *Handler) ReportSubmitter(c *gin.Context) {
	report, err := h.Store.AdminReportByID(c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	user, err := h.Store.UserByID(report.SubmitterID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, publicUser(user))
}

// GetUser is the admin-only identity lookup.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Store.UserByID(c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, publicUser(user))
}

// InitiateChat creates (idempotently) the chat session for a report.
func (h *Handler) InitiateChat(c *gin.Context) {
	session, err := h.Store.InitiateChatSession(c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetChatSession returns the session transcript.
func (h *Handler) GetChatSession(c *gin.Context) {
	session, err := h.Store.ChatSession(c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
