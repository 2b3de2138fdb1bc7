package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tipsy/backend/internal/config"
	"tipsy/backend/internal/models"
)

// AiSummary returns the adviser's summary for a report.
func (h *Handler) AiSummary(c *gin.Context) {
	if _, err := h.Store.ReportByID(c.Param("id")); err != nil {
		storeError(c, err)
		return
	}
	result, err := h.Adviser.Summarize(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AiSeverity returns the predicted criticality for a report.
func (h *Handler) AiSeverity(c *gin.Context) {
	if _, err := h.Store.ReportByID(c.Param("id")); err != nil {
		storeError(c, err)
		return
	}
	result, err := h.Adviser.PredictSeverity(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AiDuplicates checks draft text against earlier reports. The check
// only runs once there is enough text to hash meaningfully.
func (h *Handler) AiDuplicates(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if len(req.Text) < config.DuplicateCheckMinLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"err": fmt.Sprintf("text must be at least %d characters", config.DuplicateCheckMinLength),
		})
		return
	}

	result, err := h.Adviser.CheckDuplicate(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AiEvidence scores a report's attached evidence.
func (h *Handler) AiEvidence(c *gin.Context) {
	if _, err := h.Store.ReportByID(c.Param("id")); err != nil {
		storeError(c, err)
		return
	}
	result, err := h.Adviser.ScoreEvidenceIntegrity(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AiRecommendation returns the severity-keyed triage action.
func (h *Handler) AiRecommendation(c *gin.Context) {
	var req struct {
		Text     string `json:"text" binding:"required"`
		Severity string `json:"severity" binding:"required,oneof=Low Medium High"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	result, err := h.Adviser.Recommend(c.Request.Context(), req.Text, models.Criticality(req.Severity))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
