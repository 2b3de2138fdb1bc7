// Package handler exposes the core services over HTTP: auth, reports,
// votes, comments, adviser calls, the audit ledger and the chat
// websocket. It is a thin layer — all semantics live in the stores.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"tipsy/backend/internal/adviser"
	"tipsy/backend/internal/auth"
	"tipsy/backend/internal/chathub"
	"tipsy/backend/internal/store"
)

// Handler carries the service dependencies shared by all routes.
type Handler struct {
	Auth    *auth.Service
	Store   *store.Service
	Adviser *adviser.Service
	Hub     *chathub.ManagerService

	jwtSecret []byte
	sanitizer *bluemonday.Policy
}

// NewHandler wires the handler. The sanitizer is strict: report and
// comment text is stored as plain text, any markup is stripped.
func NewHandler(a *auth.Service, s *store.Service, adv *adviser.Service, hub *chathub.ManagerService, jwtSecret []byte) *Handler {
	return &Handler{
		Auth:      a,
		Store:     s,
		Adviser:   adv,
		Hub:       hub,
		jwtSecret: jwtSecret,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Register mounts every route on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.RegisterUser)

	authed := r.Group("/", h.RequireAuth())
	{
		authed.POST("/auth/logout", h.Logout)
		authed.GET("/auth/me", h.Me)

		authed.GET("/reports", h.ListReports)
		authed.GET("/reports/stats", h.ReportStats)
		authed.GET("/reports/:id", h.GetReport)
		authed.POST("/reports", h.CreateReport)
		authed.POST("/reports/:id/vote", h.VoteReport)
		authed.POST("/reports/:id/comments", h.AddComment)
		authed.POST("/reports/:id/chat", h.InitiateChat)
		authed.GET("/reports/:id/chat", h.GetChatSession)

		authed.GET("/ai/summary/:id", h.AiSummary)
		authed.GET("/ai/severity/:id", h.AiSeverity)
		authed.POST("/ai/duplicates", h.AiDuplicates)
		authed.GET("/ai/evidence/:id", h.AiEvidence)
		authed.POST("/ai/recommendation", h.AiRecommendation)

		authed.GET("/ledger", h.ListBlocks)

		authed.GET("/ws", h.ServeWebSocket)

		admin := authed.Group("/", h.RequireAdmin())
		{
			admin.PUT("/reports/:id/status", h.ChangeStatus)
			admin.GET("/reports/:id/submitter", h.ReportSubmitter)
			admin.GET("/users/:id", h.GetUser)
			admin.GET("/ledger/verify", h.VerifyLedger)
		}
	}
}
