package main

import (
	"campaign-platform/internal/httpapi"
	"campaign-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	v1.Use(rbac.RequireWorkspace())
	{
		v1.GET("/me", h.Me)

		// CAMPAIGN routes: draft building and lifecycle.
		campaigns := v1.Group("/campaigns")
		campaigns.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleOperator))
		{
			campaigns.POST("/validate-section", h.ValidateSection)
			campaigns.POST("", h.CreateCampaign)
			campaigns.GET("", h.ListCampaigns)
			campaigns.GET("/:campaign_id", h.GetCampaign)

			// Status transitions; activation is additionally owner-gated
			// inside the handler.
			campaigns.POST("/:campaign_id/status", h.SetCampaignStatus)

			// TEST-DIAL routes: one live session per draft.
			test := campaigns.Group("/:campaign_id/test")
			{
				test.POST("/start", h.StartTestSession)
				test.GET("", h.GetTestSession)
				test.POST("/numbers", h.AddTestNumber)
				test.DELETE("/numbers/:index", h.RemoveTestNumber)
				test.POST("/dial", h.Dial)
				test.POST("/feedback", h.RecordFeedback)
				test.POST("/finalize", h.FinalizeTestSession)
			}
		}

		// CALL LOG routes: read-only history, reviewers included.
		callLogs := v1.Group("/call-logs")
		callLogs.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleOperator, rbac.RoleReviewer))
		{
			callLogs.GET("", h.ListCallLogs)
			callLogs.GET("/export", h.ExportCallLogs)
		}
	}
}
