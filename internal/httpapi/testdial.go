package httpapi

import (
	"net/http"
	"strconv"

	"campaign-platform/internal/auth"
	"campaign-platform/internal/campaign"
	"campaign-platform/internal/prompt"
	"campaign-platform/internal/testdial"
	"campaign-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// StartTestSession moves the draft into testing and opens its dial session.
func (h Handlers) StartTestSession(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	campaignID := c.Param("campaign_id")

	d, err := h.Campaigns.BeginTesting(c.Request.Context(), workspaceID, campaignID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	s, err := h.Sessions.Start(c.Request.Context(), d)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionView(s))
}

// GetTestSession returns the live session state.
func (h Handlers) GetTestSession(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	s, err := h.Sessions.Get(workspaceID, c.Param("campaign_id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(s))
}

type addNumberRequest struct {
	Number string `json:"number"`
}

func (h Handlers) AddTestNumber(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	s, err := h.Sessions.Get(workspaceID, c.Param("campaign_id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	var req addNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.AddNumber(req.Number); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": s.Numbers()})
}

func (h Handlers) RemoveTestNumber(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	s, err := h.Sessions.Get(workspaceID, c.Param("campaign_id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	if err := s.RemoveNumber(index); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": s.Numbers()})
}

type dialRequest struct {
	Index int `json:"index"`
}

// Dial places one test call. The request blocks until the dial completes;
// client disconnect cancels the dial and the attempt reverts to pending.
func (h Handlers) Dial(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	campaignID := c.Param("campaign_id")
	s, err := h.Sessions.Get(workspaceID, campaignID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	var req dialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	attempt, err := s.Dial(c.Request.Context(), req.Index)
	if err != nil {
		if c.Request.Context().Err() != nil {
			// Client went away; nothing useful to write.
			c.Abort()
			return
		}
		writeDomainError(c, err)
		return
	}

	if h.Audit != nil {
		uid, _ := auth.UserID(c.Request.Context())
		role, _ := auth.Role(c.Request.Context())
		outcome := "failed"
		if attempt.Succeeded {
			outcome = "succeeded"
		}
		_ = h.Audit.LogTestDial(c.Request.Context(), workspaceID, uid, role, campaignID, req.Index, "test dial "+outcome)
	}
	c.JSON(http.StatusOK, attempt)
}

type feedbackRequest struct {
	Index  int             `json:"index"`
	Rating campaign.Rating `json:"rating"`
	Note   string          `json:"note"`
}

func (h Handlers) RecordFeedback(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	s, err := h.Sessions.Get(workspaceID, c.Param("campaign_id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if err := s.RequireCompleted(); err != nil {
		writeDomainError(c, err)
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.RecordFeedback(req.Index, req.Rating, req.Note); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complete": s.FeedbackComplete()})
}

// FinalizeTestSession closes feedback collection, synthesizes the adjusted
// prompt and attaches the frozen result to the campaign.
func (h Handlers) FinalizeTestSession(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	campaignID := c.Param("campaign_id")
	s, err := h.Sessions.Get(workspaceID, campaignID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	result, err := s.Finalize()
	if err != nil {
		writeDomainError(c, err)
		return
	}
	result.AdjustedPrompt = prompt.Synthesize(s.Prompt(), result.Feedback)

	d, err := h.Campaigns.AttachTestResult(c.Request.Context(), workspaceID, campaignID, s.Numbers(), result)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	h.Sessions.End(c.Request.Context(), workspaceID, campaignID)

	logger.FromGin(c).Info("test session finalized",
		"campaign_id", campaignID,
		"workspace_id", workspaceID,
		"completed_calls", len(result.Numbers),
	)
	c.JSON(http.StatusOK, d)
}

func sessionView(s *testdial.Session) gin.H {
	return gin.H{
		"campaign_id": s.CampaignID(),
		"numbers":     s.Numbers(),
		"locked":      s.Locked(),
		"attempts":    s.Attempts(),
		"ready":       s.ReadyForFeedback(),
		"complete":    s.FeedbackComplete(),
	}
}
