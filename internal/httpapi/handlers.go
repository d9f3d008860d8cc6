package httpapi

import (
	"errors"
	"net/http"
	"time"

	"campaign-platform/internal/audit"
	"campaign-platform/internal/auth"
	"campaign-platform/internal/calllog"
	"campaign-platform/internal/campaign"
	"campaign-platform/internal/testdial"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Campaigns *campaign.Service
	Sessions  *testdial.Manager
	CallLogs  *calllog.Service
	Audit     *audit.Service
}

// --- Auth ---

type loginRequest struct {
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
	Role        string `json:"role"`
}

// Login issues an access token.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.WorkspaceID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, workspace_id, role required"})
		return
	}
	token, err := h.Auth.Issue(time.Now(), req.UserID, req.WorkspaceID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	wid, _ := auth.WorkspaceID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "workspace_id": wid, "role": role})
}

// requireWorkspace pulls the caller's workspace from context or aborts.
func requireWorkspace(c *gin.Context) (string, bool) {
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil || workspaceID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return "", false
	}
	return workspaceID, true
}

// writeDomainError maps domain sentinel errors onto HTTP statuses. Unmapped
// errors are treated as internal.
func writeDomainError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, campaign.ErrNotFound),
		errors.Is(err, testdial.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, campaign.ErrInvalidTransition),
		errors.Is(err, campaign.ErrResultAttached),
		errors.Is(err, testdial.ErrSessionExists),
		errors.Is(err, testdial.ErrSessionLocked),
		errors.Is(err, testdial.ErrAlreadyInProgress),
		errors.Is(err, testdial.ErrRedialDisabled):
		status = http.StatusConflict
	case errors.Is(err, campaign.ErrIncompleteDraft),
		errors.Is(err, testdial.ErrDuplicateNumber),
		errors.Is(err, testdial.ErrLimitExceeded),
		errors.Is(err, testdial.ErrMinimumRequired),
		errors.Is(err, testdial.ErrInvalidNumber),
		errors.Is(err, testdial.ErrIndexOutOfRange),
		errors.Is(err, testdial.ErrInvalidRating),
		errors.Is(err, testdial.ErrNotCompleted),
		errors.Is(err, testdial.ErrNoCompletedCalls),
		errors.Is(err, testdial.ErrIncompleteFeedback),
		errors.Is(err, calllog.ErrInvalidRequest):
		status = http.StatusUnprocessableEntity
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
