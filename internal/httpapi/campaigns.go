package httpapi

import (
	"net/http"
	"time"

	"campaign-platform/internal/auth"
	"campaign-platform/internal/campaign"
	"campaign-platform/internal/rbac"
	"campaign-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// timeNow is swapped in handler tests.
var timeNow = time.Now

type validateSectionRequest struct {
	Section campaign.Section       `json:"section"`
	Values  campaign.SectionValues `json:"values"`
}

// ValidateSection checks one wizard section without touching any draft.
func (h Handlers) ValidateSection(c *gin.Context) {
	var req validateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !req.Section.IsValid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": campaign.ErrUnknownSection.Error()})
		return
	}
	errs := campaign.ValidateSection(req.Section, req.Values, timeNow())
	c.JSON(http.StatusOK, gin.H{"valid": len(errs) == 0, "errors": errs})
}

type createCampaignRequest struct {
	Sections map[campaign.Section]campaign.SectionValues `json:"sections"`
}

// CreateCampaign validates all sections, assembles a draft and persists it.
func (h Handlers) CreateCampaign(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	b := campaign.NewBuilder(workspaceID)
	sectionErrs := make(map[campaign.Section][]campaign.FieldError)
	for _, sec := range campaign.Sections() {
		if errs := b.SetSection(sec, req.Sections[sec]); len(errs) > 0 {
			sectionErrs[sec] = errs
		}
	}
	if len(sectionErrs) > 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":  campaign.ErrIncompleteDraft.Error(),
			"errors": sectionErrs,
		})
		return
	}

	d, err := h.Campaigns.CreateDraft(c.Request.Context(), b)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	logger.FromGin(c).Info("campaign draft created", "campaign_id", d.ID, "workspace_id", workspaceID)
	c.JSON(http.StatusCreated, d)
}

func (h Handlers) ListCampaigns(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	drafts, err := h.Campaigns.List(c.Request.Context(), workspaceID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": drafts})
}

func (h Handlers) GetCampaign(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	d, err := h.Campaigns.Get(c.Request.Context(), workspaceID, c.Param("campaign_id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type setStatusRequest struct {
	Status campaign.Status `json:"status"`
}

// SetCampaignStatus drives the approve/pause/resume/complete transitions.
// Going live is an approval action reserved for owners.
func (h Handlers) SetCampaignStatus(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !req.Status.IsValid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	if req.Status == campaign.StatusActive {
		role, _ := auth.Role(c.Request.Context())
		if role != rbac.RoleOwner && !rbac.IsAdmin(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "activation requires owner role"})
			return
		}
	}
	d, err := h.Campaigns.SetStatus(c.Request.Context(), workspaceID, c.Param("campaign_id"), req.Status)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
