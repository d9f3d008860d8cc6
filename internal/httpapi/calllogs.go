package httpapi

import (
	"net/http"

	"campaign-platform/internal/calllog"

	"github.com/gin-gonic/gin"
)

func callLogQuery(c *gin.Context) calllog.Query {
	return calllog.Query{
		Status:     calllog.Status(c.Query("status")),
		AgentID:    c.Query("agent_id"),
		SearchText: c.Query("search"),
	}
}

func (h Handlers) ListCallLogs(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	q := callLogQuery(c)
	if q.Status != "" && !q.Status.IsValid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	logs, err := h.CallLogs.Query(c.Request.Context(), workspaceID, q)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_logs": logs})
}

// ExportCallLogs streams the filtered records as a CSV attachment.
func (h Handlers) ExportCallLogs(c *gin.Context) {
	workspaceID, ok := requireWorkspace(c)
	if !ok {
		return
	}
	q := callLogQuery(c)
	if q.Status != "" && !q.Status.IsValid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	out, err := h.CallLogs.Export(c.Request.Context(), workspaceID, q)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="call-logs.csv"`)
	c.Data(http.StatusOK, "text/csv", out)
}
