package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campaign-platform/internal/audit"
	"campaign-platform/internal/auth"
	"campaign-platform/internal/calllog"
	"campaign-platform/internal/campaign"
	"campaign-platform/internal/dialer"
	"campaign-platform/internal/rbac"
	"campaign-platform/internal/testdial"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	audit    *audit.MemoryRepo
	callLogs *calllog.MemoryRepo
}

// identity stamps a fixed caller onto every request.
func identity(userID, workspaceID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), userID, workspaceID, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func newTestEnv(t *testing.T, role string) *testEnv {
	t.Helper()

	auditRepo := audit.NewMemoryRepo()
	callLogRepo := calllog.NewMemoryRepo()
	auditSvc := audit.NewService(auditRepo)

	opts := testdial.DefaultOptions()
	opts.DialTimeout = time.Second
	h := Handlers{
		Campaigns: campaign.NewService(campaign.NewMemoryStore(), auditSvc),
		Sessions:  testdial.NewManager(dialer.NewSimulated(time.Millisecond), opts, nil),
		CallLogs:  calllog.NewService(callLogRepo),
		Audit:     auditSvc,
	}

	r := gin.New()
	v1 := r.Group("/v1")
	v1.Use(identity("u1", "ws-1", role))
	v1.Use(rbac.RequireWorkspace())
	{
		campaigns := v1.Group("/campaigns")
		campaigns.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleOperator))
		{
			campaigns.POST("/validate-section", h.ValidateSection)
			campaigns.POST("", h.CreateCampaign)
			campaigns.GET("", h.ListCampaigns)
			campaigns.GET("/:campaign_id", h.GetCampaign)
			campaigns.POST("/:campaign_id/status", h.SetCampaignStatus)

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
		callLogs := v1.Group("/call-logs")
		callLogs.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleOperator, rbac.RoleReviewer))
		{
			callLogs.GET("", h.ListCallLogs)
			callLogs.GET("/export", h.ExportCallLogs)
		}
	}

	return &testEnv{router: r, audit: auditRepo, callLogs: callLogRepo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func validSections() map[string]any {
	return map[string]any{
		"basics": map[string]any{
			"name":   "Q3 outreach",
			"prompt": "Greet warmly.",
		},
		"calling": map[string]any{
			"max_call_duration_seconds": 120,
			"max_concurrent_calls":      5,
		},
		"schedule": map[string]any{
			"schedule_mode": "immediate",
		},
		"training": map[string]any{
			"script": "Hi, this is a quick call about your plan.",
		},
	}
}

func createCampaign(t *testing.T, e *testEnv) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/campaigns", gin.H{"sections": validSections()})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	var d campaign.Draft
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if d.ID == "" || d.Status != campaign.StatusDraft {
		t.Fatalf("unexpected draft: %+v", d)
	}
	return d.ID
}

func TestCreateCampaign_SectionErrorsSurfacePerField(t *testing.T) {
	e := newTestEnv(t, rbac.RoleOperator)
	sections := validSections()
	sections["basics"] = map[string]any{"name": "  "}

	w := e.do(t, http.MethodPost, "/v1/campaigns", gin.H{"sections": sections})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "name is required") {
		t.Fatalf("expected field error, got %s", w.Body.String())
	}
}

func TestValidateSection_Endpoint(t *testing.T) {
	e := newTestEnv(t, rbac.RoleOperator)

	w := e.do(t, http.MethodPost, "/v1/campaigns/validate-section", gin.H{
		"section": "calling",
		"values":  gin.H{"max_call_duration_seconds": 30, "max_concurrent_calls": 5},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Valid  bool                  `json:"valid"`
		Errors []campaign.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Valid || len(resp.Errors) == 0 {
		t.Fatalf("expected invalid with errors, got %+v", resp)
	}
}

func TestTestDialFlow_EndToEnd(t *testing.T) {
	e := newTestEnv(t, rbac.RoleOperator)
	id := createCampaign(t, e)
	base := "/v1/campaigns/" + id + "/test"

	if w := e.do(t, http.MethodPost, base+"/start", nil); w.Code != http.StatusCreated {
		t.Fatalf("start: status %d body %s", w.Code, w.Body.String())
	}
	if w := e.do(t, http.MethodPost, base+"/numbers", gin.H{"number": "+15551234567"}); w.Code != http.StatusOK {
		t.Fatalf("add number: status %d body %s", w.Code, w.Body.String())
	}

	// Finalize before anything completed is refused.
	if w := e.do(t, http.MethodPost, base+"/finalize", nil); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("early finalize: status %d body %s", w.Code, w.Body.String())
	}

	if w := e.do(t, http.MethodPost, base+"/dial", gin.H{"index": 0}); w.Code != http.StatusOK {
		t.Fatalf("dial: status %d body %s", w.Code, w.Body.String())
	}

	// Pool is frozen after dispatch.
	if w := e.do(t, http.MethodPost, base+"/numbers", gin.H{"number": "+15557654321"}); w.Code != http.StatusConflict {
		t.Fatalf("add after lock: status %d body %s", w.Code, w.Body.String())
	}

	// Finalize still refused until feedback covers every completed call.
	if w := e.do(t, http.MethodPost, base+"/finalize", nil); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("finalize without feedback: status %d body %s", w.Code, w.Body.String())
	}

	fb := gin.H{"index": 0, "rating": "average", "note": "Speak slower"}
	if w := e.do(t, http.MethodPost, base+"/feedback", fb); w.Code != http.StatusOK {
		t.Fatalf("feedback: status %d body %s", w.Code, w.Body.String())
	}

	w := e.do(t, http.MethodPost, base+"/finalize", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("finalize: status %d body %s", w.Code, w.Body.String())
	}
	var d campaign.Draft
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Status != campaign.StatusReviewed {
		t.Fatalf("expected reviewed, got %s", d.Status)
	}
	if d.TestResult == nil {
		t.Fatalf("expected attached test result")
	}
	want := "Greet warmly.\n\nAdjustments based on test call feedback:\nSpeak slower"
	if d.TestResult.AdjustedPrompt != want {
		t.Fatalf("adjusted prompt: got %q, want %q", d.TestResult.AdjustedPrompt, want)
	}

	// Session is gone after finalize.
	if w := e.do(t, http.MethodGet, base, nil); w.Code != http.StatusNotFound {
		t.Fatalf("session after finalize: status %d", w.Code)
	}

	// Dial was audited.
	found := false
	for _, ev := range e.audit.ByCampaign(id) {
		if ev.Type == audit.EventTypeTestDial {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a test dial audit event")
	}
}

func TestSetCampaignStatus_ActivationIsOwnerGated(t *testing.T) {
	operator := newTestEnv(t, rbac.RoleOperator)
	id := createCampaign(t, operator)
	base := "/v1/campaigns/" + id + "/test"

	for _, step := range []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, base + "/start", nil},
		{http.MethodPost, base + "/numbers", gin.H{"number": "+15551234567"}},
		{http.MethodPost, base + "/dial", gin.H{"index": 0}},
		{http.MethodPost, base + "/feedback", gin.H{"index": 0, "rating": "good"}},
		{http.MethodPost, base + "/finalize", nil},
	} {
		if w := operator.do(t, step.method, step.path, step.body); w.Code >= 300 {
			t.Fatalf("%s %s: status %d body %s", step.method, step.path, w.Code, w.Body.String())
		}
	}

	w := operator.do(t, http.MethodPost, fmt.Sprintf("/v1/campaigns/%s/status", id), gin.H{"status": "active"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("operator activation: status %d body %s", w.Code, w.Body.String())
	}
}

func TestSetCampaignStatus_InvalidTransitionConflicts(t *testing.T) {
	e := newTestEnv(t, rbac.RoleOwner)
	id := createCampaign(t, e)

	w := e.do(t, http.MethodPost, fmt.Sprintf("/v1/campaigns/%s/status", id), gin.H{"status": "completed"})
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
}

func TestCallLogs_ListAndExport(t *testing.T) {
	e := newTestEnv(t, rbac.RoleReviewer)
	e.callLogs.Add(
		calllog.CallLog{ID: "l1", WorkspaceID: "ws-1", AgentID: "a1", AgentName: "Ava", PhoneNumber: "+15550001111", Status: calllog.StatusConnected, DurationSeconds: 65},
		calllog.CallLog{ID: "l2", WorkspaceID: "ws-1", AgentID: "a2", AgentName: "Ben", PhoneNumber: "+15550002222", Status: calllog.StatusBusy},
		calllog.CallLog{ID: "l3", WorkspaceID: "ws-2", AgentID: "a1", AgentName: "Ava", PhoneNumber: "+15550003333", Status: calllog.StatusConnected},
	)

	w := e.do(t, http.MethodGet, "/v1/call-logs?status=connected", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d body %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "ws-2") {
		t.Fatalf("workspace leak: %s", w.Body.String())
	}

	w = e.do(t, http.MethodGet, "/v1/call-logs/export?agent_id=a1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: status %d body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type: %s", ct)
	}
	lines := strings.Split(w.Body.String(), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}

	if w := e.do(t, http.MethodGet, "/v1/call-logs?status=ringing", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: %d", w.Code)
	}
}

func TestCallLogs_ReviewerCannotCreateCampaigns(t *testing.T) {
	e := newTestEnv(t, rbac.RoleReviewer)
	w := e.do(t, http.MethodPost, "/v1/campaigns", gin.H{"sections": validSections()})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
}
