package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mwangaza-erp/approvalflow/internal/application/engine"
	"github.com/mwangaza-erp/approvalflow/internal/application/service"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/internal/domain/flow"
	"github.com/mwangaza-erp/approvalflow/internal/reports"
)

// actorHeader carries the authenticated caller's user ID, set by the API
// gateway in front of this service.
const actorHeader = "X-Actor-ID"

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine            *engine.Engine
	flowService       service.FlowService
	acceptanceService service.AcceptanceService
	voucher           *reports.VoucherGenerator
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	eng *engine.Engine,
	flowService service.FlowService,
	acceptanceService service.AcceptanceService,
	voucher *reports.VoucherGenerator,
	logger Logger,
) *Handlers {
	return &Handlers{
		engine:            eng,
		flowService:       flowService,
		acceptanceService: acceptanceService,
		voucher:           voucher,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// EntityResponse represents a workflow entity in API responses
type EntityResponse struct {
	ID              string                   `json:"id"`
	Type            string                   `json:"type"`
	Department      string                   `json:"department"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description,omitempty"`
	Amount          float64                  `json:"amount"`
	Originator      string                   `json:"originator"`
	Status          string                   `json:"status"`
	Version         int64                    `json:"version"`
	LevelDeadline   *string                  `json:"current_level_deadline,omitempty"`
	ApprovalRecords []ApprovalRecordResponse `json:"approval_records,omitempty"`
	Rejection       *RejectionResponse       `json:"rejection,omitempty"`
	RevisionRequest *RevisionRequestResponse `json:"revision_request,omitempty"`
	Payment         *PaymentResponse         `json:"payment,omitempty"`
	CreatedAt       string                   `json:"created_at"`
	UpdatedAt       string                   `json:"updated_at"`
}

// ApprovalRecordResponse represents one level's approval
type ApprovalRecordResponse struct {
	Role       string `json:"role"`
	ApprovedBy string `json:"approved_by"`
	ApprovedAt string `json:"approved_at"`
	Comments   string `json:"comments,omitempty"`
	Department string `json:"department,omitempty"`
}

// RejectionResponse represents a rejection in API responses
type RejectionResponse struct {
	RejectedBy string `json:"rejected_by"`
	Reason     string `json:"reason"`
	Level      int    `json:"level"`
	RejectedAt string `json:"rejected_at"`
}

// RevisionRequestResponse represents an open revision request
type RevisionRequestResponse struct {
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason"`
	Comments    string `json:"comments,omitempty"`
	RequestedAt string `json:"requested_at"`
}

// PaymentResponse represents the settlement record
type PaymentResponse struct {
	Method           string `json:"method"`
	TransactionID    string `json:"transaction_id"`
	PaymentAdviceURL string `json:"payment_advice_url,omitempty"`
	PaidBy           string `json:"paid_by"`
	PaidAt           string `json:"paid_at"`
}

// AuditEntryResponse represents one audit trail entry
type AuditEntryResponse struct {
	Action      string `json:"action"`
	PerformedBy string `json:"performed_by"`
	PerformedAt string `json:"performed_at"`
	Details     string `json:"details,omitempty"`
}

// FlowResponse represents a flow template in API responses
type FlowResponse struct {
	ID          string             `json:"id"`
	Department  string             `json:"department"`
	Description string             `json:"description,omitempty"`
	IsActive    bool               `json:"is_active"`
	Steps       []FlowStepResponse `json:"steps"`
}

// FlowStepResponse represents one flow step
type FlowStepResponse struct {
	StepNumber  int    `json:"step_number"`
	Role        string `json:"role"`
	Department  string `json:"department"`
	Description string `json:"description,omitempty"`
	NextStatus  string `json:"next_status"`
}

// CreateEntityRequest is the POST /api/entities payload
type CreateEntityRequest struct {
	Type        string  `json:"type" binding:"required"`
	Department  string  `json:"department" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// RejectRequest is the reject payload
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ApproveRequest is the approve payload
type ApproveRequest struct {
	Comments string `json:"comments"`
}

// RevisionRequest is the request-revision payload
type RevisionRequest struct {
	Reason   string `json:"reason" binding:"required"`
	Comments string `json:"comments"`
}

// MarkPaidRequest is the mark-paid payload
type MarkPaidRequest struct {
	Method           string `json:"method" binding:"required"`
	TransactionID    string `json:"transaction_id" binding:"required"`
	PaymentAdviceURL string `json:"payment_advice_url"`
}

// VerifyAcceptanceRequest is the acceptance verification payload
type VerifyAcceptanceRequest struct {
	Code string `json:"code" binding:"required"`
}

// UpsertFlowRequest is the PUT /api/flows/:department payload
type UpsertFlowRequest struct {
	Description string             `json:"description"`
	Steps       []FlowStepResponse `json:"steps" binding:"required,min=1"`
}

// ListEntitiesRequest represents query parameters for listing entities
type ListEntitiesRequest struct {
	Type   string `form:"type" binding:"required"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateEntity handles POST /api/entities
func (h *Handlers) CreateEntity(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	ent, err := h.engine.Create(c.Request.Context(), engine.CreateInput{
		Type:        entity.Type(req.Type),
		Department:  req.Department,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
	}, actorID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toEntityResponse(ent)})
}

// ListEntities handles GET /api/entities?type=claim
func (h *Handlers) ListEntities(c *gin.Context) {
	var req ListEntitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	entities, err := h.engine.List(c.Request.Context(), entity.Type(req.Type), req.Limit, req.Offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	responses := make([]EntityResponse, 0, len(entities))
	for _, ent := range entities {
		responses = append(responses, toEntityResponse(ent))
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// GetEntity handles GET /api/entities/:id
func (h *Handlers) GetEntity(c *gin.Context) {
	ent, err := h.engine.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toEntityResponse(ent)})
}

// DeleteEntity handles DELETE /api/entities/:id
func (h *Handlers) DeleteEntity(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.engine.Delete(c.Request.Context(), c.Param("id"), actorID); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// GetAuditTrail handles GET /api/entities/:id/audit-trail
func (h *Handlers) GetAuditTrail(c *gin.Context) {
	trail, err := h.engine.AuditTrail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	responses := make([]AuditEntryResponse, 0, len(trail))
	for _, e := range trail {
		responses = append(responses, AuditEntryResponse{
			Action:      e.Action,
			PerformedBy: e.PerformedBy,
			PerformedAt: e.PerformedAt.Format(time.RFC3339),
			Details:     e.Details,
		})
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// DownloadVoucher handles GET /api/entities/:id/voucher
func (h *Handlers) DownloadVoucher(c *gin.Context) {
	ent, err := h.engine.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.voucher.Generate(ent, &buf); err != nil {
		if errors.Is(err, reports.ErrNotSettled) {
			c.JSON(http.StatusConflict, Response{Success: false, Error: "entity has not been paid"})
			return
		}
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("voucher-%s.xlsx", ent.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// SubmitEntity handles POST /api/entities/:id/submit
func (h *Handlers) SubmitEntity(c *gin.Context) {
	h.transition(c, func(actorID string) (*entity.WorkflowEntity, error) {
		return h.engine.Submit(c.Request.Context(), c.Param("id"), actorID)
	})
}

// ApproveEntity handles POST /api/entities/:id/approve
func (h *Handlers) ApproveEntity(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.badRequest(c, "invalid request body")
		return
	}

	h.transition(c, func(actorID string) (*entity.WorkflowEntity, error) {
		return h.engine.Approve(c.Request.Context(), c.Param("id"), actorID, req.Comments)
	})
}

// RejectEntity handles POST /api/entities/:id/reject
func (h *Handlers) RejectEntity(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "reason is required")
		return
	}

	h.transition(c, func(actorID string) (*entity.WorkflowEntity, error) {
		return h.engine.Reject(c.Request.Context(), c.Param("id"), actorID, req.Reason)
	})
}

// RequestRevision handles POST /api/entities/:id/request-revision
func (h *Handlers) RequestRevision(c *gin.Context) {
	var req RevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "reason is required")
		return
	}

	h.transition(c, func(actorID string) (*entity.WorkflowEntity, error) {
		return h.engine.RequestRevision(c.Request.Context(), c.Param("id"), actorID, engine.RevisionInput{
			Reason:   req.Reason,
			Comments: req.Comments,
		})
	})
}

// MarkPaid handles POST /api/entities/:id/mark-paid
func (h *Handlers) MarkPaid(c *gin.Context) {
	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "method and transaction_id are required")
		return
	}

	h.transition(c, func(actorID string) (*entity.WorkflowEntity, error) {
		return h.engine.MarkPaid(c.Request.Context(), c.Param("id"), actorID, engine.PaymentInput{
			Method:           req.Method,
			TransactionID:    req.TransactionID,
			PaymentAdviceURL: req.PaymentAdviceURL,
		})
	})
}

// CancelEntity handles POST /api/entities/:id/cancel
func (h *Handlers) CancelEntity(c *gin.Context) {
	h.transition(c, func(actorID string) (*entity.WorkflowEntity, error) {
		return h.engine.Cancel(c.Request.Context(), c.Param("id"), actorID)
	})
}

// IssueAcceptanceCode handles POST /api/contracts/:id/acceptance/issue
func (h *Handlers) IssueAcceptanceCode(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	if err := h.acceptanceService.IssueCode(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// VerifyAcceptanceCode handles POST /api/contracts/:id/acceptance/verify
func (h *Handlers) VerifyAcceptanceCode(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req VerifyAcceptanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "code is required")
		return
	}

	if err := h.acceptanceService.VerifyCode(c.Request.Context(), c.Param("id"), req.Code, actorID); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ListFlows handles GET /api/flows
func (h *Handlers) ListFlows(c *gin.Context) {
	flows, err := h.flowService.ListFlows(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	responses := make([]FlowResponse, 0, len(flows))
	for _, tpl := range flows {
		responses = append(responses, toFlowResponse(tpl))
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// GetFlow handles GET /api/flows/:department
func (h *Handlers) GetFlow(c *gin.Context) {
	tpl, err := h.flowService.GetFlow(c.Request.Context(), c.Param("department"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toFlowResponse(tpl)})
}

// UpsertFlow handles PUT /api/flows/:department
func (h *Handlers) UpsertFlow(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	var req UpsertFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "steps are required")
		return
	}

	steps := make([]entity.FlowStep, 0, len(req.Steps))
	for _, s := range req.Steps {
		steps = append(steps, entity.FlowStep{
			StepNumber:  s.StepNumber,
			Role:        s.Role,
			Department:  s.Department,
			Description: s.Description,
			NextStatus:  s.NextStatus,
		})
	}

	tpl, err := h.flowService.UpsertFlow(c.Request.Context(), c.Param("department"), req.Description, steps)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toFlowResponse(tpl)})
}

// transition runs one lifecycle verb and writes the updated entity.
func (h *Handlers) transition(c *gin.Context, fn func(actorID string) (*entity.WorkflowEntity, error)) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	ent, err := fn(actorID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toEntityResponse(ent)})
}

// actor extracts the caller's user ID, rejecting unidentified requests.
func (h *Handlers) actor(c *gin.Context) (string, bool) {
	actorID := c.GetHeader(actorHeader)
	if actorID == "" {
		c.JSON(http.StatusUnauthorized, Response{
			Success: false,
			Error:   "missing " + actorHeader + " header",
		})
		return "", false
	}
	return actorID, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// fail maps engine and service errors to HTTP statuses.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, engine.ErrNotFound), errors.Is(err, flow.ErrFlowNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, engine.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, engine.ErrInvalidTransition), errors.Is(err, engine.ErrStatusConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, engine.ErrNoApprovers),
		errors.Is(err, engine.ErrValidation),
		errors.Is(err, flow.ErrInvalidFlow),
		errors.Is(err, service.ErrInvalidAcceptanceCode):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	default:
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}

	c.JSON(status, Response{Success: false, Error: msg})
}

// toEntityResponse converts a domain entity to the API shape
func toEntityResponse(ent *entity.WorkflowEntity) EntityResponse {
	resp := EntityResponse{
		ID:          ent.ID,
		Type:        string(ent.Type),
		Department:  ent.Department,
		Title:       ent.Title,
		Description: ent.Description,
		Amount:      ent.Amount,
		Originator:  ent.Originator,
		Status:      ent.Status,
		Version:     ent.Version,
		CreatedAt:   ent.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   ent.UpdatedAt.Format(time.RFC3339),
	}

	if ent.CurrentLevelDeadline != nil {
		deadline := ent.CurrentLevelDeadline.Format(time.RFC3339)
		resp.LevelDeadline = &deadline
	}
	records := make([]entity.ApprovalRecord, 0, len(ent.ApprovalRecords))
	for _, rec := range ent.ApprovalRecords {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ApprovedAt.Before(records[j].ApprovedAt) })
	for _, rec := range records {
		resp.ApprovalRecords = append(resp.ApprovalRecords, ApprovalRecordResponse{
			Role:       rec.Role,
			ApprovedBy: rec.ApprovedBy,
			ApprovedAt: rec.ApprovedAt.Format(time.RFC3339),
			Comments:   rec.Comments,
			Department: rec.Department,
		})
	}
	if rej := ent.Rejection; rej != nil {
		resp.Rejection = &RejectionResponse{
			RejectedBy: rej.RejectedBy,
			Reason:     rej.Reason,
			Level:      rej.Level,
			RejectedAt: rej.RejectedAt.Format(time.RFC3339),
		}
	}
	if rev := ent.RevisionRequest; rev != nil {
		resp.RevisionRequest = &RevisionRequestResponse{
			RequestedBy: rev.RequestedBy,
			Reason:      rev.Reason,
			Comments:    rev.Comments,
			RequestedAt: rev.RequestedAt.Format(time.RFC3339),
		}
	}
	if p := ent.Payment; p != nil {
		resp.Payment = &PaymentResponse{
			Method:           p.Method,
			TransactionID:    p.TransactionID,
			PaymentAdviceURL: p.PaymentAdviceURL,
			PaidBy:           p.PaidBy,
			PaidAt:           p.PaidAt.Format(time.RFC3339),
		}
	}
	return resp
}

// toFlowResponse converts a flow template to the API shape
func toFlowResponse(tpl *entity.ApprovalFlowTemplate) FlowResponse {
	resp := FlowResponse{
		ID:          tpl.ID,
		Department:  tpl.Department,
		Description: tpl.Description,
		IsActive:    tpl.IsActive,
	}
	for _, s := range tpl.Steps {
		resp.Steps = append(resp.Steps, FlowStepResponse{
			StepNumber:  s.StepNumber,
			Role:        s.Role,
			Department:  s.Department,
			Description: s.Description,
			NextStatus:  s.NextStatus,
		})
	}
	return resp
}
