package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RoshaanShahid/AudioX-sub000/internal/api/middleware"
	"github.com/RoshaanShahid/AudioX-sub000/internal/model/dto"
	"github.com/RoshaanShahid/AudioX-sub000/internal/pkg/response"
	"github.com/RoshaanShahid/AudioX-sub000/internal/service"
)

// AdminHandler 后台：提现审核与对账补发
type AdminHandler struct {
	withdrawalService     *service.WithdrawalService
	reconciliationService *service.ReconciliationService
}

func NewAdminHandler(withdrawalService *service.WithdrawalService, reconciliationService *service.ReconciliationService) *AdminHandler {
	return &AdminHandler{
		withdrawalService:     withdrawalService,
		reconciliationService: reconciliationService,
	}
}

// ListWithdrawals 提现申请列表，可按状态筛选
// GET /api/v1/admin/withdrawals?status=pending
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	page, pageSize := parsePage(c)
	requests, total, err := h.withdrawalService.ListByStatus(c.Query("status"), page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, requests)
}

// MarkProcessing 标记处理中
// POST /api/v1/admin/withdrawals/:id/processing
func (h *AdminHandler) MarkProcessing(c *gin.Context) {
	adminID, requestID, ok := h.adminAndRequestID(c)
	if !ok {
		return
	}

	var req dto.AdminProcessingRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.withdrawalService.MarkProcessing(requestID, adminID, req.Notes); err != nil {
		h.writeTransitionError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已标记处理中", nil)
}

// Complete 完成提现
// POST /api/v1/admin/withdrawals/:id/complete
func (h *AdminHandler) Complete(c *gin.Context) {
	adminID, requestID, ok := h.adminAndRequestID(c)
	if !ok {
		return
	}

	var req dto.AdminCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.withdrawalService.Complete(requestID, adminID, req.PaymentReference, req.PaymentSlipURL); err != nil {
		if errors.Is(err, service.ErrPaymentProofNeeded) {
			response.ParamError(c, err.Error())
			return
		}
		h.writeTransitionError(c, err)
		return
	}
	response.SuccessWithMessage(c, "提现已完成", nil)
}

// Reject 拒绝提现
// POST /api/v1/admin/withdrawals/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	adminID, requestID, ok := h.adminAndRequestID(c)
	if !ok {
		return
	}

	var req dto.AdminRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "拒绝必须填写理由")
		return
	}

	if err := h.withdrawalService.Reject(requestID, adminID, req.Reason); err != nil {
		if errors.Is(err, service.ErrRejectionReasonNeeded) {
			response.ParamError(c, err.Error())
			return
		}
		h.writeTransitionError(c, err)
		return
	}
	response.SuccessWithMessage(c, "提现已拒绝", nil)
}

// ListReconciliations 待补发对账列表
// GET /api/v1/admin/reconciliations
func (h *AdminHandler) ListReconciliations(c *gin.Context) {
	page, pageSize := parsePage(c)
	recs, total, err := h.reconciliationService.ListUnresolved(page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, recs)
}

// ResolveReconciliation 补发欠付分成
// POST /api/v1/admin/reconciliations/:id/resolve
func (h *AdminHandler) ResolveReconciliation(c *gin.Context) {
	adminID, recID, ok := h.adminAndRequestID(c)
	if !ok {
		return
	}

	if err := h.reconciliationService.Resolve(recID, adminID); err != nil {
		switch {
		case errors.Is(err, service.ErrReconciliationNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyResolved):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrCreatorStillBlocked):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "已补发", nil)
}

func (h *AdminHandler) adminAndRequestID(c *gin.Context) (adminID, requestID int64, ok bool) {
	adminID, authed := middleware.GetUserID(c)
	if !authed {
		response.AuthError(c, "")
		return 0, 0, false
	}

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "")
		return 0, 0, false
	}
	return adminID, requestID, true
}

func (h *AdminHandler) writeTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		response.ParamError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
