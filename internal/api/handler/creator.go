package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/RoshaanShahid/AudioX-sub000/internal/api/middleware"
	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
	"github.com/RoshaanShahid/AudioX-sub000/internal/model/dto"
	"github.com/RoshaanShahid/AudioX-sub000/internal/pkg/response"
	"github.com/RoshaanShahid/AudioX-sub000/internal/service"
)

type CreatorHandler struct {
	creatorService    *service.CreatorService
	withdrawalService *service.WithdrawalService
}

func NewCreatorHandler(creatorService *service.CreatorService, withdrawalService *service.WithdrawalService) *CreatorHandler {
	return &CreatorHandler{
		creatorService:    creatorService,
		withdrawalService: withdrawalService,
	}
}

// currentCreator 定位当前登录用户的创作者档案
func (h *CreatorHandler) currentCreator(c *gin.Context) (*model.Creator, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return nil, false
	}

	creator, err := h.creatorService.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, service.ErrNotACreator) {
			response.PermissionError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return nil, false
	}
	return creator, true
}

// ListEarnings 收益流水
// GET /api/v1/creator/earnings
func (h *CreatorHandler) ListEarnings(c *gin.Context) {
	creator, ok := h.currentCreator(c)
	if !ok {
		return
	}

	page, pageSize := parsePage(c)
	earnings, total, err := h.creatorService.ListEarnings(creator.ID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	items := make([]dto.EarningItem, 0, len(earnings))
	for _, e := range earnings {
		items = append(items, dto.EarningItem{
			ID:             e.ID,
			Type:           e.Type,
			AmountEarned:   e.AmountEarned.StringFixed(2),
			AudiobookTitle: e.AudiobookTitleAtTransaction,
			EarnedAt:       e.EarnedAt.Format("2006-01-02 15:04:05"),
		})
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// ListWithdrawals 提现历史
// GET /api/v1/creator/withdrawals
func (h *CreatorHandler) ListWithdrawals(c *gin.Context) {
	creator, ok := h.currentCreator(c)
	if !ok {
		return
	}

	page, pageSize := parsePage(c)
	requests, total, err := h.withdrawalService.ListByCreator(creator.ID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, requests)
}

// CreateWithdrawal 发起提现
// POST /api/v1/creator/withdrawals
func (h *CreatorHandler) CreateWithdrawal(c *gin.Context) {
	creator, ok := h.currentCreator(c)
	if !ok {
		return
	}

	var req dto.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		response.ParamError(c, "提现金额非法")
		return
	}

	request, err := h.withdrawalService.CreateRequest(creator.ID, req.AccountID, amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientBalance):
			response.InsufficientFundsError(c, err.Error())
		case errors.Is(err, service.ErrAmountBelowMinimum),
			errors.Is(err, service.ErrCreatorNotEligible):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrAccountNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "提现申请已提交", request)
}

// CancelWithdrawal 撤销提现
// POST /api/v1/creator/withdrawals/:id/cancel
func (h *CreatorHandler) CancelWithdrawal(c *gin.Context) {
	creator, ok := h.currentCreator(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "")
		return
	}

	if err := h.withdrawalService.CancelRequest(creator.ID, requestID); err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCancelWindowExpired),
			errors.Is(err, service.ErrInvalidTransition):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "提现申请已撤销", nil)
}

// ListAccounts 提现账户列表
// GET /api/v1/creator/withdrawal-accounts
func (h *CreatorHandler) ListAccounts(c *gin.Context) {
	creator, ok := h.currentCreator(c)
	if !ok {
		return
	}

	accounts, err := h.creatorService.ListAccounts(creator.ID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, accounts)
}

// AddAccount 新增提现账户
// POST /api/v1/creator/withdrawal-accounts
func (h *CreatorHandler) AddAccount(c *gin.Context) {
	creator, ok := h.currentCreator(c)
	if !ok {
		return
	}

	var req dto.AddWithdrawalAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	account, err := h.creatorService.AddAccount(creator.ID, req.Type, req.AccountTitle, req.Identifier, req.IsPrimary)
	if err != nil {
		if errors.Is(err, service.ErrInvalidIdentifier) {
			response.ParamError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "账户已添加", account)
}

// SetPrimaryAccount 切换主账户
// PUT /api/v1/creator/withdrawal-accounts/:id/primary
func (h *CreatorHandler) SetPrimaryAccount(c *gin.Context) {
	creator, ok := h.currentCreator(c)
	if !ok {
		return
	}

	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "")
		return
	}

	if err := h.creatorService.SetPrimaryAccount(creator.ID, accountID); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "主账户已更新", nil)
}

// DeleteAccount 删除提现账户
// DELETE /api/v1/creator/withdrawal-accounts/:id
func (h *CreatorHandler) DeleteAccount(c *gin.Context) {
	creator, ok := h.currentCreator(c)
	if !ok {
		return
	}

	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "")
		return
	}

	if err := h.creatorService.DeleteAccount(creator.ID, accountID); err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAccountInUse):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "账户已删除", nil)
}
