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

type CoinHandler struct {
	coinService *service.CoinService
}

func NewCoinHandler(coinService *service.CoinService) *CoinHandler {
	return &CoinHandler{coinService: coinService}
}

// ListTransactions 金币流水
// GET /api/v1/coins/transactions
func (h *CoinHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, pageSize := parsePage(c)
	txns, total, err := h.coinService.ListTransactions(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	items := make([]dto.CoinTransactionItem, 0, len(txns))
	for _, txn := range txns {
		items = append(items, dto.CoinTransactionItem{
			ID:          txn.ID,
			Type:        txn.Type,
			Amount:      txn.Amount,
			Price:       txn.Price.StringFixed(2),
			PackName:    txn.PackName,
			Description: txn.Description,
			CreatedAt:   txn.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Spend 消费金币
// POST /api/v1/coins/spend
func (h *CoinHandler) Spend(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SpendCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.coinService.SpendCoins(userID, req.Amount, req.Description); err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientCoins):
			response.InsufficientFundsError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "消费成功", nil)
}

// Gift 赠送金币
// POST /api/v1/coins/gift
func (h *CoinHandler) Gift(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.GiftCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.coinService.GiftCoins(userID, req.ToUserID, req.Amount); err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientCoins):
			response.InsufficientFundsError(c, err.Error())
		case errors.Is(err, service.ErrGiftToSelf):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrRecipientNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "赠送成功", nil)
}

// parsePage 分页参数，默认第 1 页每页 20 条
func parsePage(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
