package handler

import (
	"storefront-wallet/internal/adapter/http/dto"
	"storefront-wallet/internal/core/ports"
	"storefront-wallet/pkg/apperror"
	"storefront-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet-related endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetWallet handles GET /api/v1/wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	response.OK(c, dto.WalletResponse{
		Balance:          h.walletSvc.Balance(),
		TransactionCount: len(h.walletSvc.History()),
	})
}

// TopUp handles POST /api/v1/wallet/topup.
func (h *WalletHandler) TopUp(c *gin.Context) {
	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	tx, err := h.walletSvc.TopUp(c.Request.Context(), req.Amount, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTransactionResponse(tx))
}

// Refund handles POST /api/v1/wallet/refund.
func (h *WalletHandler) Refund(c *gin.Context) {
	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	tx, err := h.walletSvc.Refund(c.Request.Context(), req.TransactionID, req.Amount, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTransactionResponse(tx))
}

// ListTransactions handles GET /api/v1/wallet/transactions.
// Transactions are returned newest first.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	history := h.walletSvc.History()

	items := make([]dto.TransactionResponse, 0, len(history))
	for i := range history {
		items = append(items, dto.ToTransactionResponse(&history[i]))
	}

	response.OK(c, items)
}

// GetTransaction handles GET /api/v1/wallet/transactions/:id.
func (h *WalletHandler) GetTransaction(c *gin.Context) {
	id := c.Param("id")

	tx := h.walletSvc.FindTransaction(id)
	if tx == nil {
		response.Error(c, apperror.ErrTransactionNotFound(id))
		return
	}

	response.OK(c, dto.ToTransactionResponse(tx))
}
