package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wallet-server/apierr"
	"wallet-server/repository"
)

type createTransactionRequest struct {
	AccountID       int64   `json:"account_id" binding:"required"`
	TransactionType string  `json:"transaction_type" binding:"required"`
	Amount          string  `json:"amount" binding:"required"`
	Description     string  `json:"description"`
	Category        *string `json:"category"`
}

// A null category leaves the stored value alone; clear_category removes it.
type updateTransactionRequest struct {
	TransactionType *string `json:"transaction_type"`
	Amount          *string `json:"amount"`
	Description     *string `json:"description"`
	Category        *string `json:"category"`
	ClearCategory   bool    `json:"clear_category"`
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		apierr.Abort(c, err)
		return
	}

	tx, err := h.store.CreateTransaction(c.Request.Context(), req.AccountID, req.TransactionType, amount, req.Description, req.Category)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *Handler) ListTransactions(c *gin.Context) {
	accountID, err := queryID(c, "account_id")
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	txs, err := h.store.FindTransactionsByAccount(c.Request.Context(), accountID)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	tx, err := h.store.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if tx == nil {
		apierr.Abort(c, apierr.NotFound("transaction not found"))
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	var req updateTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	amount, err := parseDecimalPtr("amount", req.Amount)
	if err != nil {
		apierr.Abort(c, err)
		return
	}

	tx, err := h.store.UpdateTransaction(c.Request.Context(), id, repository.TransactionPatch{
		TransactionType: req.TransactionType,
		Amount:          amount,
		Description:     req.Description,
		Category:        req.Category,
		ClearCategory:   req.ClearCategory,
	})
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if tx == nil {
		apierr.Abort(c, apierr.NotFound("transaction not found"))
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	n, err := h.store.DeleteTransaction(c.Request.Context(), id)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if n == 0 {
		apierr.Abort(c, apierr.NotFound("transaction not found"))
		return
	}
	c.Status(http.StatusNoContent)
}
