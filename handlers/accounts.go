package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wallet-server/apierr"
	"wallet-server/repository"
)

type createAccountRequest struct {
	UserID      int64  `json:"user_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	AccountType string `json:"account_type" binding:"required"`
	Balance     string `json:"balance"`
	Currency    string `json:"currency" binding:"required"`
}

type updateAccountRequest struct {
	Name        *string `json:"name"`
	AccountType *string `json:"account_type"`
	Balance     *string `json:"balance"`
	Currency    *string `json:"currency"`
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	balance, err := parseOptionalDecimal("balance", req.Balance)
	if err != nil {
		apierr.Abort(c, err)
		return
	}

	account, err := h.store.CreateAccount(c.Request.Context(), req.UserID, req.Name, req.AccountType, balance, req.Currency)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *Handler) ListAccounts(c *gin.Context) {
	userID, err := queryID(c, "user_id")
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	accounts, err := h.store.FindAccountsByUser(c.Request.Context(), userID)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *Handler) GetAccount(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	account, err := h.store.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if account == nil {
		apierr.Abort(c, apierr.NotFound("account not found"))
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *Handler) UpdateAccount(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	var req updateAccountRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	balance, err := parseDecimalPtr("balance", req.Balance)
	if err != nil {
		apierr.Abort(c, err)
		return
	}

	account, err := h.store.UpdateAccount(c.Request.Context(), id, repository.AccountPatch{
		Name:        req.Name,
		AccountType: req.AccountType,
		Balance:     balance,
		Currency:    req.Currency,
	})
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if account == nil {
		apierr.Abort(c, apierr.NotFound("account not found"))
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	n, err := h.store.DeleteAccount(c.Request.Context(), id)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if n == 0 {
		apierr.Abort(c, apierr.NotFound("account not found"))
		return
	}
	c.Status(http.StatusNoContent)
}
