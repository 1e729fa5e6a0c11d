package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wallet-server/apierr"
	"wallet-server/repository"
)

type createAssetRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	Symbol    string `json:"symbol" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Quantity  string `json:"quantity"`
	AvgPrice  string `json:"avg_price"`
	AssetType string `json:"asset_type" binding:"required"`
}

type updateAssetRequest struct {
	Symbol    *string `json:"symbol"`
	Name      *string `json:"name"`
	Quantity  *string `json:"quantity"`
	AvgPrice  *string `json:"avg_price"`
	AssetType *string `json:"asset_type"`
}

const assetConflict = "asset with this symbol already exists for user"

func (h *Handler) CreateAsset(c *gin.Context) {
	var req createAssetRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	qty, err := parseOptionalDecimal("quantity", req.Quantity)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	avg, err := parseOptionalDecimal("avg_price", req.AvgPrice)
	if err != nil {
		apierr.Abort(c, err)
		return
	}

	asset, err := h.store.CreateAsset(c.Request.Context(), req.UserID, req.Symbol, req.Name, qty, avg, req.AssetType)
	if err != nil {
		apierr.Abort(c, classify(err, assetConflict))
		return
	}
	c.JSON(http.StatusCreated, asset)
}

func (h *Handler) ListAssets(c *gin.Context) {
	userID, err := queryID(c, "user_id")
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	assets, err := h.store.FindAssetsByUser(c.Request.Context(), userID)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *Handler) GetAsset(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	asset, err := h.store.GetAssetByID(c.Request.Context(), id)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if asset == nil {
		apierr.Abort(c, apierr.NotFound("asset not found"))
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *Handler) UpdateAsset(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	var req updateAssetRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	qty, err := parseDecimalPtr("quantity", req.Quantity)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	avg, err := parseDecimalPtr("avg_price", req.AvgPrice)
	if err != nil {
		apierr.Abort(c, err)
		return
	}

	asset, err := h.store.UpdateAsset(c.Request.Context(), id, repository.AssetPatch{
		Symbol:    req.Symbol,
		Name:      req.Name,
		Quantity:  qty,
		AvgPrice:  avg,
		AssetType: req.AssetType,
	})
	if err != nil {
		apierr.Abort(c, classify(err, assetConflict))
		return
	}
	if asset == nil {
		apierr.Abort(c, apierr.NotFound("asset not found"))
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *Handler) DeleteAsset(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	n, err := h.store.DeleteAsset(c.Request.Context(), id)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if n == 0 {
		apierr.Abort(c, apierr.NotFound("asset not found"))
		return
	}
	c.Status(http.StatusNoContent)
}
