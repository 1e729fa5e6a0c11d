package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wallet-server/apierr"
	"wallet-server/metrics"
	"wallet-server/models"
)

// priceBatchSize is how many rows go into one upsert statement.
const priceBatchSize = 100

type putPriceRequest struct {
	Price    string `json:"price" binding:"required"`
	Currency string `json:"currency" binding:"required"`
}

type priceItem struct {
	Symbol   string `json:"symbol" binding:"required"`
	Price    string `json:"price" binding:"required"`
	Currency string `json:"currency" binding:"required"`
}

type batchPricesRequest struct {
	Prices []priceItem `json:"prices" binding:"dive"`
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (h *Handler) GetPrice(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	ctx := c.Request.Context()

	if h.prices != nil {
		cached, ok, err := h.prices.GetPrice(ctx, symbol)
		if err != nil {
			h.log.WithError(err).WithField("symbol", symbol).Warn("price cache read failed")
		}
		metrics.RecordPriceCache(ok)
		if ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	price, err := h.store.GetAssetPrice(ctx, symbol)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if price == nil {
		apierr.Abort(c, apierr.NotFound("price not found"))
		return
	}
	h.cachePrice(c, *price)
	c.JSON(http.StatusOK, price)
}

func (h *Handler) PutPrice(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	var req putPriceRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	value, err := parseDecimal("price", req.Price)
	if err != nil {
		apierr.Abort(c, err)
		return
	}

	price, err := h.store.UpsertAssetPrice(c.Request.Context(), symbol, value, req.Currency)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	h.cachePrice(c, *price)
	c.JSON(http.StatusOK, price)
}

// BatchPrices upserts many prices in one transaction. A symbol repeated in
// the batch keeps its last value.
func (h *Handler) BatchPrices(c *gin.Context) {
	var req batchPricesRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	if len(req.Prices) == 0 {
		apierr.Abort(c, apierr.BadRequest(errors.New("prices must not be empty")))
		return
	}

	index := make(map[string]int, len(req.Prices))
	batch := make([]models.AssetPrice, 0, len(req.Prices))
	for _, item := range req.Prices {
		value, err := parseDecimal("price", item.Price)
		if err != nil {
			apierr.Abort(c, err)
			return
		}
		p := models.AssetPrice{Symbol: normalizeSymbol(item.Symbol), Price: models.NewDecimal(value), Currency: item.Currency}
		if i, seen := index[p.Symbol]; seen {
			batch[i] = p
			continue
		}
		index[p.Symbol] = len(batch)
		batch = append(batch, p)
	}

	ctx := c.Request.Context()
	n, err := h.store.UpsertAssetPrices(ctx, batch, priceBatchSize)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if h.prices != nil {
		for _, p := range batch {
			if err := h.prices.DeletePrice(ctx, p.Symbol); err != nil {
				h.log.WithError(err).WithField("symbol", p.Symbol).Warn("price cache invalidation failed")
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) cachePrice(c *gin.Context, p models.AssetPrice) {
	if h.prices == nil {
		return
	}
	if err := h.prices.SetPrice(c.Request.Context(), p); err != nil {
		h.log.WithError(err).WithField("symbol", p.Symbol).Warn("price cache write failed")
	}
}
