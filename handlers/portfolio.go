package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"wallet-server/apierr"
	"wallet-server/middleware"
	"wallet-server/models"
)

type holding struct {
	AssetID      int64            `json:"asset_id"`
	Symbol       string           `json:"symbol"`
	Name         string           `json:"name"`
	AssetType    string           `json:"asset_type"`
	Quantity     models.Decimal   `json:"quantity"`
	AvgPrice     models.Decimal   `json:"avg_price"`
	CostBasis    decimal.Decimal  `json:"cost_basis"`
	CurrentPrice *models.Decimal  `json:"current_price"`
	Currency     *string          `json:"currency"`
	MarketValue  *decimal.Decimal `json:"market_value"`
	ProfitLoss   *decimal.Decimal `json:"profit_loss"`
}

type portfolioResponse struct {
	UserID          int64           `json:"user_id"`
	Assets          []holding       `json:"assets"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
}

// portfolioUser takes user_id from the query, or from the token when the
// query omits it.
func portfolioUser(c *gin.Context) (int64, error) {
	if _, ok := c.GetQuery("user_id"); !ok {
		if claims, ok := middleware.ClaimsFrom(c); ok {
			return claims.UID, nil
		}
	}
	return queryID(c, "user_id")
}

// GetPortfolio values each of a user's assets at its latest known price.
// Assets without a price are reported with null price fields and left out
// of the value totals.
func (h *Handler) GetPortfolio(c *gin.Context) {
	userID, err := portfolioUser(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.GetUserByID(ctx, userID)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if user == nil {
		apierr.Abort(c, apierr.NotFound("user not found"))
		return
	}

	assets, err := h.store.FindAssetsByUser(ctx, userID)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	symbols := make([]string, 0, len(assets))
	for _, a := range assets {
		symbols = append(symbols, normalizeSymbol(a.Symbol))
	}
	prices, err := h.store.ListAssetPrices(ctx, symbols)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}

	resp := portfolioResponse{UserID: userID, Assets: make([]holding, 0, len(assets))}
	for _, a := range assets {
		item := holding{
			AssetID:   a.ID,
			Symbol:    a.Symbol,
			Name:      a.Name,
			AssetType: a.AssetType,
			Quantity:  a.Quantity,
			AvgPrice:  a.AvgPrice,
			CostBasis: a.Quantity.Mul(a.AvgPrice.Decimal),
		}
		resp.TotalCost = resp.TotalCost.Add(item.CostBasis)

		if p, ok := prices[normalizeSymbol(a.Symbol)]; ok {
			price, currency := p.Price, p.Currency
			value := a.Quantity.Mul(price.Decimal)
			pnl := value.Sub(item.CostBasis)
			item.CurrentPrice, item.Currency = &price, &currency
			item.MarketValue, item.ProfitLoss = &value, &pnl
			resp.TotalValue = resp.TotalValue.Add(value)
			resp.TotalProfitLoss = resp.TotalProfitLoss.Add(pnl)
		}
		resp.Assets = append(resp.Assets, item)
	}
	c.JSON(http.StatusOK, resp)
}
