package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/core/service"
)

type MarketHandler struct {
	svc *service.MarketService
}

func NewMarketHandler(svc *service.MarketService) *MarketHandler {
	return &MarketHandler{svc: svc}
}

func (h *MarketHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)

	v1 := e.Group("/v1")
	v1.POST("/assets", h.Mint)
	v1.POST("/bridge/import", h.ImportBridged)
	v1.GET("/assets/:id", h.GetAsset)
	v1.POST("/assets/:id/list", h.List)
	v1.POST("/assets/:id/delist", h.Delist)
	v1.POST("/assets/:id/purchase", h.Purchase)
	v1.POST("/assets/:id/transfer", h.Transfer)
	v1.GET("/assets/:id/listing", h.GetListing)
	v1.GET("/assets/:id/royalty", h.GetRoyalty)
	v1.GET("/assets/:id/metadata", h.GetMetadata)
	v1.GET("/assets/:id/trades", h.GetTrades)
	v1.GET("/metrics", h.Metrics)
	v1.POST("/accounts/:id/deposit", h.Deposit)
	v1.GET("/accounts/:id/balance", h.GetBalance)
}

func (h *MarketHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type MintRequest struct {
	ID          string           `json:"id" validate:"required"`
	Owner       string           `json:"owner" validate:"required,max=64"`
	Creator     string           `json:"creator" validate:"omitempty,max=64"`
	RoyaltyRate int              `json:"royalty_rate"`
	Metadata    *domain.Metadata `json:"metadata"`
}

type AssetResponse struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Chain string `json:"chain,omitempty"`
}

func (h *MarketHandler) Mint(c echo.Context) error {
	var req MintRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: true, Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	asset, err := h.svc.Mint(c.Request().Context(), service.MintParams{
		ID:          domain.AssetID(req.ID),
		Owner:       req.Owner,
		Creator:     req.Creator,
		RoyaltyRate: req.RoyaltyRate,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, AssetResponse{ID: string(asset.ID), Owner: asset.Owner})
}

type ImportRequest struct {
	ID          string           `json:"id" validate:"required"`
	Owner       string           `json:"owner" validate:"required,max=64"`
	Creator     string           `json:"creator" validate:"omitempty,max=64"`
	RoyaltyRate int              `json:"royalty_rate"`
	Chain       string           `json:"chain" validate:"required"`
	ExternalID  string           `json:"external_id" validate:"required"`
	Metadata    *domain.Metadata `json:"metadata"`
}

func (h *MarketHandler) ImportBridged(c echo.Context) error {
	var req ImportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: true, Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	asset, err := h.svc.ImportBridged(c.Request().Context(), service.MintParams{
		ID:          domain.AssetID(req.ID),
		Owner:       req.Owner,
		Creator:     req.Creator,
		RoyaltyRate: req.RoyaltyRate,
		Metadata:    req.Metadata,
		Origin:      &domain.BridgeOrigin{Chain: req.Chain, ExternalID: req.ExternalID},
	})
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, AssetResponse{ID: string(asset.ID), Owner: asset.Owner, Chain: req.Chain})
}

func (h *MarketHandler) GetAsset(c echo.Context) error {
	asset, err := h.svc.GetAsset(c.Request().Context(), domain.AssetID(c.Param("id")))
	if err != nil {
		return errorJSON(c, err)
	}

	resp := AssetResponse{ID: string(asset.ID), Owner: asset.Owner}
	if asset.Origin != nil {
		resp.Chain = asset.Origin.Chain
	}
	return c.JSON(http.StatusOK, resp)
}

type ListRequest struct {
	Seller string `json:"seller" validate:"required,max=64"`
	Price  int64  `json:"price"`
}

type ListingResponse struct {
	AssetID string `json:"asset_id"`
	Price   int64  `json:"price"`
	Seller  string `json:"seller"`
	Active  bool   `json:"active"`
}

func (h *MarketHandler) List(c echo.Context) error {
	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: true, Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id := domain.AssetID(c.Param("id"))
	if err := h.svc.List(c.Request().Context(), id, req.Seller, req.Price); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, ListingResponse{
		AssetID: string(id),
		Price:   req.Price,
		Seller:  req.Seller,
		Active:  true,
	})
}

type DelistRequest struct {
	Caller string `json:"caller" validate:"required,max=64"`
}

func (h *MarketHandler) Delist(c echo.Context) error {
	var req DelistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: true, Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id := domain.AssetID(c.Param("id"))
	if err := h.svc.Delist(c.Request().Context(), id, req.Caller); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, ListingResponse{AssetID: string(id), Seller: req.Caller})
}

type PurchaseRequest struct {
	Buyer     string `json:"buyer" validate:"required,max=64"`
	RequestID string `json:"request_id"`
}

type TradeResponse struct {
	TradeID        string `json:"trade_id"`
	AssetID        string `json:"asset_id"`
	Seller         string `json:"seller"`
	Buyer          string `json:"buyer"`
	Price          int64  `json:"price"`
	Fee            int64  `json:"fee"`
	Royalty        int64  `json:"royalty"`
	SellerProceeds int64  `json:"seller_proceeds"`
}

func tradeResponse(trade *domain.Trade) TradeResponse {
	return TradeResponse{
		TradeID:        trade.ID,
		AssetID:        string(trade.AssetID),
		Seller:         trade.Seller,
		Buyer:          trade.Buyer,
		Price:          trade.Price,
		Fee:            trade.Fee,
		Royalty:        trade.Royalty,
		SellerProceeds: trade.SellerProceeds,
	}
}

func (h *MarketHandler) Purchase(c echo.Context) error {
	var req PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: true, Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.svc.Purchase(c.Request().Context(), domain.AssetID(c.Param("id")), req.Buyer, req.RequestID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, tradeResponse(trade))
}

type TransferRequest struct {
	From string `json:"from" validate:"required,max=64"`
	To   string `json:"to" validate:"required,max=64"`
}

func (h *MarketHandler) Transfer(c echo.Context) error {
	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: true, Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id := domain.AssetID(c.Param("id"))
	if err := h.svc.TransferAsset(c.Request().Context(), id, req.From, req.To); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, AssetResponse{ID: string(id), Owner: req.To})
}

func (h *MarketHandler) GetListing(c echo.Context) error {
	listing, err := h.svc.GetListing(c.Request().Context(), domain.AssetID(c.Param("id")))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, ListingResponse{
		AssetID: string(listing.AssetID),
		Price:   listing.Price,
		Seller:  listing.Seller,
		Active:  listing.Active,
	})
}

type RoyaltyResponse struct {
	AssetID string `json:"asset_id"`
	Creator string `json:"creator"`
	Rate    int    `json:"rate"`
}

func (h *MarketHandler) GetRoyalty(c echo.Context) error {
	record, err := h.svc.GetRoyalty(c.Request().Context(), domain.AssetID(c.Param("id")))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, RoyaltyResponse{
		AssetID: string(record.AssetID),
		Creator: record.Creator,
		Rate:    record.Rate,
	})
}

func (h *MarketHandler) GetMetadata(c echo.Context) error {
	md, err := h.svc.GetMetadata(c.Request().Context(), domain.AssetID(c.Param("id")))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, md)
}

func (h *MarketHandler) GetTrades(c echo.Context) error {
	trades, err := h.svc.TradesByAsset(c.Request().Context(), domain.AssetID(c.Param("id")))
	if err != nil {
		return errorJSON(c, err)
	}

	resp := make([]TradeResponse, 0, len(trades))
	for i := range trades {
		resp = append(resp, tradeResponse(&trades[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

type MetricsResponse struct {
	Volume    int64 `json:"volume"`
	Royalties int64 `json:"royalties"`
	Fees      int64 `json:"fees"`
}

func (h *MarketHandler) Metrics(c echo.Context) error {
	totals, err := h.svc.MetricsTotals(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, MetricsResponse{
		Volume:    totals.Volume,
		Royalties: totals.Royalties,
		Fees:      totals.Fees,
	})
}

type DepositRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}

func (h *MarketHandler) Deposit(c echo.Context) error {
	var req DepositRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: true, Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account := c.Param("id")
	if err := h.svc.Deposit(c.Request().Context(), account, req.Amount); err != nil {
		return errorJSON(c, err)
	}

	balance, err := h.svc.Balance(c.Request().Context(), account)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, BalanceResponse{Account: account, Balance: balance})
}

func (h *MarketHandler) GetBalance(c echo.Context) error {
	account := c.Param("id")
	balance, err := h.svc.Balance(c.Request().Context(), account)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, BalanceResponse{Account: account, Balance: balance})
}
