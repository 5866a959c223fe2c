package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-margin-service/internal/auth"
	"github.com/fekuna/omnipos-margin-service/internal/margin"
	"github.com/fekuna/omnipos-margin-service/internal/margin/dto"
	"github.com/fekuna/omnipos-margin-service/pkg/httputil"
	"github.com/fekuna/omnipos-margin-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MarginHandler struct {
	uc     margin.UseCase
	logger logger.ZapLogger
}

func NewMarginHandler(uc margin.UseCase, log logger.ZapLogger) *MarginHandler {
	return &MarginHandler{
		uc:     uc,
		logger: log,
	}
}

// GetProductMargin serves the stable admin contract: has_margin plus zeroed
// fields when the product has no resolvable margin. Missing products are not
// a 404 here - the legacy consumers expect has_margin=false.
func (h *MarginHandler) GetProductMargin(w http.ResponseWriter, r *http.Request) {
	merchantID, productID, ok := h.merchantAndID(w, r, "id")
	if !ok {
		return
	}

	payload, err := h.uc.GetMarginInfoPayload(r.Context(), merchantID, productID)
	if err != nil {
		h.logger.Error("failed to get product margin", zap.Int64("product_id", productID), zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to get product margin")
		return
	}

	httputil.JSON(w, http.StatusOK, payload)
}

func (h *MarginHandler) BulkMargin(w http.ResponseWriter, r *http.Request) {
	merchantID := auth.GetMerchantID(r.Context())
	if merchantID == "" {
		httputil.Error(w, http.StatusBadRequest, "missing merchant")
		return
	}

	var input dto.BulkMarginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.uc.BulkMarginInfo(r.Context(), merchantID, input.ProductIDs)
	if err != nil {
		h.logger.Error("failed to resolve bulk margins", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to resolve bulk margins")
		return
	}

	httputil.JSON(w, http.StatusOK, results)
}

func (h *MarginHandler) GetFormattedMargin(w http.ResponseWriter, r *http.Request) {
	merchantID, productID, ok := h.merchantAndID(w, r, "id")
	if !ok {
		return
	}

	style := margin.ParseFormatStyle(r.URL.Query().Get("style"))
	html, err := h.uc.FormatProductMargin(r.Context(), merchantID, productID, style)
	if err != nil {
		h.logger.Error("failed to format product margin", zap.Int64("product_id", productID), zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to format product margin")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"html": html})
}

func (h *MarginHandler) GetAssignedCategory(w http.ResponseWriter, r *http.Request) {
	merchantID, entityID, ok := h.merchantAndID(w, r, "id")
	if !ok {
		return
	}

	category, err := h.uc.GetAssignedCategory(r.Context(), merchantID, entityID)
	if err != nil {
		h.logger.Error("failed to get assigned category", zap.Int64("entity_id", entityID), zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to get assigned category")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"category": category})
}

func (h *MarginHandler) AssignCategory(w http.ResponseWriter, r *http.Request) {
	merchantID, entityID, ok := h.merchantAndID(w, r, "id")
	if !ok {
		return
	}

	var input dto.AssignCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	normalized, err := h.uc.AssignCategory(r.Context(), merchantID, entityID, input.Category)
	if err != nil {
		switch {
		case errors.Is(err, margin.ErrProductNotFound):
			httputil.Error(w, http.StatusNotFound, "product not found")
		case errors.Is(err, margin.ErrUnknownCategory):
			httputil.Error(w, http.StatusUnprocessableEntity, "unknown margin category")
		default:
			h.logger.Error("failed to assign margin category", zap.Int64("entity_id", entityID), zap.Error(err))
			httputil.Error(w, http.StatusInternalServerError, "failed to assign margin category")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"category": normalized})
}

func (h *MarginHandler) GetOrderMargin(w http.ResponseWriter, r *http.Request) {
	merchantID, orderID, ok := h.merchantAndID(w, r, "id")
	if !ok {
		return
	}

	details, err := h.uc.GetOrderMarginDetails(r.Context(), merchantID, orderID)
	if err != nil {
		h.logger.Error("failed to get order margin details", zap.Int64("order_id", orderID), zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to get order margin details")
		return
	}
	if details == nil {
		httputil.Error(w, http.StatusNotFound, "order not found")
		return
	}

	httputil.JSON(w, http.StatusOK, details)
}

func (h *MarginHandler) GetOrderTotalMargin(w http.ResponseWriter, r *http.Request) {
	merchantID, orderID, ok := h.merchantAndID(w, r, "id")
	if !ok {
		return
	}

	total, err := h.uc.GetOrderTotalMargin(r.Context(), merchantID, orderID)
	if err != nil {
		h.logger.Error("failed to get order total margin", zap.Int64("order_id", orderID), zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to get order total margin")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]float64{"total_margin": total})
}

func (h *MarginHandler) merchantAndID(w http.ResponseWriter, r *http.Request, param string) (string, int64, bool) {
	merchantID := auth.GetMerchantID(r.Context())
	if merchantID == "" {
		httputil.Error(w, http.StatusBadRequest, "missing merchant")
		return "", 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httputil.Error(w, http.StatusBadRequest, "invalid id")
		return "", 0, false
	}

	return merchantID, id, true
}
