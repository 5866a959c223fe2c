package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-margin-service/internal/auth"
	"github.com/fekuna/omnipos-margin-service/internal/linked"
	"github.com/fekuna/omnipos-margin-service/internal/linked/dto"
	"github.com/fekuna/omnipos-margin-service/pkg/httputil"
	"github.com/fekuna/omnipos-margin-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type LinkedHandler struct {
	uc     linked.UseCase
	logger logger.ZapLogger
}

func NewLinkedHandler(uc linked.UseCase, log logger.ZapLogger) *LinkedHandler {
	return &LinkedHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *LinkedHandler) GetLinkedProducts(w http.ResponseWriter, r *http.Request) {
	merchantID, productID, ok := h.merchantAndID(w, r)
	if !ok {
		return
	}

	links, err := h.uc.Get(r.Context(), merchantID, productID)
	if err != nil {
		h.respondError(w, productID, "failed to get linked products", err)
		return
	}

	httputil.JSON(w, http.StatusOK, links)
}

func (h *LinkedHandler) SaveLinkedProducts(w http.ResponseWriter, r *http.Request) {
	merchantID, productID, ok := h.merchantAndID(w, r)
	if !ok {
		return
	}

	var input dto.SaveLinkedProductsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	links, err := h.uc.Save(r.Context(), merchantID, productID, &input)
	if err != nil {
		h.respondError(w, productID, "failed to save linked products", err)
		return
	}

	httputil.JSON(w, http.StatusOK, links)
}

func (h *LinkedHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	merchantID, productID, ok := h.merchantAndID(w, r)
	if !ok {
		return
	}

	candidates, err := h.uc.Candidates(r.Context(), merchantID, productID)
	if err != nil {
		h.respondError(w, productID, "failed to list linked-product candidates", err)
		return
	}

	httputil.JSON(w, http.StatusOK, candidates)
}

func (h *LinkedHandler) respondError(w http.ResponseWriter, productID int64, message string, err error) {
	if errors.Is(err, linked.ErrProductNotFound) {
		httputil.Error(w, http.StatusNotFound, "product not found")
		return
	}
	h.logger.Error(message, zap.Int64("product_id", productID), zap.Error(err))
	httputil.Error(w, http.StatusInternalServerError, message)
}

func (h *LinkedHandler) merchantAndID(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	merchantID := auth.GetMerchantID(r.Context())
	if merchantID == "" {
		httputil.Error(w, http.StatusBadRequest, "missing merchant")
		return "", 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.Error(w, http.StatusBadRequest, "invalid id")
		return "", 0, false
	}

	return merchantID, id, true
}
