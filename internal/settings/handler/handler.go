package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fekuna/omnipos-margin-service/internal/auth"
	"github.com/fekuna/omnipos-margin-service/internal/model"
	"github.com/fekuna/omnipos-margin-service/internal/settings"
	"github.com/fekuna/omnipos-margin-service/internal/settings/dto"
	"github.com/fekuna/omnipos-margin-service/pkg/httputil"
	"github.com/fekuna/omnipos-margin-service/pkg/logger"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	uc     settings.UseCase
	logger logger.ZapLogger
}

func NewSettingsHandler(uc settings.UseCase, log logger.ZapLogger) *SettingsHandler {
	return &SettingsHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SettingsHandler) GetMarginSettings(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}

	cfg, err := h.uc.GetMarginSettings(r.Context(), merchantID)
	if err != nil {
		h.logger.Error("failed to load margin settings", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to load margin settings")
		return
	}

	httputil.JSON(w, http.StatusOK, cfg)
}

func (h *SettingsHandler) SaveMarginSettings(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}

	var input dto.SaveMarginSettingsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.uc.SaveMarginSettings(r.Context(), merchantID, &input)
	if err != nil {
		h.logger.Error("failed to save margin settings", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to save margin settings")
		return
	}

	httputil.JSON(w, http.StatusOK, cfg)
}

func (h *SettingsHandler) GetDisplayOptions(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}

	opts, err := h.uc.GetDisplayOptions(r.Context(), merchantID)
	if err != nil {
		h.logger.Error("failed to load display options", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to load display options")
		return
	}

	httputil.JSON(w, http.StatusOK, opts)
}

func (h *SettingsHandler) SaveDisplayOptions(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}

	var opts model.DisplayOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.uc.SaveDisplayOptions(r.Context(), merchantID, opts)
	if err != nil {
		h.logger.Error("failed to save display options", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to save display options")
		return
	}

	httputil.JSON(w, http.StatusOK, saved)
}

func (h *SettingsHandler) GetFunctionalityOptions(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}

	opts, err := h.uc.GetFunctionalityOptions(r.Context(), merchantID)
	if err != nil {
		h.logger.Error("failed to load functionality options", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to load functionality options")
		return
	}

	httputil.JSON(w, http.StatusOK, opts)
}

func (h *SettingsHandler) SaveFunctionalityOptions(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}

	var opts model.FunctionalityOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.uc.SaveFunctionalityOptions(r.Context(), merchantID, opts)
	if err != nil {
		h.logger.Error("failed to save functionality options", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to save functionality options")
		return
	}

	httputil.JSON(w, http.StatusOK, saved)
}

func (h *SettingsHandler) merchant(w http.ResponseWriter, r *http.Request) (string, bool) {
	merchantID := auth.GetMerchantID(r.Context())
	if merchantID == "" {
		httputil.Error(w, http.StatusBadRequest, "missing merchant")
		return "", false
	}
	return merchantID, true
}
