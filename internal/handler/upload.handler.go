package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/service/imagehost"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/usecase"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/response"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type UploadHandler struct {
	images     *imagehost.Service
	reconciler *usecase.AuthReconciler
	logger     *zap.Logger
}

func NewUploadHandler(images *imagehost.Service, reconciler *usecase.AuthReconciler, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{images: images, reconciler: reconciler, logger: logger}
}

// HandleUploadPhoto accepts a multipart photo, pushes it to the image host
// and returns the hosted URL. The caller decides which record the URL lands
// on (profile, matrimonial, event).
func (h *UploadHandler) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	if !h.reconciler.Snapshot().HasSession() {
		response.FromError(w, xerrors.ErrNoSession)
		return
	}
	if !h.images.Enabled() {
		response.Error(w, http.StatusServiceUnavailable, "photo uploads not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	url, err := h.images.Upload(r.Context(), file)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]string{"url": url})
}
