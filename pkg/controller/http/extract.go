package http

import (
	"net/http"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/romfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/romfetch/pkg/domain/model"
)

// ExtractHandler unpacks archives synchronously
type ExtractHandler struct {
	extractUC interfaces.ExtractUseCase
}

// NewExtractHandler creates a new ExtractHandler
func NewExtractHandler(extractUC interfaces.ExtractUseCase) *ExtractHandler {
	return &ExtractHandler{extractUC: extractUC}
}

// Handle processes extract requests
func (h *ExtractHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ExtractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err, http.StatusBadRequest)
		return
	}

	result, err := h.extractUC.Extract(ctx, &req)
	if err != nil {
		ctxlog.From(ctx).Error("Failed to extract archive", "archive", req.ArchivePath, "error", err)
		writeError(ctx, w, err, statusOf(err))
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}
