package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/romfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/romfetch/pkg/domain/model"
)

// DownloadHandler starts background downloads
type DownloadHandler struct {
	downloadUC interfaces.DownloadUseCase
}

// NewDownloadHandler creates a new DownloadHandler
func NewDownloadHandler(downloadUC interfaces.DownloadUseCase) *DownloadHandler {
	return &DownloadHandler{downloadUC: downloadUC}
}

// DownloadAccepted is the response body of an accepted download
type DownloadAccepted struct {
	ID string `json:"id"`
}

// Handle responds 202 as soon as the download is queued. Progress is
// reported on the event stream under the returned id.
func (h *DownloadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.DownloadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err, http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	if err := h.downloadUC.Start(ctx, &req); err != nil {
		ctxlog.From(ctx).Warn("Download rejected", "download_id", req.ID, "error", err)
		writeError(ctx, w, err, statusOf(err))
		return
	}

	writeJSON(ctx, w, http.StatusAccepted, &DownloadAccepted{ID: req.ID})
}
