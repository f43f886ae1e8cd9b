package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path"

	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/logging"
	"github.com/rohits-web03/codedrop/internal/storage"
	"github.com/rohits-web03/codedrop/internal/utils"
)

// BlobHandler serves files of the local storage backend behind signed tokens.
type BlobHandler struct {
	store *storage.LocalStore
}

func NewBlobHandler(store *storage.LocalStore) *BlobHandler {
	return &BlobHandler{store: store}
}

// GET /api/v1/blobs/{token}
// ServeBlob godoc
// @Summary Download a file through a signed URL
// @Description Only available with the local storage backend. Tokens come from the transfer lookup.
// @Tags Transfers
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} utils.Payload "Invalid or expired link"
// @Failure 404 {object} utils.Payload "File no longer exists"
// @Router /api/v1/blobs/{token} [get]
func (h *BlobHandler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	file, key, err := h.store.Open(r.PathValue("token"))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidSignature):
			utils.JSONError(w, http.StatusForbidden, "This download link is invalid or has expired")
		case errors.Is(err, storage.ErrObjectNotFound):
			utils.JSONError(w, http.StatusNotFound, "File not found")
		default:
			logging.FromContext(r.Context()).Error("open blob", zap.Error(err))
			utils.JSONError(w, http.StatusInternalServerError, "Could not read file")
		}
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		logging.FromContext(r.Context()).Error("stat blob", zap.String("key", key), zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Could not read file")
		return
	}

	name := path.Base(key)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), file)
}
