package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/logging"
	"github.com/rohits-web03/codedrop/internal/models"
	"github.com/rohits-web03/codedrop/internal/transfer"
	"github.com/rohits-web03/codedrop/internal/utils"
)

// Parts of the multipart body above this size spill to temporary files.
const multipartMemory = 32 << 20

// Transfers is the lifecycle the transfer endpoints drive.
type Transfers interface {
	Upload(ctx context.Context, files []transfer.Source) (*models.Transfer, error)
	Resolve(ctx context.Context, code string) (*models.Transfer, []models.DownloadFile, error)
}

type TransferHandler struct {
	transfers      Transfers
	maxUploadBytes int64
}

func NewTransferHandler(transfers Transfers, maxUploadBytes int64) *TransferHandler {
	return &TransferHandler{transfers: transfers, maxUploadBytes: maxUploadBytes}
}

// POST /api/v1/transfers
// UploadTransfer godoc
// @Summary Upload files and receive an access code
// @Description Uploads one or more files as a single transfer. The returned 6 character code stays valid for 24 hours.
// @Tags Transfers
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload" style(form) explode(true)
// @Success 201 {object} utils.Payload{data=models.UploadResponse} "Transfer created"
// @Failure 400 {object} utils.Payload "Invalid upload"
// @Failure 500 {object} utils.Payload "Upload failed"
// @Router /api/v1/transfers [post]
func (h *TransferHandler) UploadTransfer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		message := "Invalid file upload form"
		if errors.As(err, &tooLarge) {
			message = "Upload exceeds the size limit"
		}
		utils.JSONError(w, http.StatusBadRequest, message)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	sources := make([]transfer.Source, 0, len(headers))
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			logging.FromContext(r.Context()).Error("open multipart file", zap.String("name", fh.Filename), zap.Error(err))
			utils.JSONError(w, http.StatusBadRequest, "Could not read uploaded file "+fh.Filename)
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(file)
		sources = append(sources, transfer.Source{Name: fh.Filename, Size: fh.Size, Content: file})
	}

	created, err := h.transfers.Upload(r.Context(), sources)
	if err != nil {
		writeTransferError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Files uploaded successfully",
		Data: models.UploadResponse{
			Code:      created.Code,
			ExpiresAt: created.ExpiresAt,
			FileCount: created.FileCount,
		},
	})
}

// GET /api/v1/transfers/{code}
// GetTransfer godoc
// @Summary Resolve an access code
// @Description Returns the files of a live transfer with download URLs valid for 5 minutes.
// @Tags Transfers
// @Produce json
// @Param code path string true "Access code"
// @Success 200 {object} utils.Payload{data=models.DownloadResponse} "Files retrieved successfully"
// @Failure 400 {object} utils.Payload "Malformed access code"
// @Failure 404 {object} utils.Payload "Unknown access code"
// @Failure 410 {object} utils.Payload "Transfer has expired"
// @Failure 500 {object} utils.Payload "Lookup failed"
// @Router /api/v1/transfers/{code} [get]
func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	found, files, err := h.transfers.Resolve(r.Context(), r.PathValue("code"))
	if err != nil {
		writeTransferError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Files retrieved successfully",
		Data: models.DownloadResponse{
			Code:      found.Code,
			ExpiresAt: found.ExpiresAt,
			Files:     files,
		},
	})
}

func writeTransferError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status  int
		message string
		invalid *transfer.ValidationError
	)
	switch {
	case errors.As(err, &invalid):
		status, message = http.StatusBadRequest, invalid.Reason
	case errors.Is(err, transfer.ErrNotFound):
		status, message = http.StatusNotFound, "No files found for this code"
	case errors.Is(err, transfer.ErrExpired):
		status, message = http.StatusGone, "This code has expired"
	default:
		logging.FromContext(r.Context()).Error("transfer request failed", zap.Error(err))
		status, message = http.StatusInternalServerError, "Something went wrong, please try again"
	}
	utils.JSONError(w, status, message)
}
