package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identitymodels "voluntr/internal/identity/models"
	"voluntr/internal/storage"
	dErrors "voluntr/pkg/domain-errors"
	"voluntr/pkg/platform/httputil"
	"voluntr/pkg/requestcontext"
)

const formField = "file"

// multipart framing allowance on top of the file limit
const formOverhead = 64 << 10

type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (*storage.File, error)
	Dir() string
	MaxBytes() int64
}

type Guard interface {
	RequireAuthenticated(ctx context.Context) (*identitymodels.Account, error)
}

type Handler struct {
	store  Store
	guard  Guard
	logger *slog.Logger
}

func New(store Store, guard Guard, logger *slog.Logger) *Handler {
	return &Handler{store: store, guard: guard, logger: logger}
}

// RegisterPublic serves stored files.
func (h *Handler) RegisterPublic(r chi.Router) {
	fs := http.StripPrefix("/files/", http.FileServer(http.Dir(h.store.Dir())))
	r.Get("/files/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	})
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/uploads", h.HandleUpload)
}

// HandleUpload handles POST /uploads with a multipart "file" field.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	account, err := h.guard.RequireAuthenticated(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxBytes()+formOverhead)
	src, header, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file is too large"))
			return
		}
		h.logger.WarnContext(ctx, "invalid upload", "request_id", requestID, "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart field \"file\" is required"))
		return
	}
	defer src.Close()

	file, err := h.store.Save(ctx, header.Filename, src)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "store upload failed", "request_id", requestID, "account_id", account.ID, "error", err)
		} else {
			h.logger.WarnContext(ctx, "upload rejected", "request_id", requestID, "account_id", account.ID, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "file uploaded",
		"request_id", requestID,
		"account_id", account.ID,
		"name", file.Name,
		"content_type", file.ContentType,
		"size", file.Size,
	)
	httputil.WriteJSON(w, http.StatusCreated, file)
}
