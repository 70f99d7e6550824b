package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UploadAvatar")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	contentType := strings.TrimSpace(r.Header.Get("Content-Type"))
	asset, err := h.profileService.UploadAvatar(ctx, principal.UserID, contentType, r.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "upload avatar failed", "user_id", principal.UserID, "content_type", contentType, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, storedAssetDTO{
		Key:      asset.Key,
		Location: asset.Location,
		URL:      asset.Location,
	})
}

func (h *Handler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteAvatar")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		writeError(ctx, w, fmt.Errorf("%w: key query parameter is required", usecase.ErrInvalidInput))
		return
	}

	if err := h.profileService.DeleteAvatar(ctx, principal.UserID, key); err != nil {
		h.logger.WarnContext(ctx, "delete avatar failed", "user_id", principal.UserID, "key", key, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}
