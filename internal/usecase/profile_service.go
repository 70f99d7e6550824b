package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	idgen "github.com/crickarena/fantasy-cricket/internal/platform/id"
)

const maxAvatarBytes = 2 << 20

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

type ProfileService struct {
	assets AssetStore
	idGen  idgen.Generator
}

func NewProfileService(assets AssetStore, idGen idgen.Generator) *ProfileService {
	return &ProfileService{assets: assets, idGen: idGen}
}

// UploadAvatar stores a user's avatar image and returns its public location.
// The object key embeds a random id, so uploads never overwrite each other
// and stale CDN entries age out naturally.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID, contentType string, body io.Reader) (StoredAsset, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.UploadAvatar")
	defer span.End()

	if s.assets == nil {
		return StoredAsset{}, fmt.Errorf("%w: asset storage is not configured", ErrDependencyUnavailable)
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return StoredAsset{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	ext, ok := avatarExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return StoredAsset{}, fmt.Errorf("%w: unsupported avatar content type %q", ErrInvalidInput, contentType)
	}

	suffix, err := s.idGen.NewID()
	if err != nil {
		return StoredAsset{}, fmt.Errorf("generate avatar id: %w", err)
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, suffix, ext)
	limited := io.LimitReader(body, maxAvatarBytes)
	asset, err := s.assets.Upload(ctx, key, contentType, limited)
	if err != nil {
		return StoredAsset{}, fmt.Errorf("upload avatar: %w", err)
	}
	return asset, nil
}

// DeleteAvatar removes a previously uploaded avatar. Only keys under the
// user's own prefix are deletable.
func (s *ProfileService) DeleteAvatar(ctx context.Context, userID, key string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.DeleteAvatar")
	defer span.End()

	if s.assets == nil {
		return fmt.Errorf("%w: asset storage is not configured", ErrDependencyUnavailable)
	}
	userID = strings.TrimSpace(userID)
	key = strings.TrimSpace(key)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(key, "avatars/"+userID+"/") {
		return fmt.Errorf("%w: key %q does not belong to user %s", ErrUnauthorized, key, userID)
	}

	if err := s.assets.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	return nil
}
