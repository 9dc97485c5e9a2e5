// Package blob stores alert snapshots in Cloudinary and hands back the
// secure URL used in notifications.
package blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func New(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, publicID string, folder string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID: publicID,
		Folder:   folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("upload snapshot: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}
