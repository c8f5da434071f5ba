// Package storage uploads return-request evidence images to
// Cloudinary. Uploads happen before the local transaction; callers
// delete the uploaded files again when the transaction fails.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// File is one image to upload.
type File struct {
	Name   string
	Reader io.Reader
}

// UploadResult identifies one stored file. PublicID is what a
// compensating delete needs.
type UploadResult struct {
	URL      string
	PublicID string
}

// CloudinaryStorage stores files in one Cloudinary folder.
type CloudinaryStorage struct {
	client *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStorage(cloudinaryURL, folder string) (*CloudinaryStorage, error) {
	client, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryStorage{client: client, folder: folder}, nil
}

// UploadAll uploads every file and returns the results in order. On the
// first failure it returns what was uploaded so far together with the
// error, so the caller can clean up.
func (s *CloudinaryStorage) UploadAll(ctx context.Context, files []File) ([]UploadResult, error) {
	var results []UploadResult
	for _, file := range files {
		resp, err := s.client.Upload.Upload(ctx, file.Reader, uploader.UploadParams{
			Folder: s.folder,
		})
		if err != nil {
			return results, fmt.Errorf("failed to upload %s: %w", file.Name, err)
		}
		results = append(results, UploadResult{
			URL:      resp.SecureURL,
			PublicID: resp.PublicID,
		})
	}
	return results, nil
}

// Delete removes one previously uploaded file.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", publicID, err)
	}
	return nil
}
