package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/leadbooth/internal/photo"
)

// DriveAPI abstracts the photo file store for the API layer.
type DriveAPI interface {
	EnsureFolder(ctx context.Context, name string) (string, error)
	Upload(ctx context.Context, data []byte, mimeType, fileName, folderID string) (string, error)
	ShareReadOnly(ctx context.Context, fileID string) error
	ViewURL(fileID string) string
}

// PhotoUploader decodes a data-URI photo, derives its file name, and stores
// it in the photo folder with anonymous read access.
type PhotoUploader struct {
	drive  DriveAPI
	folder string
	now    func() time.Time
}

// NewPhotoUploader creates a PhotoUploader storing into the named folder.
func NewPhotoUploader(drive DriveAPI, folder string) *PhotoUploader {
	return &PhotoUploader{drive: drive, folder: folder, now: time.Now}
}

// Save uploads one photo and returns its viewable link. Folder lookup then
// upload is best effort; a failed sharing call is logged and the link is
// returned anyway, matching the capture tool's tolerance for restricted
// links.
func (u *PhotoUploader) Save(ctx context.Context, dataURI, firstName, lastName, category string) (string, error) {
	blob, err := photo.DecodeDataURI(dataURI)
	if err != nil {
		return "", fmt.Errorf("decoding %s photo: %w", category, err)
	}

	fileName := photo.FileName(lastName, firstName, category, blob.Ext, u.now())

	folderID, err := u.drive.EnsureFolder(ctx, u.folder)
	if err != nil {
		return "", fmt.Errorf("ensuring photo folder: %w", err)
	}

	fileID, err := u.drive.Upload(ctx, blob.Data, blob.MIMEType, fileName, folderID)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", fileName, err)
	}

	if err := u.drive.ShareReadOnly(ctx, fileID); err != nil {
		slog.Warn("could not share photo publicly", "file", fileName, "error", err)
	}

	return u.drive.ViewURL(fileID), nil
}
