package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/drive/v3"

	"reelcut/domain/render"
)

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	Upload(ctx context.Context, name, mimeType string, parents []string, data []byte) (*drive.File, error)
	Share(ctx context.Context, fileID string) (string, error)
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// Upload creates a file with the given content and returns its metadata
func (s *GoogleDriveService) Upload(ctx context.Context, name, mimeType string, parents []string, data []byte) (*drive.File, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  parents,
	}
	return s.service.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id, webViewLink").
		Context(ctx).
		Do()
}

// Share grants anyone-with-the-link read access and returns the view URL
func (s *GoogleDriveService) Share(ctx context.Context, fileID string) (string, error) {
	perm := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := s.service.Permissions.Create(fileID, perm).Context(ctx).Do(); err != nil {
		return "", err
	}
	f, err := s.service.Files.Get(fileID).Fields("webViewLink").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.WebViewLink, nil
}

// Config holds the gallery upload settings
type Config struct {
	CredentialsFile string // Path to OAuth client credentials JSON
	TokenFile       string // Path to store/load token
	FolderID        string // Drive folder compositions are uploaded into
}

// Registrar implements render.Registrar by uploading compositions to a
// Google Drive gallery folder and recording asset metadata as a JSON
// sidecar next to each upload.
type Registrar struct {
	driveService DriveService
	folderID     string
	logger       zerolog.Logger
}

// RegistrarOption is a functional option for configuring Registrar
type RegistrarOption func(*Registrar)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) RegistrarOption {
	return func(r *Registrar) {
		r.driveService = svc
	}
}

// WithRegistrarLogger attaches a structured logger
func WithRegistrarLogger(logger zerolog.Logger) RegistrarOption {
	return func(r *Registrar) {
		r.logger = logger
	}
}

// NewRegistrar creates a gallery registrar
// If no custom drive service is provided, it runs the OAuth flow
func NewRegistrar(ctx context.Context, cfg Config, opts ...RegistrarOption) (*Registrar, error) {
	r := &Registrar{
		folderID: cfg.FolderID,
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.driveService == nil {
		svc, err := newOAuthDriveService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		r.driveService = svc
	}

	return r, nil
}

// StoreComposition implements render.Registrar
func (r *Registrar) StoreComposition(ctx context.Context, filename string, data []byte) (string, error) {
	f, err := r.driveService.Upload(ctx, filename, mimeTypeFor(filename), r.parents(), data)
	if err != nil {
		return "", fmt.Errorf("failed to upload composition: %w", err)
	}

	url, err := r.driveService.Share(ctx, f.Id)
	if err != nil {
		return "", fmt.Errorf("failed to share composition: %w", err)
	}

	r.logger.Info().Str("file", filename).Str("id", f.Id).Int("bytes", len(data)).Msg("composition uploaded")
	return url, nil
}

// RegisterAsset implements render.Registrar
func (r *Registrar) RegisterAsset(ctx context.Context, asset render.ComposedAsset) error {
	buf, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("failed to encode asset metadata: %w", err)
	}

	name := asset.LinkID + ".asset.json"
	if _, err := r.driveService.Upload(ctx, name, "application/json", r.parents(), buf); err != nil {
		return fmt.Errorf("failed to register asset: %w", err)
	}

	r.logger.Info().Str("link", asset.LinkID).Str("kind", asset.Kind).Msg("asset registered")
	return nil
}

func (r *Registrar) parents() []string {
	if r.folderID == "" {
		return nil
	}
	return []string{r.folderID}
}

// mimeTypeFor maps an output filename to its upload content type
func mimeTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}

// Ensure Registrar implements render.Registrar
var _ render.Registrar = (*Registrar)(nil)
