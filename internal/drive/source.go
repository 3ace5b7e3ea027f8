// Package drive implements the scanner's file source on Google Drive. The
// kiosk's companion apps drop device export files into one shared folder;
// this package lists and downloads them through the Drive v3 API.
package drive

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"kiosk-data/internal/domain"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Config carries the OAuth2 offline credentials and the watched folder.
// The refresh token is provisioned once per kiosk during installation.
type Config struct {
	FolderID     string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Source lists and downloads export files from one Drive folder.
type Source struct {
	svc      *drive.Service
	folderID string
}

// NewSource builds a Drive client from offline credentials. ctx scopes the
// token refresher; pass the process context, not a request context.
func NewSource(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.FolderID == "" {
		return nil, fmt.Errorf("drive folder id is required")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		Scopes: []string{drive.DriveReadonlyScope},
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Source{svc: svc, folderID: cfg.FolderID}, nil
}

// List returns folder entries created after since, oldest first.
func (s *Source) List(ctx context.Context, since time.Time) ([]domain.FileInfo, error) {
	query := fmt.Sprintf("'%s' in parents and createdTime > '%s' and trashed = false",
		s.folderID, since.UTC().Format(time.RFC3339))

	var out []domain.FileInfo
	pageToken := ""
	for {
		call := s.svc.Files.List().
			Context(ctx).
			Q(query).
			OrderBy("createdTime").
			Fields("nextPageToken, files(id, name, createdTime, webViewLink)").
			PageSize(100)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list drive folder: %w", err)
		}
		for _, f := range page.Files {
			created, err := time.Parse(time.RFC3339, f.CreatedTime)
			if err != nil {
				continue
			}
			out = append(out, domain.FileInfo{
				ID:          f.Id,
				Name:        f.Name,
				CreatedTime: created,
			})
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		pageToken = page.NextPageToken
	}
}

// GetContent downloads one file. Spreadsheet bytes are base64-encoded so
// they survive the string-typed content field; text exports pass through.
func (s *Source) GetContent(ctx context.Context, fileID string) (*domain.FileContent, error) {
	meta, err := s.svc.Files.Get(fileID).
		Context(ctx).
		Fields("id, name, webViewLink, webContentLink").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file metadata: %w", err)
	}

	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}

	link := meta.WebContentLink
	if link == "" {
		link = meta.WebViewLink
	}

	fc := &domain.FileContent{Link: link}
	if isSpreadsheetName(meta.Name) {
		fc.Content = base64.StdEncoding.EncodeToString(data)
		fc.Encoding = domain.EncodingBase64
	} else {
		fc.Content = string(data)
		fc.Encoding = domain.EncodingUTF8
	}
	return fc, nil
}

func isSpreadsheetName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xls") || strings.HasSuffix(lower, ".xlsx")
}
