package rowstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

// CredentialSource lists where service-account credentials may come from.
type CredentialSource struct {
	JSONPath string
	JSON     string
}

// ClientOption resolves Google credentials in order: JSON file, inline
// JSON, then Application Default Credentials (the Cloud Run service
// account).
func (src CredentialSource) ClientOption(ctx context.Context) (option.ClientOption, error) {
	scopes := []string{sheets.SpreadsheetsScope}

	if path := strings.TrimSpace(src.JSONPath); path != "" {
		path = expandHome(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read credentials file %s: %v", apperrors.ErrStoreAuth, path, err)
		}
		return fromJSON(ctx, data, scopes)
	}

	if raw := strings.TrimSpace(src.JSON); raw != "" {
		return fromJSON(ctx, []byte(raw), scopes)
	}

	creds, err := google.FindDefaultCredentials(ctx, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: no Google credentials found; attach a service account or set GOOGLE_SERVICE_ACCOUNT_JSON(_PATH): %v",
			apperrors.ErrStoreAuth, err)
	}
	return option.WithCredentials(creds), nil
}

func fromJSON(ctx context.Context, data []byte, scopes []string) (option.ClientOption, error) {
	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse service account JSON (paste it minified on one line): %v", apperrors.ErrStoreAuth, err)
	}
	return option.WithCredentials(creds), nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
