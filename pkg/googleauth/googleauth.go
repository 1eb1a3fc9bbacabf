package googleauth

import (
	"encoding/base64"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// CredentialsOption resolves Google service-account credentials into a client
// option. The base64-encoded JSON blob takes precedence (the form used on CI
// runners); the file path is the local fallback.
func CredentialsOption(credentialsBase64, credentialsFile string) (option.ClientOption, error) {
	if credentialsBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(credentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode credentials blob: %w", err)
		}
		if _, err := google.JWTConfigFromJSON(raw); err != nil {
			return nil, fmt.Errorf("invalid service account credentials: %w", err)
		}
		return option.WithCredentialsJSON(raw), nil
	}

	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("credentials file not found: %w", err)
		}
		return option.WithCredentialsFile(credentialsFile), nil
	}

	return nil, fmt.Errorf("no Google credentials configured: set GOOGLE_CREDENTIALS_BASE64 or provide a credentials file")
}
