package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

// ReadonlyScope is the only scope the dashboard asks for.
const ReadonlyScope = gsheet.SpreadsheetsReadonlyScope

var errNoCredentials = errors.New("missing Google credentials (set GOOGLE_OAUTH_TOKEN_FILE with an OAuth client, GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")

// tokenSource picks the credentials configured in the environment.
func tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if tokenFile := env("GOOGLE_OAUTH_TOKEN_FILE"); tokenFile != "" {
		clientJSON, err := OAuthClientJSON()
		if err != nil {
			return nil, err
		}
		cfg, err := goauth.ConfigFromJSON(clientJSON, ReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("oauth client config: %w", err)
		}
		tok, err := ReadToken(tokenFile)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Using OAuth user token", "path", tokenFile)
		return cfg.TokenSource(ctx, tok), nil
	}

	serviceAccountJSON := env("GOOGLE_SERVICE_ACCOUNT_JSON")
	serviceAccountFile := env("GOOGLE_SERVICE_ACCOUNT_FILE")
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = env("GOOGLE_APPLICATION_CREDENTIALS")
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errNoCredentials
	}

	creds, err := goauth.CredentialsFromJSON(ctx, credentialsJSON, ReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("service account credentials: %w", err)
	}
	return creds.TokenSource, nil
}

// OAuthClientJSON returns the OAuth client definition from
// GOOGLE_OAUTH_CLIENT_JSON or the file named by GOOGLE_OAUTH_CLIENT_FILE.
func OAuthClientJSON() ([]byte, error) {
	if v := env("GOOGLE_OAUTH_CLIENT_JSON"); v != "" {
		return []byte(v), nil
	}
	if path := env("GOOGLE_OAUTH_CLIENT_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
}

// ReadToken loads a token saved by WriteToken.
func ReadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &tok, nil
}

// WriteToken saves tok readable by the owner only.
func WriteToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("write token: %w", err)
	}
	return f.Close()
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
