package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// authTimeout bounds how long the browser flow waits for the callback.
const authTimeout = 5 * time.Minute

// callbackAddr is where the OAuth2 redirect lands.
var callbackAddr = "localhost:8085"

func oauthConfig(c Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://" + callbackAddr + "/callback",
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// Authenticate runs the browser consent flow and returns a token with a
// refresh token. The token is saved to c.TokenFile when set.
func Authenticate(ctx context.Context, c Config) (*oauth2.Token, error) {
	conf := oauthConfig(c)

	listener, err := net.Listen("tcp", callbackAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	codes := make(chan string, 1)
	failures := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			failures <- errors.New("no authorization code received")
			_, _ = fmt.Fprint(w, "Authentication failed. Close this window and try again.")
			return
		}
		codes <- code
		_, _ = fmt.Fprint(w, "Authentication complete. You can close this window.")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			failures <- fmt.Errorf("callback server: %w", serveErr)
		}
	}()
	defer func() {
		if shutdownErr := server.Shutdown(context.Background()); shutdownErr != nil {
			slog.Warn("error shutting down callback server", "error", shutdownErr)
		}
	}()

	authURL := conf.AuthCodeURL("reduzer", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	slog.Info("Google Sheets authentication required")
	slog.Info("visit this URL to authenticate", "url", authURL)

	var code string
	select {
	case code = <-codes:
	case err := <-failures:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("authentication timed out after %s", authTimeout)
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if c.TokenFile != "" {
		if err := SaveToken(c.TokenFile, token); err != nil {
			slog.Warn("failed to save token", "error", err, "file", c.TokenFile)
		} else {
			slog.Info("token saved", "file", c.TokenFile)
		}
	}
	return token, nil
}

// LoadToken reads a token saved by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token %s: %w", path, err)
	}
	return token, nil
}

// SaveToken writes token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// tokenSource picks the credential for c: a configured refresh token, then
// a saved token file, then the interactive flow.
func tokenSource(ctx context.Context, c Config) (oauth2.TokenSource, error) {
	if c.ServiceAccountPath != "" {
		key, err := os.ReadFile(c.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		return jwt.TokenSource(ctx), nil
	}

	conf := oauthConfig(c)
	if c.RefreshToken != "" {
		return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken, TokenType: "Bearer"}), nil
	}

	token, err := LoadToken(c.TokenFile)
	if err != nil {
		slog.Info("no saved token, starting OAuth2 flow", "file", c.TokenFile)
		if token, err = Authenticate(ctx, c); err != nil {
			return nil, err
		}
	}
	return &persistingSource{
		base: conf.TokenSource(ctx, token),
		path: c.TokenFile,
		last: token.AccessToken,
	}, nil
}

// persistingSource saves refreshed tokens back to the token file.
type persistingSource struct {
	base oauth2.TokenSource
	path string
	last string
	mu   sync.Mutex
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := SaveToken(p.path, token); err != nil {
			slog.Warn("failed to save refreshed token", "error", err)
		}
	}
	return token, nil
}
