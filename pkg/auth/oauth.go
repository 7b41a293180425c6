package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/focusa/pkg/config"
	"github.com/harrisonrobin/focusa/pkg/logging"
)

const (
	// ClientSecretsFile is the Google API credentials.json downloaded from the
	// cloud console, placed in the config directory.
	ClientSecretsFile = "credentials.json"

	// TokenFile caches the user's access and refresh token.
	TokenFile = "token.json"

	// LocalhostAuthPort is where the redirect listener binds.
	LocalhostAuthPort = "6789"
)

// ErrNotAuthorized is returned by Client when no cached token exists.
var ErrNotAuthorized = errors.New("not authorized with Google Calendar; run 'focusa auth'")

// Scopes are the calendar permissions requested. Sync only reads.
var Scopes = []string{calendar.CalendarReadonlyScope}

// TokenPath returns the location of the cached token.
func TokenPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TokenFile), nil
}

// OAuthConfig builds an oauth2.Config from the client secrets file.
func OAuthConfig() (*oauth2.Config, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	secretsPath := filepath.Join(dir, ClientSecretsFile)
	b, err := os.ReadFile(secretsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", secretsPath, err)
	}

	cfg, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	cfg.RedirectURL = redirectURL(cfg.RedirectURL)
	return cfg, nil
}

// redirectURL forces localhost and out-of-band redirects onto the port the
// callback listener binds.
func redirectURL(configured string) string {
	log := logging.Component("auth")

	if configured == "" || configured == "urn:ietf:wg:oauth:2.0:oob" {
		return fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	}

	u, err := url.Parse(configured)
	if err != nil {
		log.Warn().Err(err).Str("redirect", configured).Msg("could not parse redirect URL, using as-is")
		return configured
	}

	if u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		log.Warn().Str("redirect", configured).Msg("redirect URL is not a localhost callback")
		return configured
	}

	if u.Port() != LocalhostAuthPort {
		u.Host = net.JoinHostPort(u.Hostname(), LocalhostAuthPort)
	}
	return u.String()
}

// Client returns an HTTP client authorized with the cached token. Refreshed
// tokens are written back to disk.
func Client(ctx context.Context) (*http.Client, error) {
	cfg, err := OAuthConfig()
	if err != nil {
		return nil, err
	}

	path, err := TokenPath()
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	src := &savingTokenSource{
		base: cfg.TokenSource(ctx, tok),
		path: path,
		last: tok.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// Authorize runs the browser consent flow and caches the resulting token,
// replacing any existing one.
func Authorize(ctx context.Context) error {
	cfg, err := OAuthConfig()
	if err != nil {
		return err
	}

	path, err := TokenPath()
	if err != nil {
		return err
	}

	tok, err := tokenFromWeb(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to get token from web: %w", err)
	}
	return saveToken(path, tok)
}

// RemoveToken deletes the cached token. A missing file is not an error.
func RemoveToken() error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete token file %s: %w", path, err)
	}
	return nil
}

// tokenFromWeb serves the OAuth redirect on localhost and exchanges the code.
func tokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	log := logging.Component("auth")

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", net.JoinHostPort("localhost", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- fmt.Errorf("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("HTTP server error: %w", err):
			default:
			}
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	// AccessTypeOffline makes Google return a refresh token.
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open the following URL in your browser to authorize focusa:\n%s\n", authURL)
	log.Info().Str("redirect", cfg.RedirectURL).Msg("waiting for authorization code")

	select {
	case code := <-codeCh:
		exCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := cfg.Exchange(exCtx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("authorization timed out, please try again")
	}
}

// savingTokenSource persists the token whenever the access token changes.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := saveToken(s.path, tok); err != nil {
			log := logging.Component("auth")
			log.Warn().Err(err).Msg("could not persist refreshed token")
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
