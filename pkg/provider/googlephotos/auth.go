package googlephotos

import (
	"context"
	"crypto/rand"
	"encoding/base64"
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

	"github.com/gaubeleo/photoframe/config"
	"github.com/gaubeleo/photoframe/util/log"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrNoToken means the instance has not been authorized yet.
var ErrNoToken = errors.New("not authorized, run \"photoframe auth\" first")

// LoadOAuthConfig reads a client secret downloaded from the Google API console.
func LoadOAuthConfig(clientSecretFile string, scopes []string) (*oauth2.Config, error) {
	if clientSecretFile == "" {
		return nil, errors.New("google.client_secret_file is not configured")
	}
	data, err := os.ReadFile(clientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secret: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}
	cfg.RedirectURL = RedirectURI
	return cfg, nil
}

// TokenStore persists OAuth tokens for one service instance.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(tok *oauth2.Token) error
	Delete() error
}

// NewTokenStore returns the configured kind of store.
func NewTokenStore(kind, dir, instanceID string) TokenStore {
	if kind == config.TokenStoreKeyring {
		return &KeyringTokenStore{Service: keyringService, User: instanceID}
	}
	return &FileTokenStore{Path: filepath.Join(dir, tokenFileName)}
}

// FileTokenStore keeps the token in a 0600 JSON file.
type FileTokenStore struct {
	Path string
}

func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return &tok, nil
}

func (s *FileTokenStore) Save(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

func (s *FileTokenStore) Delete() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// KeyringTokenStore keeps the token in the OS keyring.
type KeyringTokenStore struct {
	Service string
	User    string
}

func (s *KeyringTokenStore) Load() (*oauth2.Token, error) {
	secret, err := keyring.Get(s.Service, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNoToken
		}
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(secret), &tok); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return &tok, nil
}

func (s *KeyringTokenStore) Save(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return keyring.Set(s.Service, s.User, string(data))
}

func (s *KeyringTokenStore) Delete() error {
	if err := keyring.Delete(s.Service, s.User); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// persistingTokenSource loads the stored token on first use and writes back
// every refreshed token.
type persistingTokenSource struct {
	mu    sync.Mutex
	ctx   context.Context
	cfg   *oauth2.Config
	store TokenStore
	base  oauth2.TokenSource
	last  string
}

// NewTokenSource returns a refreshing token source backed by store. A missing
// token surfaces as ErrNoToken when a request is made.
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, store TokenStore) oauth2.TokenSource {
	return &persistingTokenSource{ctx: ctx, cfg: cfg, store: store}
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.base == nil {
		tok, err := p.store.Load()
		if err != nil {
			return nil, err
		}
		p.base = p.cfg.TokenSource(p.ctx, tok)
		p.last = tok.AccessToken
	}

	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		if err := p.store.Save(tok); err != nil {
			log.Warnf("[GooglePhotos] Unable to persist refreshed token: %v", err)
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}

// Authenticator runs the authorization code flow with PKCE.
type Authenticator struct {
	cfg   *oauth2.Config
	store TokenStore
}

func NewAuthenticator(cfg *oauth2.Config, store TokenStore) *Authenticator {
	return &Authenticator{cfg: cfg, store: store}
}

// AuthURL returns the consent page URL for state and the PKCE verifier.
func (a *Authenticator) AuthURL(state, verifier string) string {
	return a.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades code for a token and stores it.
func (a *Authenticator) Exchange(ctx context.Context, code, verifier string) error {
	tok, err := a.cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}
	if err := a.store.Save(tok); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	log.Print("[GooglePhotos] Authentication successful.")
	return nil
}

// StartOAuthFlow serves the redirect URI locally, hands the consent URL to
// openURL and waits for the callback.
func (a *Authenticator) StartOAuthFlow(ctx context.Context, openURL func(string) error) error {
	verifier := oauth2.GenerateVerifier()
	state, err := generateRandomString(32)
	if err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}

	redirect, err := url.Parse(a.cfg.RedirectURL)
	if err != nil {
		return fmt.Errorf("invalid redirect URL: %w", err)
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			errChan <- errors.New("invalid state parameter")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Missing code", http.StatusBadRequest)
			errChan <- errors.New("missing code parameter")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte("Photoframe is now linked to Google Photos. You can close this tab.\n")); err != nil {
			log.Printf("[GooglePhotos] Failed to write callback response: %v", err)
		}
		codeChan <- code
	})

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", redirect.Host, err)
	}
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[GooglePhotos] Failed to shutdown callback server gracefully: %v", err)
		}
	}()

	if err := openURL(a.AuthURL(state, verifier)); err != nil {
		return fmt.Errorf("failed to open consent page: %w", err)
	}

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return errors.New("authentication timed out")
	}
	return a.Exchange(ctx, code, verifier)
}

func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
