package googlephotos

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gaubeleo/photoframe/asset"
	"github.com/gaubeleo/photoframe/config"
	"github.com/gaubeleo/photoframe/pkg/provider"
	"github.com/gaubeleo/photoframe/util/log"
	"golang.org/x/oauth2"
)

// Service is a Google Photos backed photo source.
type Service struct {
	instanceID string
	requester  provider.Requester
	keywords   provider.KeywordStore
	cache      provider.BlobStore
	memory     *provider.Memory

	apiBase string
	intn    func(n int) int
}

// Option customizes a Service.
type Option func(*Service)

// WithAPIBase points the service at a different API root.
func WithAPIBase(base string) Option {
	return func(s *Service) { s.apiBase = strings.TrimSuffix(base, "/") }
}

// WithRandom replaces the source of random offsets.
func WithRandom(intn func(n int) int) Option {
	return func(s *Service) { s.intn = intn }
}

// WithMemory shares a seen-set between services.
func WithMemory(m *provider.Memory) Option {
	return func(s *Service) { s.memory = m }
}

// New creates a Service over the given stores.
func New(instanceID string, requester provider.Requester, keywords provider.KeywordStore, cache provider.BlobStore, opts ...Option) *Service {
	s := &Service{
		instanceID: instanceID,
		requester:  requester,
		keywords:   keywords,
		cache:      cache,
		memory:     provider.NewMemory(),
		apiBase:    DefaultAPIBase,
		intn:       rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func init() {
	provider.RegisterService(Descriptor.Name, NewFromConfig)
}

// NewFromConfig wires a Service to on-disk state under the instance's storage
// directory and an OAuth client built from the configured client secret.
func NewFromConfig(ctx context.Context, cfg *config.Config, instanceID string) (provider.PhotoService, error) {
	dir := cfg.ServiceDir(instanceID)
	keywords, err := provider.NewFileKeywordStore(dir)
	if err != nil {
		return nil, err
	}
	cache, err := provider.NewFileBlobStore(filepath.Join(dir, cacheDirName))
	if err != nil {
		return nil, err
	}

	oauthCfg, err := LoadOAuthConfig(cfg.Google.ClientSecretFile, OAuthScopes())
	if err != nil {
		return nil, err
	}
	tokens := NewTokenStore(cfg.Google.TokenStore, dir, instanceID)
	client := oauth2.NewClient(ctx, NewTokenSource(ctx, oauthCfg, tokens))
	requester := provider.NewRestRequester(client, cfg.Google.UserAgent, cfg.Google.RequestsPerSecond)

	return New(instanceID, requester, keywords, cache), nil
}

func (s *Service) Descriptor() provider.Descriptor { return Descriptor }

func (s *Service) InstanceID() string { return s.instanceID }

// OAuthScopes returns the scopes the service needs.
func OAuthScopes() []string {
	return []string{ScopeReadOnly}
}

// HelpKeywords describes the accepted keywords.
func (s *Service) HelpKeywords() string {
	text, err := asset.NewManager().GetText("help_keywords.txt")
	if err != nil {
		log.Errorf("[GooglePhotos] %v", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// Keywords returns the stored keywords, or nil when they cannot be read.
func (s *Service) Keywords() []string {
	kws, err := s.keywords.Keywords()
	if err != nil {
		log.Errorf("[GooglePhotos] Unable to load keywords: %v", err)
		return nil
	}
	return kws
}

func (s *Service) loadExtras() (Extras, error) {
	raw, err := s.keywords.Extras()
	if err != nil {
		return nil, fmt.Errorf("loading extras: %w", err)
	}
	extras, err := ParseExtras(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding extras: %w", err)
	}
	return extras, nil
}

func (s *Service) saveExtras(e Extras) error {
	raw, err := e.Raw()
	if err != nil {
		return err
	}
	return s.keywords.SetExtras(raw)
}

// KeywordResult is the outcome of validating a keyword.
type KeywordResult struct {
	Err     error
	Keyword Keyword
	Extra   *AlbumExtra
}

// ValidateKeyword normalizes raw, rejects blanks and duplicates, and resolves
// album keywords to their album.
func (s *Service) ValidateKeyword(ctx context.Context, raw string) KeywordResult {
	kw := ParseKeyword(raw)
	res := KeywordResult{Keyword: kw}

	if kw.IsBlank() {
		res.Err = ErrBlankKeyword
		return res
	}

	existing, err := s.keywords.Keywords()
	if err != nil {
		res.Err = err
		return res
	}
	for _, k := range existing {
		if Normalize(k) == kw.String() {
			log.Errorf("[GooglePhotos] Album was already in list")
			res.Err = ErrDuplicateKeyword
			return res
		}
	}

	if kw.IsLatest() {
		return res
	}

	extra, err := s.ResolveAlbum(ctx, kw)
	if err != nil {
		log.Warnf("[GooglePhotos] Unable to resolve %q: %v", kw, err)
	}
	if extra == nil {
		res.Err = noSuchAlbum(kw)
		return res
	}
	res.Extra = extra
	return res
}

// AddKeyword validates raw and stores it together with its album in one write.
func (s *Service) AddKeyword(ctx context.Context, raw string) error {
	res := s.ValidateKeyword(ctx, raw)
	if res.Err != nil {
		return res.Err
	}

	var extrasRaw []byte
	if res.Extra != nil {
		extras, err := s.loadExtras()
		if err != nil {
			return err
		}
		extras.Set(res.Keyword, *res.Extra)
		if extrasRaw, err = extras.Raw(); err != nil {
			return err
		}
	}
	if err := s.keywords.AddKeyword(res.Keyword.String(), extrasRaw); err != nil {
		return fmt.Errorf("storing keyword %q: %w", res.Keyword, err)
	}
	log.Printf("[GooglePhotos] Added keyword %q", res.Keyword)
	return nil
}

// RemoveKeyword removes the keyword at index along with its cached listing. The
// keyword and its album leave the store in one write. It returns false for an
// out of range index.
func (s *Service) RemoveKeyword(index int) (bool, error) {
	keywords, err := s.keywords.Keywords()
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(keywords) {
		return false, nil
	}
	kw := ParseKeyword(keywords[index])

	if err := s.cache.Delete(kw.cacheKey()); err != nil {
		log.Warnf("[GooglePhotos] Unable to delete cached listing for %q: %v", kw, err)
	}

	var extrasRaw []byte
	extras, err := s.loadExtras()
	if err == nil && extras.Delete(kw) {
		extrasRaw, err = extras.Raw()
	}
	if err != nil {
		log.Warnf("[GooglePhotos] Unable to drop album for %q: %v", kw, err)
		extrasRaw = nil
	}

	if _, err := s.keywords.RemoveKeyword(index, extrasRaw); err != nil {
		return false, fmt.Errorf("removing keyword %q: %w", kw, err)
	}
	return true, nil
}

// KeywordSourceURL returns a browsable URL for the keyword at index.
func (s *Service) KeywordSourceURL(index int) string {
	keywords := s.Keywords()
	if index < 0 || index >= len(keywords) {
		return fmt.Sprintf("Out of range, index = %d", index)
	}
	extras, err := s.loadExtras()
	if err != nil {
		log.Warnf("[GooglePhotos] %v", err)
		return DefaultSourceURL
	}
	extra, ok := extras.Get(ParseKeyword(keywords[index]))
	if !ok {
		return DefaultSourceURL
	}
	return extra.SourceURL
}

// FetchImage downloads one image to dest, trying keywords in a random rotation.
func (s *Service) FetchImage(ctx context.Context, dest string, supportedMime []string, display provider.DisplaySize) provider.Result {
	keywords, err := s.keywords.Keywords()
	if err != nil {
		return provider.Result{Err: err}
	}
	if len(keywords) == 0 {
		return provider.Result{Err: ErrNoAlbums}
	}

	for _, kw := range s.rotation(keywords) {
		if ctx.Err() != nil {
			return provider.Result{Err: ctx.Err()}
		}
		items, err := s.ListMedia(ctx, kw)
		if err != nil {
			log.Debugf("[GooglePhotos] No media for %q: %v", kw, err)
			continue
		}
		pick, ok := s.pickFromItems(items, supportedMime, display)
		if !ok {
			continue
		}

		resp, err := s.requester.Do(ctx, provider.Request{Method: http.MethodGet, URL: pick.URL, Destination: dest})
		if err != nil {
			log.Warnf("[GooglePhotos] Download of %s failed: %v", pick.SourceURL, err)
			continue
		}
		if resp.OK() {
			return provider.Result{MimeType: pick.MimeType, Source: pick.SourceURL}
		}
		log.Warnf("[GooglePhotos] Download of %s failed with status %d", pick.SourceURL, resp.Status)
	}

	if ctx.Err() != nil {
		return provider.Result{Err: ctx.Err()}
	}
	if !s.IsEnabled(ctx) {
		return provider.Result{Err: ErrAPINotEnabled}
	}
	return provider.Result{Err: ErrNoImages}
}

// PrepareNextItem fetches an image and, if that fails, forgets what was shown,
// drops every cached listing and tries once more.
func (s *Service) PrepareNextItem(ctx context.Context, dest string, supportedMime []string, display provider.DisplaySize) provider.Result {
	result := s.FetchImage(ctx, dest, supportedMime, display)
	if result.Err == nil || errors.Is(result.Err, context.Canceled) || errors.Is(result.Err, context.DeadlineExceeded) {
		return result
	}

	log.Printf("[GooglePhotos] Fetch failed (%v), forgetting history and cached listings", result.Err)
	s.memory.Forget()
	if err := s.cache.Clear(); err != nil {
		log.Warnf("[GooglePhotos] Unable to clear cached listings: %v", err)
	}
	return s.FetchImage(ctx, dest, supportedMime, display)
}

// IsEnabled reports false only when the API answers that it has not been
// enabled for the project.
func (s *Service) IsEnabled(ctx context.Context) bool {
	resp, err := s.requester.Do(ctx, provider.Request{
		Method: http.MethodGet,
		URL:    s.apiBase + "/albums",
		Params: url.Values{"pageSize": {"1"}},
	})
	if err != nil {
		log.Debugf("[GooglePhotos] API check failed: %v", err)
		return true
	}
	return !(resp.Status == http.StatusForbidden && strings.Contains(string(resp.Content), apiNotEnabledMarker))
}

// PostSetup repairs the stored albums: it normalizes legacy mixed-case keys,
// drops albums whose keyword is gone and resolves albums for keywords stored
// without one.
func (s *Service) PostSetup(ctx context.Context) error {
	extras, err := s.loadExtras()
	if err != nil {
		return err
	}
	keywords, err := s.keywords.Keywords()
	if err != nil {
		return err
	}

	if len(extras) == 0 && len(keywords) > 0 {
		log.Printf("[GooglePhotos] Migrating to new format with preresolved album ids")
	}

	normalized, changed := extras.Normalized()
	if changed {
		log.Debugf("[GooglePhotos] Had to translate non-lower-case keywords, should be a one-time thing")
	}
	if dropped := normalized.Reconcile(keywords); dropped > 0 {
		log.Warnf("[GooglePhotos] Mismatch between keywords and extras info, corrected (%d dropped)", dropped)
		changed = true
	}

	for _, k := range keywords {
		kw := ParseKeyword(k)
		if kw.IsLatest() || kw.IsBlank() {
			continue
		}
		if _, ok := normalized.Get(kw); ok {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		extra, err := s.ResolveAlbum(ctx, kw)
		if err != nil || extra == nil {
			log.Errorf("[GooglePhotos] Existing keyword %q cannot be resolved: %v", kw, err)
			continue
		}
		normalized.Set(kw, *extra)
		changed = true
	}

	if !changed {
		return nil
	}
	return s.saveExtras(normalized)
}
