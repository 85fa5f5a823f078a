package googlephotos

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gaubeleo/photoframe/pkg/provider"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves the subset of the Photos Library API the service uses.
type fakeAPI struct {
	mu sync.Mutex

	albums         []Album
	shared         []Album
	noSharedField  bool
	albumPageSize  int
	albumsStatus   int
	media          map[string][]MediaItem // by album id, "" for latest
	endless        bool
	failSearchFrom int // 1-based search call that starts failing, 0 never
	notEnabled     bool

	searches    []SearchMediaItemsRequest
	albumCalls  int
	sharedCalls int
	downloads   []string

	server *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{media: map[string][]MediaItem{}}
	api.server = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.server.Close)
	return api
}

func paginate[T any](all []T, token string, size int) ([]T, string) {
	start, _ := strconv.Atoi(token)
	if size <= 0 {
		size = len(all)
	}
	if start >= len(all) {
		return nil, ""
	}
	end := min(start+size, len(all))
	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	}
	return all[start:end], next
}

func (a *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case r.URL.Path == "/albums":
		a.albumCalls++
		if a.notEnabled {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Photos Library API has not been used in project 1 before or it is disabled. Enable it by visiting https://console.developers.google.com then retry."}}`))
			return
		}
		if a.albumsStatus != 0 {
			w.WriteHeader(a.albumsStatus)
			return
		}
		page, next := paginate(a.albums, r.URL.Query().Get("pageToken"), a.albumPageSize)
		_ = json.NewEncoder(w).Encode(AlbumsResponse{Albums: page, NextPageToken: next})

	case r.URL.Path == "/sharedAlbums":
		a.sharedCalls++
		if a.noSharedField {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		page, next := paginate(a.shared, r.URL.Query().Get("pageToken"), a.albumPageSize)
		_ = json.NewEncoder(w).Encode(SharedAlbumsResponse{SharedAlbums: page, NextPageToken: next})

	case r.URL.Path == "/mediaItems:search" && r.Method == http.MethodPost:
		var req SearchMediaItemsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		a.searches = append(a.searches, req)
		if a.failSearchFrom > 0 && len(a.searches) >= a.failSearchFrom {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
			return
		}
		if a.endless {
			items := make([]MediaItem, req.PageSize)
			for i := range items {
				id := "e" + strconv.Itoa(len(a.searches)) + "-" + strconv.Itoa(i)
				items[i] = a.itemLocked(id, "image/jpeg", 4000, 3000)
			}
			_ = json.NewEncoder(w).Encode(MediaItemsResponse{MediaItems: items, NextPageToken: "more"})
			return
		}
		page, next := paginate(a.media[req.AlbumID], req.PageToken, req.PageSize)
		_ = json.NewEncoder(w).Encode(MediaItemsResponse{MediaItems: page, NextPageToken: next})

	case strings.HasPrefix(r.URL.Path, "/download/"):
		id, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/download/"), "=")
		if id == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		a.downloads = append(a.downloads, r.URL.Path+"?"+r.URL.RawQuery)
		_, _ = w.Write([]byte("IMG-" + id))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (a *fakeAPI) itemLocked(id, mime string, w, h int) MediaItem {
	return MediaItem{
		ID:         id,
		BaseURL:    a.server.URL + "/download/" + id,
		ProductURL: "https://photos.google.com/lr/photo/" + id,
		MimeType:   mime,
		MediaMetadata: MediaMetadata{
			Width:  Dimension(strconv.Itoa(w)),
			Height: Dimension(strconv.Itoa(h)),
		},
	}
}

func (a *fakeAPI) item(id, mime string, w, h int) MediaItem {
	return a.itemLocked(id, mime, w, h)
}

func (a *fakeAPI) searchCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.searches)
}

type testEnv struct {
	api   *fakeAPI
	svc   *Service
	cache *provider.MemoryBlobStore
	store *provider.FileKeywordStore
}

func newTestEnv(t *testing.T, keywords ...string) *testEnv {
	t.Helper()
	api := newFakeAPI(t)

	store, err := provider.NewFileKeywordStore(t.TempDir())
	require.NoError(t, err)
	for _, k := range keywords {
		require.NoError(t, store.AddKeyword(k, nil))
	}
	cache := provider.NewMemoryBlobStore()
	req := provider.NewRestRequester(api.server.Client(), "Photoframe/test", 0)

	svc := New("test-instance", req, store, cache,
		WithAPIBase(api.server.URL),
		WithRandom(func(int) int { return 0 }),
	)
	return &testEnv{api: api, svc: svc, cache: cache, store: store}
}

func (e *testEnv) setExtras(t *testing.T, extras Extras) {
	t.Helper()
	raw, err := extras.Raw()
	require.NoError(t, err)
	require.NoError(t, e.store.SetExtras(raw))
}

func (e *testEnv) extras(t *testing.T) Extras {
	t.Helper()
	raw, err := e.store.Extras()
	require.NoError(t, err)
	extras, err := ParseExtras(raw)
	require.NoError(t, err)
	return extras
}

func landscapeDisplay(t *testing.T) provider.DisplaySize {
	t.Helper()
	d, err := provider.NewDisplaySize(1920, 1080, "")
	require.NoError(t, err)
	return d
}
