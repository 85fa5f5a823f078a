package googlephotos

import "github.com/gaubeleo/photoframe/pkg/provider"

// Descriptor identifies the Google Photos service.
var Descriptor = provider.Descriptor{ID: 2, Name: "GooglePhotos"}

const (
	// DefaultAPIBase is the Photos Library API root.
	DefaultAPIBase = "https://photoslibrary.googleapis.com/v1"

	// DefaultSourceURL is returned for keywords without a resolved album.
	DefaultSourceURL = "https://photos.google.com/"

	// RedirectURI is the loopback address used by the OAuth flow.
	RedirectURI = "http://127.0.0.1:10999/callback"

	// ScopeReadOnly grants read access to the user's library.
	ScopeReadOnly = "https://www.googleapis.com/auth/photoslibrary.readonly"
)

const (
	albumPageSize  = 50
	searchPageSize = 100
	maxListItems   = 1000

	latestKeyword = "latest"

	apiNotEnabledMarker = "Enable it by visiting"

	keyringService = "photoframe"
	tokenFileName  = "token.json"
	cacheDirName   = "cache"
)
