package googlephotos

import (
	"context"
	"fmt"
	"slices"

	"github.com/gaubeleo/photoframe/pkg/provider"
	"github.com/gaubeleo/photoframe/util/log"
)

// Pick is an item chosen for download.
type Pick struct {
	MimeType  string
	URL       string
	SourceURL string
}

// DownloadSize returns the size to request for an item of w x h so that it
// covers the display without fetching more pixels than needed.
func DownloadSize(w, h float64, display provider.DisplaySize) (int, int) {
	dw, dh := display.Width(), display.Height()
	if w > float64(dw) && h > float64(dh) {
		ar := w / h
		if ar <= display.AspectRatio() {
			return dw, int(float64(dw) / ar)
		}
		return int(float64(dh) * ar), dh
	}
	return int(w), int(h)
}

// DownloadURL builds the sized download URL for a base URL.
func DownloadURL(baseURL string, w, h int) string {
	return fmt.Sprintf("%s=w%d-h%d", baseURL, w, h)
}

// orientationMatches rejects portrait/square items on landscape displays and
// landscape items on portrait displays.
func orientationMatches(ar float64, o provider.Orientation) bool {
	switch {
	case ar <= 1 && o == provider.Landscape:
		log.Debugf("[GooglePhotos] Unsupported orientation: Portrait/Square")
		return false
	case ar > 1 && o == provider.Portrait:
		log.Debugf("[GooglePhotos] Unsupported orientation: Landscape")
		return false
	}
	return true
}

// pickFromItems walks items from a random offset, wrapping once, and returns the
// first unseen item that fits. Every inspected item is remembered, accepted or not.
func (s *Service) pickFromItems(items []MediaItem, supportedMime []string, display provider.DisplaySize) (Pick, bool) {
	count := len(items)
	if count == 0 {
		return Pick{}, false
	}
	offset := s.intn(count)
	for i := 0; i < count; i++ {
		entry := items[(i+offset)%count]
		if s.memory.Seen(entry.BaseURL) {
			continue
		}
		s.memory.Remember(entry.BaseURL)

		if !slices.Contains(supportedMime, entry.MimeType) {
			log.Warnf("[GooglePhotos] Unsupported media: %s", entry.MimeType)
			continue
		}
		w, h, ok := entry.Dimensions()
		if !ok {
			log.Warnf("[GooglePhotos] Media %s has no usable dimensions", entry.ID)
			continue
		}
		if !orientationMatches(w/h, display.Orientation()) {
			continue
		}

		width, height := DownloadSize(w, h, display)
		return Pick{
			MimeType:  entry.MimeType,
			URL:       DownloadURL(entry.BaseURL, width, height),
			SourceURL: entry.ProductURL,
		}, true
	}
	return Pick{}, false
}

// rotation returns the keywords starting at a random index.
func (s *Service) rotation(keywords []string) []Keyword {
	total := len(keywords)
	if total == 0 {
		return nil
	}
	offset := s.intn(total)
	out := make([]Keyword, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, ParseKeyword(keywords[(i+offset)%total]))
	}
	return out
}

// PickImage returns the first acceptable item across all keywords, visited in
// a randomized rotation.
func (s *Service) PickImage(ctx context.Context, supportedMime []string, display provider.DisplaySize) (Pick, bool) {
	keywords, err := s.keywords.Keywords()
	if err != nil {
		log.Errorf("[GooglePhotos] Unable to load keywords: %v", err)
		return Pick{}, false
	}
	for _, kw := range s.rotation(keywords) {
		items, err := s.ListMedia(ctx, kw)
		if err != nil {
			log.Debugf("[GooglePhotos] No media for %q: %v", kw, err)
			continue
		}
		if pick, ok := s.pickFromItems(items, supportedMime, display); ok {
			return pick, true
		}
	}
	return Pick{}, false
}
