package googlephotos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gaubeleo/photoframe/pkg/provider"
	"github.com/gaubeleo/photoframe/util/log"
)

// searchQuery builds the first mediaItems:search request for kw.
func (s *Service) searchQuery(kw Keyword, extras Extras) (*SearchMediaItemsRequest, error) {
	if kw.IsLatest() {
		log.Debugf("[GooglePhotos] Use latest %d images", maxListItems)
		return &SearchMediaItemsRequest{
			PageSize: searchPageSize,
			Filters: &Filters{
				MediaTypeFilter: &MediaTypeFilter{MediaTypes: []string{"PHOTO"}},
			},
		}, nil
	}
	extra, ok := extras.Get(kw)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeyword, kw)
	}
	return &SearchMediaItemsRequest{PageSize: searchPageSize, AlbumID: extra.AlbumID}, nil
}

// ListMedia returns the media listing for kw, from the cache when present.
// A fresh listing is fetched page by page up to the item cap and cached only
// when it is not empty.
func (s *Service) ListMedia(ctx context.Context, kw Keyword) ([]MediaItem, error) {
	key := kw.cacheKey()
	if data, err := s.cache.Load(key); err == nil {
		var items []MediaItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decoding cached listing for %q: %w", kw, err)
		}
		return items, nil
	} else if !errors.Is(err, provider.ErrBlobNotFound) {
		return nil, fmt.Errorf("loading cached listing for %q: %w", kw, err)
	}

	extras, err := s.loadExtras()
	if err != nil {
		return nil, err
	}
	query, err := s.searchQuery(kw, extras)
	if err != nil {
		log.Errorf("[GooglePhotos] Unable to create query the keyword %q", kw)
		return nil, err
	}

	var items []MediaItem
	for len(items) < maxListItems {
		resp, err := s.requester.Do(ctx, provider.Request{
			Method: http.MethodPost,
			URL:    s.apiBase + "/mediaItems:search",
			Body:   query,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			log.Warnf("[GooglePhotos] Requesting photos failed: %v", err)
			break
		}
		if !resp.OK() {
			log.Warnf("[GooglePhotos] Requesting photos failed with status code %d", resp.Status)
			log.Warnf("[GooglePhotos] More details: %s", string(resp.Content))
			break
		}

		var page MediaItemsResponse
		if err := json.Unmarshal(resp.Content, &page); err != nil {
			log.Warnf("[GooglePhotos] Unable to decode search result: %v", err)
			break
		}
		log.Debugf("[GooglePhotos] Got %d entries, adding it to existing %d entries", len(page.MediaItems), len(items))
		items = append(items, page.MediaItems...)

		if page.NextPageToken == "" {
			break
		}
		query.PageToken = page.NextPageToken
		log.Debugf("[GooglePhotos] Fetching another result-set for this keyword")
	}

	if len(items) == 0 {
		log.Errorf("[GooglePhotos] No result returned for keyword %q!", kw)
		return nil, fmt.Errorf("%w for %q", ErrNoItems, kw)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Save(key, data); err != nil {
		log.Warnf("[GooglePhotos] Unable to cache listing for %q: %v", kw, err)
	}
	return items, nil
}
