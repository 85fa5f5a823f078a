package googlephotos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gaubeleo/photoframe/pkg/provider"
	"github.com/gaubeleo/photoframe/util/log"
)

// ResolveAlbum finds the album whose normalized title equals kw, looking at the
// user's own albums before shared ones. It returns nil without error when no
// album matches, and for blank or latest keywords.
func (s *Service) ResolveAlbum(ctx context.Context, kw Keyword) (*AlbumExtra, error) {
	if kw.IsBlank() {
		log.Errorf("[GooglePhotos] Cannot use blank album name")
		return nil, nil
	}
	if kw.IsLatest() {
		return nil, nil
	}

	log.Debugf("[GooglePhotos] Query Google Photos for album named %q", kw)

	extra, err := s.findAlbum(ctx, "/albums", kw, func(data []byte) ([]Album, string, error) {
		var resp AlbumsResponse
		err := json.Unmarshal(data, &resp)
		return resp.Albums, resp.NextPageToken, err
	})
	if err != nil || extra != nil {
		return extra, err
	}

	return s.findAlbum(ctx, "/sharedAlbums", kw, func(data []byte) ([]Album, string, error) {
		var resp SharedAlbumsResponse
		err := json.Unmarshal(data, &resp)
		if err == nil && resp.SharedAlbums == nil {
			log.Debugf("[GooglePhotos] User has no shared albums")
		}
		return resp.SharedAlbums, resp.NextPageToken, err
	})
}

type albumPageDecoder func(data []byte) ([]Album, string, error)

func (s *Service) findAlbum(ctx context.Context, path string, kw Keyword, decode albumPageDecoder) (*AlbumExtra, error) {
	params := url.Values{"pageSize": {strconv.Itoa(albumPageSize)}}
	for {
		resp, err := s.requester.Do(ctx, provider.Request{
			Method: http.MethodGet,
			URL:    s.apiBase + path,
			Params: params,
		})
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", path, err)
		}
		if !resp.OK() {
			return nil, &APIError{Op: "list " + path, Status: resp.Status, Body: string(resp.Content)}
		}

		albums, next, err := decode(resp.Content)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		for _, a := range albums {
			if a.Title == "" {
				continue
			}
			log.Debugf("[GooglePhotos] Album: %s", a.Title)
			if Normalize(a.Title) == kw.String() {
				log.Debugf("[GooglePhotos] Found album %q (%s)", a.Title, a.ID)
				return &AlbumExtra{AlbumID: a.ID, SourceURL: a.ProductURL, AlbumName: a.Title}, nil
			}
		}

		if next == "" {
			return nil, nil
		}
		log.Printf("[GooglePhotos] Another page of %s available", path)
		params.Set("pageToken", next)
	}
}
