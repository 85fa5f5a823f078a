package googlephotos

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// MediaItem represents a photo or video in Google Photos.
type MediaItem struct {
	ID            string        `json:"id,omitempty"`
	ProductURL    string        `json:"productUrl"`
	BaseURL       string        `json:"baseUrl"`
	MimeType      string        `json:"mimeType"`
	MediaMetadata MediaMetadata `json:"mediaMetadata"`
	Filename      string        `json:"filename,omitempty"`
}

// MediaMetadata contains metadata about the media item.
type MediaMetadata struct {
	CreationTime *time.Time `json:"creationTime,omitempty"`
	Width        Dimension  `json:"width"`
	Height       Dimension  `json:"height"`
}

// Dimension is a pixel size. The API sends it as a string, but a bare number
// decodes too.
type Dimension string

func (d *Dimension) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Dimension(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = Dimension(n.String())
	return nil
}

// Float parses d, reporting false unless it is a positive number.
func (d Dimension) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(d), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Dimensions parses the native size of the item.
func (m MediaItem) Dimensions() (float64, float64, bool) {
	w, ok := m.MediaMetadata.Width.Float()
	if !ok {
		return 0, 0, false
	}
	h, ok := m.MediaMetadata.Height.Float()
	if !ok {
		return 0, 0, false
	}
	return w, h, true
}

// Album represents a Google Photos album.
type Album struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ProductURL      string `json:"productUrl"`
	MediaItemsCount string `json:"mediaItemsCount,omitempty"`
}

// MediaItemsResponse represents the response from mediaItems.search.
type MediaItemsResponse struct {
	MediaItems    []MediaItem `json:"mediaItems"`
	NextPageToken string      `json:"nextPageToken"`
}

// AlbumsResponse represents the response from albums.list.
type AlbumsResponse struct {
	Albums        []Album `json:"albums"`
	NextPageToken string  `json:"nextPageToken"`
}

// SharedAlbumsResponse represents the response from sharedAlbums.list. The
// field is absent when the user has no shared albums.
type SharedAlbumsResponse struct {
	SharedAlbums  []Album `json:"sharedAlbums"`
	NextPageToken string  `json:"nextPageToken"`
}

// SearchMediaItemsRequest represents the request body for mediaItems.search.
type SearchMediaItemsRequest struct {
	AlbumID   string   `json:"albumId,omitempty"`
	PageSize  int      `json:"pageSize,omitempty"`
	PageToken string   `json:"pageToken,omitempty"`
	Filters   *Filters `json:"filters,omitempty"`
}

// Filters defines search filters.
type Filters struct {
	MediaTypeFilter *MediaTypeFilter `json:"mediaTypeFilter,omitempty"`
}

// MediaTypeFilter filters by media type (PHOTO, VIDEO).
type MediaTypeFilter struct {
	MediaTypes []string `json:"mediaTypes"`
}
