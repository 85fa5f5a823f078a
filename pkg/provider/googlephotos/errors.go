package googlephotos

import (
	"errors"
	"fmt"
)

var (
	ErrNoAlbums         = errors.New("No albums have been specified")
	ErrAPINotEnabled    = errors.New("\"Photos Library API\" is not enabled on\nhttps://console.developers.google.com\n\nCheck the Photoframe Wiki for details")
	ErrNoImages         = errors.New("No images could be found,\nCheck spelling or make sure you have added albums")
	ErrDuplicateKeyword = errors.New("Album already in list")
	ErrNoSuchAlbum      = errors.New("No such album")
	ErrBlankKeyword     = errors.New("Cannot use blank album name")
	ErrUnknownKeyword   = errors.New("keyword has no resolved album")
	ErrNoItems          = errors.New("no media items returned")
)

// noSuchAlbum renders `No such album "<kw>"` while still matching ErrNoSuchAlbum.
func noSuchAlbum(kw Keyword) error {
	return fmt.Errorf("%w %q", ErrNoSuchAlbum, kw.String())
}

// APIError is a non-200 answer from the Photos Library API.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}
