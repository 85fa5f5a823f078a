package googlephotos

import (
	"encoding/json"
	"strings"

	"github.com/gaubeleo/photoframe/pkg/provider"
)

// Normalize trims, strips surrounding double quotes and case-folds a keyword.
// Applying it twice gives the same result as applying it once.
func Normalize(raw string) string {
	k := strings.TrimSpace(raw)
	for len(k) >= 2 && k[0] == '"' && k[len(k)-1] == '"' {
		k = strings.TrimSpace(k[1 : len(k)-1])
	}
	return strings.ToLower(k)
}

// Keyword selects either the most recent photos or a named album.
type Keyword struct {
	latest bool
	name   string
}

// Latest is the keyword for the most recent photos in the library.
var Latest = Keyword{latest: true, name: latestKeyword}

// ParseKeyword normalizes raw and classifies it.
func ParseKeyword(raw string) Keyword {
	n := Normalize(raw)
	if n == latestKeyword {
		return Latest
	}
	return Keyword{name: n}
}

// IsLatest reports whether k is the "latest" keyword.
func (k Keyword) IsLatest() bool { return k.latest }

// IsBlank reports an empty album name.
func (k Keyword) IsBlank() bool { return !k.latest && k.name == "" }

func (k Keyword) String() string { return k.name }

// cacheKey names the listing blob for k.
func (k Keyword) cacheKey() string { return provider.HashString(k.name) }

// AlbumExtra is what a resolved album keyword remembers about its album.
type AlbumExtra struct {
	AlbumID   string `json:"albumId"`
	SourceURL string `json:"sourceUrl"`
	AlbumName string `json:"albumName"`
}

// Extras maps normalized keywords to their resolved album.
type Extras map[string]AlbumExtra

// ParseExtras decodes stored extras; empty input yields an empty map.
func ParseExtras(raw json.RawMessage) (Extras, error) {
	e := Extras{}
	if len(raw) == 0 || string(raw) == "null" {
		return e, nil
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return e, nil
}

// Raw encodes e for storage.
func (e Extras) Raw() (json.RawMessage, error) {
	if e == nil {
		return json.RawMessage(`{}`), nil
	}
	return json.Marshal(e)
}

func (e Extras) Get(k Keyword) (AlbumExtra, bool) {
	x, ok := e[k.String()]
	return x, ok
}

func (e Extras) Set(k Keyword, x AlbumExtra) {
	e[k.String()] = x
}

func (e Extras) Delete(k Keyword) bool {
	if _, ok := e[k.String()]; !ok {
		return false
	}
	delete(e, k.String())
	return true
}

// Normalized returns e with every key normalized, and whether any key changed.
func (e Extras) Normalized() (Extras, bool) {
	out := make(Extras, len(e))
	changed := false
	for k, v := range e {
		n := Normalize(k)
		if n != k {
			changed = true
		}
		out[n] = v
	}
	return out, changed
}

// Reconcile drops entries that no stored keyword refers to and reports how many
// were dropped.
func (e Extras) Reconcile(keywords []string) int {
	keep := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		keep[Normalize(k)] = struct{}{}
	}
	dropped := 0
	for k := range e {
		if _, ok := keep[k]; !ok {
			delete(e, k)
			dropped++
		}
	}
	return dropped
}
