// Package pvr is the HTTP client for the recording system's management API:
// it reads DVR entries and writes resolved artwork back.
package pvr

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TitleMap holds a recording's localized titles, preserving the order the
// recording system returned them in. The artwork lookup iterates languages
// in exactly this order.
type TitleMap struct {
	langs  []string
	titles map[string]string
}

// Set stores a localized title, appending the language to the iteration
// order on first sight.
func (t *TitleMap) Set(lang, title string) {
	if t.titles == nil {
		t.titles = make(map[string]string)
	}
	if _, exists := t.titles[lang]; !exists {
		t.langs = append(t.langs, lang)
	}
	t.titles[lang] = title
}

// Get returns the title for a language.
func (t *TitleMap) Get(lang string) (string, bool) {
	title, ok := t.titles[lang]
	return title, ok
}

// Languages returns the language codes in arrival order.
func (t *TitleMap) Languages() []string {
	return t.langs
}

// Len returns the number of localized titles.
func (t *TitleMap) Len() int {
	return len(t.titles)
}

// UnmarshalJSON accepts both shapes the API uses: a plain string (single
// unlocalized title, stored under "eng") and a language→text object. Object
// keys are read from the token stream so their order survives decoding.
func (t *TitleMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case string:
		t.Set("eng", v)
		return nil
	case json.Delim:
		if v != '{' {
			return fmt.Errorf("title: unexpected JSON delimiter %q", v)
		}
	default:
		return fmt.Errorf("title: unexpected JSON token %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("title: non-string object key %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("title[%s]: %w", key, err)
		}
		t.Set(key, value)
	}

	_, err = dec.Token() // closing brace
	return err
}

// Recording is one DVR entry as returned by the management API.
type Recording struct {
	UUID        string   `json:"uuid"`
	Image       string   `json:"image"`
	Fanart      string   `json:"fanart_image"`
	Titles      TitleMap `json:"title"`
	Year        int      `json:"copyright_year"`
	EpisodeDisp string   `json:"episode_disp"`
	URI         string   `json:"uri"`
}

// IsTV reports whether the entry is a TV episode. A non-empty episode
// display string is the sole classifier.
func (r *Recording) IsTV() bool {
	return r.EpisodeDisp != ""
}

// HasArtwork reports whether both artwork fields are already populated.
func (r *Recording) HasArtwork() bool {
	return r.Image != "" && r.Fanart != ""
}
