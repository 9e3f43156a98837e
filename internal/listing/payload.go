package listing

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

const pageModelMarker = "PAGE_MODEL = "

// ErrNoPayload means the page is not a listing page or its embedded payload
// could not be decoded.
var ErrNoPayload = eris.New("no listing payload")

// ExtractPayload finds the script block carrying the page model and returns
// the first JSON object in it that decodes.
func ExtractPayload(page string) (json.RawMessage, error) {
	script, ok := findScript(page, pageModelMarker)
	if !ok {
		return nil, eris.Wrap(ErrNoPayload, "listing: page model script not found")
	}
	obj, ok := FirstJSONObject(script)
	if !ok {
		return nil, eris.Wrap(ErrNoPayload, "listing: page model not decodable")
	}
	return obj, nil
}

// FirstJSONObject tries to decode a JSON object at every '{' in text, in
// order, and returns the first that succeeds.
func FirstJSONObject(text string) (json.RawMessage, bool) {
	for pos := 0; pos < len(text); {
		i := strings.IndexByte(text[pos:], '{')
		if i < 0 {
			return nil, false
		}
		start := pos + i

		var raw json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[start:]))
		if err := dec.Decode(&raw); err == nil {
			return raw, true
		}
		pos = start + 1
	}
	return nil, false
}

// findScript returns the text of the first <script> element containing marker.
func findScript(page, marker string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(page))
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = bytes.Equal(name, []byte("script"))
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			if text := string(z.Text()); strings.Contains(text, marker) {
				return text, true
			}
		}
	}
}
