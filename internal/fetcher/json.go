package fetcher

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeArray decodes a JSON array of the form [{...},{...}] element by
// element. Anything after the closing bracket is an error.
func DecodeArray[T any](r io.Reader) ([]T, error) {
	decoder := json.NewDecoder(r)

	tok, err := decoder.Token()
	if err != nil {
		if err == io.EOF {
			return nil, eris.New("json: empty body")
		}
		return nil, eris.Wrap(err, "json: read opening token")
	}

	delim, ok := tok.(json.Delim)
	if !ok || delim != '[' {
		return nil, eris.Errorf("json: expected '[', got %v", tok)
	}

	var items []T
	for decoder.More() {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return nil, eris.Wrapf(err, "json: decode element %d", len(items))
		}
		items = append(items, item)
	}

	if _, err := decoder.Token(); err != nil {
		return nil, eris.Wrap(err, "json: read closing token")
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, eris.New("json: unexpected data after array")
	}

	return items, nil
}
