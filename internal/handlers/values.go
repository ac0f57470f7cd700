package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/imrishuroy/go-cargo-orderform/internal/attachments"
	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

// photoPayload is one photo sent inline in a JSON field update.
type photoPayload struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

// decodeFieldValue turns the raw JSON value of a field update into what the
// form controller accepts: nil to clear, []orders.Attachment for photos and a
// string for everything else.
func decodeFieldValue(path orders.FieldPath, raw json.RawMessage, maxBytes int64) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if path == orders.PathPhotos {
		var items []photoPayload
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w %s: %v", orders.ErrInvalidValue, path, err)
		}
		photos := make([]orders.Attachment, 0, len(items))
		for _, it := range items {
			data, err := base64.StdEncoding.DecodeString(it.Data)
			if err != nil {
				return nil, fmt.Errorf("%w %s: %s: %v", orders.ErrInvalidValue, path, it.Filename, err)
			}
			if maxBytes > 0 && int64(len(data)) > maxBytes {
				return nil, fmt.Errorf("%w: %s", attachments.ErrTooLarge, it.Filename)
			}
			photos = append(photos, attachments.Resolve(it.Filename, it.MimeType, data))
		}
		return photos, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w %s: expected a string", orders.ErrInvalidValue, path)
	}
	return s, nil
}
