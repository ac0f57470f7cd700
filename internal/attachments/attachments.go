// Package attachments turns uploaded photo bytes into order attachments,
// deciding the MIME type from the content rather than the file name.
package attachments

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

// ErrTooLarge is returned when a file exceeds the configured size limit.
var ErrTooLarge = errors.New("attachment exceeds size limit")

// Detect returns the bare media type of data, without parameters.
func Detect(data []byte) string {
	mt, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return strings.TrimSpace(mt)
}

// FromBytes builds an attachment whose type is sniffed from data.
func FromBytes(filename string, data []byte) orders.Attachment {
	return orders.Attachment{
		Filename: filename,
		MimeType: Detect(data),
		Bytes:    data,
	}
}

// Resolve prefers the sniffed type when content is present and falls back to
// the type declared by the client otherwise.
func Resolve(filename, declared string, data []byte) orders.Attachment {
	if len(data) > 0 {
		return FromBytes(filename, data)
	}
	return orders.Attachment{Filename: filename, MimeType: strings.ToLower(strings.TrimSpace(declared))}
}

// FromFileHeader reads an uploaded multipart file. maxBytes <= 0 disables the limit.
func FromFileHeader(fh *multipart.FileHeader, maxBytes int64) (orders.Attachment, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return orders.Attachment{}, fmt.Errorf("%w: %s (%d bytes)", ErrTooLarge, fh.Filename, fh.Size)
	}
	f, err := fh.Open()
	if err != nil {
		return orders.Attachment{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	return FromReader(fh.Filename, f, maxBytes)
}

// FromReader reads r fully, enforcing maxBytes when positive.
func FromReader(filename string, r io.Reader, maxBytes int64) (orders.Attachment, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return orders.Attachment{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return orders.Attachment{}, fmt.Errorf("%w: %s", ErrTooLarge, filename)
	}
	return FromBytes(filename, data), nil
}
