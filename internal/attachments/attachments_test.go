package attachments

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!")
)

func TestDetect(t *testing.T) {
	require.Equal(t, orders.MimePNG, Detect(pngHeader))
	require.Equal(t, orders.MimeJPEG, Detect(jpegHeader))
	require.Equal(t, "image/gif", Detect(gifHeader))
	require.Equal(t, "text/plain", Detect([]byte("just some notes")))
}

func TestFromBytes_IgnoresFileName(t *testing.T) {
	a := FromBytes("camion.png", gifHeader)
	require.Equal(t, "image/gif", a.MimeType)
	require.False(t, orders.IsSupportedImage(a.MimeType))
	require.Equal(t, len(gifHeader), a.Size())
}

func TestResolve(t *testing.T) {
	require.Equal(t, orders.MimeJPEG, Resolve("a.jpg", "image/png", jpegHeader).MimeType)
	require.Equal(t, orders.MimePNG, Resolve("b.png", " IMAGE/PNG ", nil).MimeType)
}

func TestFromReader_Limit(t *testing.T) {
	a, err := FromReader("ok.png", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	require.Equal(t, orders.MimePNG, a.MimeType)

	_, err = FromReader("big.png", bytes.NewReader(pngHeader), 8)
	require.ErrorIs(t, err, ErrTooLarge)
}
