package barcode

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ean13PNG(t *testing.T, code string) []byte {
	t.Helper()
	writer := oned.NewEAN13Writer()
	img, err := writer.Encode(code, gozxing.BarcodeFormat_EAN_13, 400, 200, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeEAN13(t *testing.T) {
	const isbn = "9780441013593"
	d := NewDecoder()

	code, err := d.Decode(ean13PNG(t, isbn))
	require.NoError(t, err)
	assert.Equal(t, isbn, code)
}

func TestDecodeBlankImage(t *testing.T) {
	d := NewDecoder()

	blank := image.NewRGBA(image.Rect(0, 0, 200, 100))
	draw.Draw(blank, blank.Bounds(), image.White, image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, blank))

	_, err := d.Decode(buf.Bytes())
	assert.ErrorIs(t, err, ErrNoBarcode)
}

func TestDecodeGarbageBytes(t *testing.T) {
	d := NewDecoder()
	_, err := d.Decode([]byte("not an image at all"))
	assert.Error(t, err)
}
