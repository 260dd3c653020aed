// Package barcode extracts EAN-13 codes (ISBN barcodes) from photos.
package barcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// ErrNoBarcode is returned when the image holds no decodable barcode.
var ErrNoBarcode = errors.New("no barcode detected")

type Decoder struct {
	reader gozxing.Reader
}

func NewDecoder() *Decoder {
	return &Decoder{reader: oned.NewEAN13Reader()}
}

// Decode reads the first EAN-13 code out of JPEG or PNG bytes.
func (d *Decoder) Decode(img []byte) (string, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(decoded)
	if err != nil {
		return "", fmt.Errorf("preparing bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := d.reader.Decode(bmp, hints)
	if err != nil {
		return "", ErrNoBarcode
	}
	return result.GetText(), nil
}
