package texture

import (
	"bytes"
	"fmt"
	"image"
	"path"
	"strings"

	// Formats item images commonly ship in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Decode decodes item image bytes. ref is the image reference the bytes came
// from; its extension selects the TGA decoder, everything else is sniffed.
func Decode(data []byte, ref string) (image.Image, error) {
	if strings.EqualFold(path.Ext(refPath(ref)), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ref, err)
	}
	return img, nil
}

// refPath strips a query string or fragment from a reference.
func refPath(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

