package render

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/driveeasy/reportkit/pdf"
)

// Photo failure stages. The gallery maps each to its placeholder line;
// none of them ever aborts the render.
var (
	errPhotoNotFound = errors.New("photo file not found")
	errPhotoDecode   = errors.New("photo not decodable")
)

var (
	jpegMagic = []byte{0xFF, 0xD8}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
)

// resolvePhotoPath maps an image reference to a local file path. Accepted
// forms: absolute URL (path component is taken), root-relative upload
// path, and bare filename (assumed to live in the accidents subdir).
// Resolution itself never fails; a nonsense reference simply points at a
// file that does not exist.
func (r *Renderer) resolvePhotoPath(imageURL string) string {
	p := imageURL
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		if u, err := url.Parse(p); err == nil {
			p = u.Path
		}
	}
	switch {
	case strings.HasPrefix(p, "/uploads/"):
		return filepath.Join(r.uploadRoot, filepath.FromSlash(strings.TrimPrefix(p, "/uploads/")))
	case strings.HasPrefix(p, "uploads/"):
		return filepath.Join(r.uploadRoot, filepath.FromSlash(strings.TrimPrefix(p, "uploads/")))
	default:
		return filepath.Join(r.uploadRoot, r.accidentsDir, filepath.FromSlash(p))
	}
}

// loadPhoto resolves, reads, and decodes one photo reference.
func (r *Renderer) loadPhoto(imageURL string) (*pdf.Image, error) {
	path := r.resolvePhotoPath(imageURL)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errPhotoNotFound, path)
	}
	img, err := decodeImage(imageURL, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errPhotoDecode, err)
	}
	return img, nil
}

// decodeImage picks a decoder from the file extension, falling back to
// magic-byte sniffing, defaulting to JPEG. On failure it tries the other
// decoder once before giving up.
func decodeImage(ref string, data []byte) (*pdf.Image, error) {
	primary := pdf.DecodeJPEG
	alternate := pdf.DecodePNG

	switch strings.ToLower(filepath.Ext(ref)) {
	case ".jpg", ".jpeg":
	case ".png":
		primary, alternate = alternate, primary
	default:
		// Sniff the header; JPEG magic or anything unrecognized keeps the
		// JPEG-first order.
		if !bytes.HasPrefix(data, jpegMagic) && bytes.HasPrefix(data, pngMagic) {
			primary, alternate = alternate, primary
		}
	}

	img, err := primary(data)
	if err == nil {
		return img, nil
	}
	if img, altErr := alternate(data); altErr == nil {
		return img, nil
	}
	return nil, err
}

// scaleToBox fits image dimensions into the gallery bounding box while
// preserving aspect ratio: constrain by width first, then by height.
func scaleToBox(width, height int) (float64, float64) {
	w := photoMaxWidth
	h := float64(height) * photoMaxWidth / float64(width)
	if h > photoMaxHeight {
		h = photoMaxHeight
		w = float64(width) * photoMaxHeight / float64(height)
	}
	return w, h
}

// placeholderFor translates a photo failure into its one-line stand-in.
func placeholderFor(err error) string {
	switch {
	case errors.Is(err, errPhotoNotFound):
		return "[Photo file not found]"
	case errors.Is(err, errPhotoDecode):
		return "[Photo not available]"
	default:
		return "[Photo loading error]"
	}
}
