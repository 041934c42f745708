package books

import (
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jackzampolin/folio/internal/geometry"
)

// imageSize decodes a page image and returns its size after applying the
// EXIF orientation, which is how the engine will see it.
func imageSize(path string) (geometry.PageSize, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return geometry.PageSize{}, err
	}
	b := img.Bounds()
	return geometry.PageSize{Width: float64(b.Dx()), Height: float64(b.Dy())}, nil
}
