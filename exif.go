package galleria

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// orientationSwapsDims reports whether the EXIF orientation of the
// image at path is a quarter turn, so decoding with auto-orientation
// swaps its width and height. Values 5 through 8 are the transposed
// and rotated ones.
func orientationSwapsDims(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return false
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return false
	}
	o, err := tag.Int(0)
	if err != nil {
		return false
	}
	return o >= 5 && o <= 8
}

// probeTakenAt returns the EXIF capture time of the image at path, or
// the zero time when the file carries no usable EXIF data. EXIF is
// strictly optional, so all errors are swallowed here.
func probeTakenAt(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}
	}
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}
	}
	return t
}
