package opencv

import (
	"fmt"

	"twinview/internal/raster"

	"gocv.io/x/gocv"
)

// depthMask extracts the per-sample depth from a MatType (CV_MAT_DEPTH).
const depthMask = 7

func validateMat(mat *gocv.Mat, path string) error {
	if mat.Empty() {
		return fmt.Errorf("OpenCV could not read %s", path)
	}
	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d", mat.Cols(), mat.Rows())
	}
	return nil
}

// sampleKind maps the Mat depth onto a raster sample kind. Signed integer
// depths are outside the supported set.
func sampleKind(matType gocv.MatType) (raster.SampleKind, error) {
	switch gocv.MatType(int(matType) & depthMask) {
	case gocv.MatTypeCV8U:
		return raster.Uint8, nil
	case gocv.MatTypeCV16U:
		return raster.Uint16, nil
	case gocv.MatTypeCV32F:
		return raster.Float32, nil
	case gocv.MatTypeCV64F:
		return raster.Float64, nil
	default:
		return 0, fmt.Errorf("%w: %s", raster.ErrUnsupportedShape, depthName(matType))
	}
}

func depthName(matType gocv.MatType) string {
	switch gocv.MatType(int(matType) & depthMask) {
	case gocv.MatTypeCV8S:
		return "8-bit signed samples"
	case gocv.MatTypeCV16S:
		return "16-bit signed samples"
	case gocv.MatTypeCV32S:
		return "32-bit signed samples"
	default:
		return fmt.Sprintf("unknown Mat type %d", int(matType))
	}
}
