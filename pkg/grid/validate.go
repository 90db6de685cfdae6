package grid

import (
	"fmt"
	"math"
)

// Severity classifies how far an image deviates from a layout's nominal
// dimensions. Advisories never block an export.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInfo
	SeverityCaution
	SeverityStrong
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "ok"
	case SeverityInfo:
		return "info"
	case SeverityCaution:
		return "caution"
	case SeverityStrong:
		return "warning"
	default:
		return "unknown"
	}
}

// Advisory is the result of comparing an image against a layout.
type Advisory struct {
	Severity  Severity
	Tolerance float64 // max relative deviation across both axes
	Message   string
}

// Tolerance tier thresholds on the maximum relative deviation.
const (
	tierExact   = 0.02
	tierMinor   = 0.05
	tierCaution = 0.15
)

// Validate compares the actual image dimensions against a layout's nominal
// dimensions. Orientation is normalized by comparing long side to long side
// and short side to short side, so a rotated upload is not penalized.
func Validate(actualWidth, actualHeight int, spec Spec) Advisory {
	longActual, shortActual := longShort(actualWidth, actualHeight)
	longExpected, shortExpected := longShort(spec.ExpectedWidthPx, spec.ExpectedHeightPx)

	widthTol := math.Abs(longActual-longExpected) / longExpected
	heightTol := math.Abs(shortActual-shortExpected) / shortExpected
	tol := math.Max(widthTol, heightTol)

	layout := fmt.Sprintf("%dx%d", spec.Rows, spec.Cols)
	pct := tol * 100

	switch {
	case tol <= tierExact:
		return Advisory{
			Severity:  SeverityNone,
			Tolerance: tol,
			Message:   fmt.Sprintf("image dimensions match the %s layout", layout),
		}
	case tol <= tierMinor:
		return Advisory{
			Severity:  SeverityInfo,
			Tolerance: tol,
			Message:   fmt.Sprintf("image differs from the %s layout by %.1f%%; minor difference, splitting will work perfectly", layout, pct),
		}
	case tol <= tierCaution:
		return Advisory{
			Severity:  SeverityCaution,
			Tolerance: tol,
			Message:   fmt.Sprintf("image differs from the %s layout by %.1f%%; tiles may not be print-optimal", layout, pct),
		}
	default:
		return Advisory{
			Severity:  SeverityStrong,
			Tolerance: tol,
			Message:   fmt.Sprintf("image differs from the %s layout by %.1f%%; tiles may not fit the printed pages, consider resizing to %dx%d", layout, pct, spec.ExpectedWidthPx, spec.ExpectedHeightPx),
		}
	}
}

func longShort(a, b int) (float64, float64) {
	if a >= b {
		return float64(a), float64(b)
	}
	return float64(b), float64(a)
}
