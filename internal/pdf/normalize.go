package pdf

import "github.com/ppiankov/pitchcheck/internal/model"

// NormalizeBox maps a box in page points (page width w, height h) onto the
// 900x1600 canvas. The box is clamped to the page first.
func NormalizeBox(raw model.Box, w, h float64) model.Box {
	if w <= 0 || h <= 0 {
		return model.Box{}
	}
	raw = clampBox(raw, w, h)
	return model.Box{
		X0: raw.X0 / w * model.CanvasWidth,
		Y0: raw.Y0 / h * model.CanvasHeight,
		X1: raw.X1 / w * model.CanvasWidth,
		Y1: raw.Y1 / h * model.CanvasHeight,
	}
}

// DenormalizeBox is the inverse of NormalizeBox for boxes inside the page
func DenormalizeBox(norm model.Box, w, h float64) model.Box {
	return model.Box{
		X0: norm.X0 / model.CanvasWidth * w,
		Y0: norm.Y0 / model.CanvasHeight * h,
		X1: norm.X1 / model.CanvasWidth * w,
		Y1: norm.Y1 / model.CanvasHeight * h,
	}
}

func clampBox(b model.Box, w, h float64) model.Box {
	return model.Box{
		X0: clamp(b.X0, 0, w),
		Y0: clamp(b.Y0, 0, h),
		X1: clamp(b.X1, 0, w),
		Y1: clamp(b.Y1, 0, h),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
