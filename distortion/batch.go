package distortion

import (
	"context"

	"github.com/golang/geo/r2"

	"go.viam.com/lensdistort/utils"
)

// cancelCheckInterval is how many points a worker transforms between context checks.
const cancelCheckInterval = 1024

// DistortPoints returns the distorted positions of src, computed in parallel. src is not modified.
func (m *Model) DistortPoints(ctx context.Context, src []r2.Point) ([]r2.Point, error) {
	return transformPoints(ctx, src, m.distort)
}

// UndistortPoints returns the undistorted positions of src, computed in parallel. src is not modified.
func (m *Model) UndistortPoints(ctx context.Context, src []r2.Point) ([]r2.Point, error) {
	return transformPoints(ctx, src, m.undistort)
}

func transformPoints(ctx context.Context, src []r2.Point, f func(x, y float64) (float64, float64)) ([]r2.Point, error) {
	dst := make([]r2.Point, len(src))
	err := utils.ParallelChunks(ctx, len(src), func(ctx context.Context, from, to int) error {
		for i := from; i < to; i++ {
			if (i-from)%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			dst[i].X, dst[i].Y = f(src[i].X, src[i].Y)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}
