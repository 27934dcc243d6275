package domain

import "context"

// RunRepository archives finished runs.
type RunRepository interface {
	SaveRun(ctx context.Context, rec *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

// PriceSeriesRepository provides stored market prices for replay.
type PriceSeriesRepository interface {
	SavePriceSeries(ctx context.Context, series string, points []PricePoint) error
	LoadPriceSeries(ctx context.Context, series string) ([]PricePoint, error)
}
