package storage

import (
	"mm_game/internal/domain"
)

// RunMeta is the configuration context archived next to a result.
type RunMeta struct {
	Seed           int64
	MatchingPolicy string
	MarketProcess  string
	TotalDays      int
	LogPath        string
}

// RecordFromResult flattens a RunResult for archiving.
func RecordFromResult(res *domain.RunResult, meta RunMeta) *domain.RunRecord {
	rec := &domain.RunRecord{
		ID:             res.RunID,
		Strategy:       res.Strategy,
		Seed:           meta.Seed,
		MatchingPolicy: meta.MatchingPolicy,
		MarketProcess:  meta.MarketProcess,
		TotalDays:      meta.TotalDays,
		DaysSimulated:  res.Days,
		FinalCash:      res.FinalCash.String(),
		FinalInventory: res.FinalInventory,
		MarkToMarket:   res.MarkToMarketPnL.String(),
		FaultCount:     res.FaultCount(),
		Partial:        res.Partial,
		Failed:         res.Failed,
		FailedDay:      res.FailedDay,
		Error:          res.Err,
		LogPath:        meta.LogPath,
		Fills:          make([]domain.FillRow, len(res.Fills)),
	}
	for i, f := range res.Fills {
		rec.Fills[i] = domain.FillRow{
			RunID: res.RunID,
			Seq:   i,
			Day:   f.Day,
			Side:  string(f.Side),
			Price: f.Price.String(),
			Size:  f.Size,
		}
	}
	return rec
}
