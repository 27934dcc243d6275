package domain

import (
	"time"
)

// RunRecord is the archived summary of one simulation run.
// Money columns hold decimal strings so archived values stay exact.
type RunRecord struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	Strategy       string    `gorm:"index" json:"strategy"`
	Seed           int64     `json:"seed"`
	MatchingPolicy string    `json:"matching_policy"`
	MarketProcess  string    `json:"market_process"`
	TotalDays      int       `json:"total_days"`
	DaysSimulated  int       `json:"days_simulated"`
	FinalCash      string    `json:"final_cash"`
	FinalInventory int64     `json:"final_inventory"`
	MarkToMarket   string    `json:"mtm_pnl"`
	FaultCount     int       `json:"fault_count"`
	Partial        bool      `json:"partial"`
	Failed         bool      `json:"failed"`
	FailedDay      int       `json:"failed_day"`
	Error          string    `json:"error,omitempty"`
	LogPath        string    `json:"log_path"`
	Fills          []FillRow `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"fills,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FillRow is an archived FillRecord.
type FillRow struct {
	ID    uint   `gorm:"primaryKey" json:"-"`
	RunID string `gorm:"index" json:"run_id"`
	Seq   int    `json:"seq"` // Position in the run's fill log
	Day   int    `json:"day"`
	Side  string `json:"side"`
	Price string `json:"price"`
	Size  int64  `json:"size"`
}

// PricePoint is one day of a stored market price series, used for replay.
type PricePoint struct {
	Series string  `gorm:"primaryKey" json:"series"`
	Day    int     `gorm:"primaryKey;autoIncrement:false" json:"day"`
	Buy    float64 `json:"buy"`
	Sell   float64 `json:"sell"`
}
