package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Position is the running book of the simulated market maker.
// Cash may go negative: the maker trades on credit.
type Position struct {
	Inventory int64           `json:"inventory"`
	Cash      decimal.Decimal `json:"cash"`
	LastDay   int             `json:"last_day"` // Last day that modified this
}

// NewPosition returns a flat position with the given starting cash.
func NewPosition(cash decimal.Decimal) *Position {
	return &Position{Cash: cash, LastDay: -1}
}

// Apply books a fill. Buys add inventory and pay cash, sells do the reverse.
func (p *Position) Apply(f FillRecord) {
	if f.Size < 0 {
		panic(fmt.Sprintf("POSITION_NEGATIVE_FILL: day %d size %d", f.Day, f.Size))
	}
	switch f.Side {
	case SideBuy:
		if p.Inventory > math.MaxInt64-f.Size {
			panic(fmt.Sprintf("POSITION_OVERFLOW: day %d inventory %d buy %d", f.Day, p.Inventory, f.Size))
		}
		p.Inventory += f.Size
		p.Cash = p.Cash.Sub(f.Notional())
	case SideSell:
		if p.Inventory < math.MinInt64+f.Size {
			panic(fmt.Sprintf("POSITION_OVERFLOW: day %d inventory %d sell %d", f.Day, p.Inventory, f.Size))
		}
		p.Inventory -= f.Size
		p.Cash = p.Cash.Add(f.Notional())
	default:
		panic(fmt.Sprintf("POSITION_UNKNOWN_SIDE: %q", f.Side))
	}
	p.LastDay = f.Day
}

// MarkToMarket values the position with inventory priced at ref.
func (p *Position) MarkToMarket(ref decimal.Decimal) decimal.Decimal {
	return p.Cash.Add(ref.Mul(decimal.NewFromInt(p.Inventory)))
}

// Snapshot returns a copy (for logs and results).
func (p *Position) Snapshot() Position {
	return *p
}
