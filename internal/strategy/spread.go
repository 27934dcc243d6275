package strategy

import (
	"math"

	"mm_game/internal/domain"
)

// SpreadMaker quotes symmetrically around a rolling fair value.
// Fair value is the mean of the last `window` market mids; the half spread
// widens with the mean absolute day-over-day mid move, never going below
// minHalfSpread. It is stateful and deterministic.
// Uses a fixed-size ring buffer so Update does not allocate.
type SpreadMaker struct {
	window        int
	size          int64
	minHalfSpread float64
	volMult       float64

	// State (Ring Buffer)
	mids    []float64
	head    int     // Current write position
	count   int     // Number of elements filled
	sum     float64 // Running sum of mids in the buffer
	moveSum float64 // Running sum of |mid - prevMid| in the buffer
	moves   []float64
	prevMid float64
}

// NewSpreadMaker creates a new instance.
func NewSpreadMaker(window int, size int64, minHalfSpread, volMult float64) *SpreadMaker {
	if window <= 0 {
		panic("SpreadMaker: window must be positive")
	}
	return &SpreadMaker{
		window:        window,
		size:          sizeOrDefault(size),
		minHalfSpread: minHalfSpread,
		volMult:       volMult,
		mids:          make([]float64, window), // Fixed size allocation
		moves:         make([]float64, window),
	}
}

// Update records yesterday's mid and quotes around the rolling fair value.
func (s *SpreadMaker) Update(prevBuy, prevSell float64) domain.Quote {
	mid := (prevBuy + prevSell) / 2

	var move float64
	if s.count > 0 {
		move = math.Abs(mid - s.prevMid)
	}
	s.prevMid = mid

	// If full, drop the oldest value before overwriting
	if s.count == s.window {
		s.sum -= s.mids[s.head]
		s.moveSum -= s.moves[s.head]
	}

	s.mids[s.head] = mid
	s.moves[s.head] = move
	s.sum += mid
	s.moveSum += move

	s.head = (s.head + 1) % s.window
	if s.count < s.window {
		s.count++
	}

	fair := s.sum / float64(s.count)
	half := math.Max(s.minHalfSpread, s.volMult*s.moveSum/float64(s.count))

	bid := fair - half
	if bid < 0 {
		bid = 0
	}
	return domain.Quote{
		BidPrice: bid,
		BidSize:  s.size,
		AskPrice: fair + half,
		AskSize:  s.size,
	}
}

// FairValue returns the current rolling mean of observed mids.
func (s *SpreadMaker) FairValue() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}
