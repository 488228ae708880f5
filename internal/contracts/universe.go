package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Selection is the outcome of one coarse → fine selection cycle
// ⭐ SSOT: selector → host 목표 유니버스 전달
type Selection struct {
	RunID       uuid.UUID      `json:"run_id"`
	Date        time.Time      `json:"date"`
	Threshold   int            `json:"threshold"`
	CoarseCount int            `json:"coarse_count"` // coarse 통과 종목 수
	ScoredCount int            `json:"scored_count"` // F-Score 계산 종목 수
	Symbols     []Symbol       `json:"symbols"`
	Scores      map[Symbol]int `json:"scores"` // 선정 종목의 F-Score
	CreatedAt   time.Time      `json:"created_at"`
}

// Contains checks if a symbol is in the selection
func (s *Selection) Contains(symbol Symbol) bool {
	_, ok := s.Scores[symbol]
	return ok
}

// Count returns the number of selected symbols
func (s *Selection) Count() int {
	return len(s.Symbols)
}
