package contracts

import (
	"context"
	"time"
)

// FundamentalsSource supplies the coarse and fine feeds for a date
// ⭐ SSOT: 펀더멘털 데이터 공급 인터페이스
type FundamentalsSource interface {
	Coarse(ctx context.Context, date time.Time) ([]CoarseFundamental, error)
	Fine(ctx context.Context, date time.Time, symbols []Symbol) ([]FineFundamental, error)
}

// CoarseSelector is the coarse-filter callback registered with the host
type CoarseSelector func(coarse []CoarseFundamental) []Symbol

// FineSelector is the fine-filter callback registered with the host
type FineSelector func(fine []FineFundamental) []Symbol

// SelectionStore persists selection results
type SelectionStore interface {
	Save(ctx context.Context, selection *Selection) error
	Latest(ctx context.Context) (*Selection, error)
}

// SelectionPublisher hands the newest target universe to downstream readers
type SelectionPublisher interface {
	Publish(ctx context.Context, selection *Selection) error
}
