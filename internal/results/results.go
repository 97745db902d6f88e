package results

import (
	"context"
	"time"
)

// Match is one finished game: ranking[0] won.
type Match struct {
	Code       string    `json:"code"`
	Ranking    []string  `json:"ranking"`
	FinishedAt time.Time `json:"finishedAt"`
}

type Recorder interface {
	Record(ctx context.Context, m Match) error
}

type Store interface {
	Recorder
	Recent(ctx context.Context, limit int) ([]Match, error)
	Close() error
}
