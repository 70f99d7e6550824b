package usecase

import (
	"context"
	"io"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/rawdata"
)

// SheetPerformanceRow is one tabular row from the performance sheet:
// a player's fantasy-point total in one match, keyed by the spelling the
// sheet uses. Raw keeps the remaining columns by header name.
type SheetPerformanceRow struct {
	Week        int
	MatchID     string
	PlayerName  string
	TotalPoints float64
	Raw         map[string]string
}

// SheetCapHolders lists the orange and purple cap holder names declared by
// the sheet for one week.
type SheetCapHolders struct {
	Week      int
	OrangeCap []string
	PurpleCap []string
}

// SheetSource reads the tabular performance feed. Implementations return the
// raw upstream payload alongside the parsed rows so it can be retained.
type SheetSource interface {
	ListPerformanceRows(ctx context.Context, week int) ([]SheetPerformanceRow, rawdata.Payload, error)
	FetchCapHolders(ctx context.Context, week int) (SheetCapHolders, rawdata.Payload, error)
}

// ExternalMatch is one fixture as described by the cricket data provider.
type ExternalMatch struct {
	Ref      string
	Name     string
	Status   string
	Venue    string
	Teams    []string
	StartsAt *time.Time
	Ended    bool
}

// ExternalPlayerLine is one player's combined batting, bowling and fielding
// line in a scorecard.
type ExternalPlayerLine struct {
	Name string

	Runs       int
	BallsFaced int
	Fours      int
	Sixes      int
	Batted     bool

	Wickets      int
	OversBowled  float64
	RunsConceded int
	Bowled       bool

	Catches   int
	Stumpings int
}

// ExternalScorecard is the collapsed per-player scorecard for one match.
type ExternalScorecard struct {
	MatchRef string
	Name     string
	Status   string
	Lines    []ExternalPlayerLine
}

// MatchDataProvider fetches fixtures and scorecards from the cricket stats
// API.
type MatchDataProvider interface {
	FetchSeriesMatches(ctx context.Context, seriesRef string) ([]ExternalMatch, []rawdata.Payload, error)
	FetchScorecard(ctx context.Context, matchRef string) (ExternalScorecard, rawdata.Payload, error)
}

// JobPublisher enqueues an internal job route for deferred execution.
type JobPublisher interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

// StoredAsset describes an object written to the asset bucket.
type StoredAsset struct {
	Key      string
	Location string
	ETag     string
}

// AssetStore keeps user-supplied assets (avatar images) in an S3-compatible
// bucket.
type AssetStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (StoredAsset, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
