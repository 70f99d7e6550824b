package cricketdata

type seriesInfoEnvelope struct {
	Status string         `json:"status"`
	Data   seriesInfoData `json:"data"`
}

type seriesInfoData struct {
	Info      seriesInfo       `json:"info"`
	MatchList []matchListEntry `json:"matchList"`
}

type seriesInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type matchListEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Venue       string   `json:"venue"`
	Date        string   `json:"date"`
	DateTimeGMT string   `json:"dateTimeGMT"`
	Teams       []string `json:"teams"`
	MatchEnded  bool     `json:"matchEnded"`
}

type scorecardEnvelope struct {
	Status string        `json:"status"`
	Data   scorecardData `json:"data"`
}

type scorecardData struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Status    string           `json:"status"`
	Scorecard []inningsPayload `json:"scorecard"`
}

type inningsPayload struct {
	Inning   string          `json:"inning"`
	Batting  []battingEntry  `json:"batting"`
	Bowling  []bowlingEntry  `json:"bowling"`
	Catching []catchingEntry `json:"catching"`
}

type namedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type battingEntry struct {
	Batsman       namedRef `json:"batsman"`
	DismissalText string   `json:"dismissal-text"`
	Runs          int      `json:"r"`
	Balls         int      `json:"b"`
	Fours         int      `json:"4s"`
	Sixes         int      `json:"6s"`
}

type bowlingEntry struct {
	Bowler  namedRef `json:"bowler"`
	Overs   float64  `json:"o"`
	Runs    int      `json:"r"`
	Wickets int      `json:"w"`
}

type catchingEntry struct {
	Catcher namedRef `json:"catcher"`
	Catches int      `json:"catch"`
	Stumped int      `json:"stumped"`
}
