package protocol

type ScoreCause string

const (
	ScoreCauseRegular       ScoreCause = "REGULAR"
	ScoreCauseLeft          ScoreCause = "LEFT"
	ScoreCauseRuleViolation ScoreCause = "RULE_VIOLATION"
	ScoreCauseSoftTimeout   ScoreCause = "SOFT_TIMEOUT"
	ScoreCauseHardTimeout   ScoreCause = "HARD_TIMEOUT"
	ScoreCauseUnknown       ScoreCause = "UNKNOWN"
)

type ScoreAggregation string

const (
	ScoreAggregationSum     ScoreAggregation = "SUM"
	ScoreAggregationAverage ScoreAggregation = "AVERAGE"
)

type ScoreFragment struct {
	Name               string           `json:"name"`
	Aggregation        ScoreAggregation `json:"aggregation"`
	RelevantForRanking bool             `json:"relevantForRanking"`
}

type ScoreDefinition []ScoreFragment

type PlayerScore struct {
	Team        Team       `json:"team"`
	DisplayName string     `json:"displayName"`
	Cause       ScoreCause `json:"cause"`
	Reason      string     `json:"reason,omitempty"`
	Values      []int      `json:"values"`
}

// GameResult is sent once per room when the game ends.
// Winners is empty on a draw.
type GameResult struct {
	Definition ScoreDefinition `json:"definition"`
	Scores     []PlayerScore   `json:"scores"`
	Winners    []Team          `json:"winners"`
}

func (r *GameResult) IsDraw() bool {
	return len(r.Winners) == 0
}

func (r *GameResult) ScoreOf(team Team) (PlayerScore, bool) {
	for _, score := range r.Scores {
		if score.Team == team {
			return score, true
		}
	}
	return PlayerScore{}, false
}
