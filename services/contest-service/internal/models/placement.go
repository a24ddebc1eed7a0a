package models

// Placement is a rank on a ballot or podium.
type Placement int

const (
	FirstPlace Placement = iota + 1
	SecondPlace
	ThirdPlace
)

// Placements lists ranks in ballot order.
var Placements = [3]Placement{FirstPlace, SecondPlace, ThirdPlace}

// Points is the score a submission earns for one vote in this placement.
func (p Placement) Points() int64 {
	switch p {
	case FirstPlace:
		return 5
	case SecondPlace:
		return 3
	case ThirdPlace:
		return 1
	}
	return 0
}

// VoteColumn is the submissions counter incremented for this placement.
func (p Placement) VoteColumn() string {
	switch p {
	case FirstPlace:
		return "first_place_votes"
	case SecondPlace:
		return "second_place_votes"
	case ThirdPlace:
		return "third_place_votes"
	}
	return ""
}

// WinColumn is the users counter incremented when a period closes.
func (p Placement) WinColumn() string {
	switch p {
	case FirstPlace:
		return "first_place_wins"
	case SecondPlace:
		return "second_place_wins"
	case ThirdPlace:
		return "third_place_wins"
	}
	return ""
}

func (p Placement) String() string {
	switch p {
	case FirstPlace:
		return "first"
	case SecondPlace:
		return "second"
	case ThirdPlace:
		return "third"
	}
	return "none"
}

// ScoreDelta is one in-row increment applied when a vote is recorded.
type ScoreDelta struct {
	SubmissionID uint64
	Placement    Placement
}

// Points of the delta.
func (d ScoreDelta) Points() int64 {
	return d.Placement.Points()
}
