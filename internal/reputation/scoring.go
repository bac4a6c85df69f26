package reputation

import "fmt"

// Ballot is one settled vote.
type Ballot struct {
	Voter     string
	Candidate string
}

// Round is what a scoring policy sees of a settled room.
type Round struct {
	Members []string
	Winner  string
	Ballots []Ballot
}

// Scoring turns a settled round into reputation deltas, at most one per actor.
type Scoring interface {
	Name() string
	Score(r Round) []Delta
}

const (
	PolicyParticipation = "participation"
	PolicyVoterAccuracy = "voter_accuracy"
)

// Participation credits every member and gives the winner a bonus on top.
type Participation struct {
	MemberCredit int64
	WinnerBonus  int64
}

// DefaultParticipation credits members +1 and the winner +2 more.
func DefaultParticipation() Participation {
	return Participation{MemberCredit: 1, WinnerBonus: 2}
}

func (p Participation) Name() string { return PolicyParticipation }

func (p Participation) Score(r Round) []Delta {
	deltas := make([]Delta, 0, len(r.Members))
	for _, m := range r.Members {
		change := p.MemberCredit
		if m == r.Winner {
			change += p.WinnerBonus
		}
		deltas = append(deltas, Delta{Actor: m, Change: change})
	}
	return deltas
}

// VoterAccuracy scores each voter by whether they voted for the eventual winner.
// Members who did not vote are left unchanged.
type VoterAccuracy struct {
	Correct int64
	Wrong   int64
}

// DefaultVoterAccuracy rewards a correct vote with +1 and penalises a wrong one with -1.
func DefaultVoterAccuracy() VoterAccuracy {
	return VoterAccuracy{Correct: 1, Wrong: -1}
}

func (v VoterAccuracy) Name() string { return PolicyVoterAccuracy }

func (v VoterAccuracy) Score(r Round) []Delta {
	deltas := make([]Delta, 0, len(r.Ballots))
	for _, b := range r.Ballots {
		change := v.Wrong
		if b.Candidate == r.Winner {
			change = v.Correct
		}
		deltas = append(deltas, Delta{Actor: b.Voter, Change: change})
	}
	return deltas
}

// Admission gates joins on reputation. A zero Admission admits everyone.
type Admission struct {
	Enabled      bool
	BanThreshold int64
}

// DefaultBanThreshold is the lowest score still admitted when admission is enabled.
const DefaultBanThreshold = -3

// Admits reports whether an actor with the given score may join a room.
func (a Admission) Admits(score int64) bool {
	return !a.Enabled || score >= a.BanThreshold
}

// PolicyConfig selects and parameterises a scoring policy.
type PolicyConfig struct {
	Policy       string
	MemberCredit int64
	WinnerBonus  int64
	CorrectVote  int64
	WrongVote    int64
}

// NewScoring builds the policy named by cfg.Policy; an empty name selects
// participation scoring.
func NewScoring(cfg PolicyConfig) (Scoring, error) {
	switch cfg.Policy {
	case "", PolicyParticipation:
		return Participation{MemberCredit: cfg.MemberCredit, WinnerBonus: cfg.WinnerBonus}, nil
	case PolicyVoterAccuracy:
		return VoterAccuracy{Correct: cfg.CorrectVote, Wrong: cfg.WrongVote}, nil
	default:
		return nil, fmt.Errorf("reputation: unknown policy %q", cfg.Policy)
	}
}
