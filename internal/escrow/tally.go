package escrow

// Tally counts one vote per voter for a room.
type Tally struct {
	ballots []Ballot
	voted   map[Actor]struct{}
	counts  map[Actor]int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		voted:  make(map[Actor]struct{}),
		counts: make(map[Actor]int),
	}
}

// Cast records voter's vote for candidate. It returns false, leaving the tally
// unchanged, when voter has already voted.
func (t *Tally) Cast(voter, candidate Actor) bool {
	if t.HasVoted(voter) {
		return false
	}
	t.voted[voter] = struct{}{}
	t.counts[candidate]++
	t.ballots = append(t.ballots, Ballot{Voter: voter, Candidate: candidate})
	return true
}

// HasVoted reports whether voter has a recorded vote.
func (t *Tally) HasVoted(voter Actor) bool {
	_, ok := t.voted[voter]
	return ok
}

// Votes returns the number of votes cast for candidate.
func (t *Tally) Votes(candidate Actor) int {
	return t.counts[candidate]
}

// Ballots returns the recorded votes in casting order.
func (t *Tally) Ballots() []Ballot {
	out := make([]Ballot, len(t.ballots))
	copy(out, t.ballots)
	return out
}

// HasMajority reports whether votes is a strict majority of active players.
func HasMajority(votes, active int) bool {
	return votes*2 > active
}
