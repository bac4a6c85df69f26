package reputation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	score, err := s.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, score)

	require.NoError(t, s.Apply(ctx, []Delta{{Actor: "a", Change: 3}, {Actor: "b", Change: -1}, {Actor: "c", Change: 0}}))
	require.NoError(t, s.Apply(ctx, []Delta{{Actor: "a", Change: 1}}))

	score, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(4), score)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Actor: "a", Score: 4}, {Actor: "b", Score: -1}}, entries)
}

func TestSortEntriesBreaksTiesByActor(t *testing.T) {
	t.Parallel()
	entries := []Entry{{"z", 1}, {"b", 2}, {"a", 1}, {"c", -5}}
	SortEntries(entries)
	assert.Equal(t, []Entry{{"b", 2}, {"a", 1}, {"z", 1}, {"c", -5}}, entries)
}

func TestParticipation(t *testing.T) {
	t.Parallel()
	deltas := DefaultParticipation().Score(Round{
		Members: []string{"a", "b", "c"},
		Winner:  "b",
		Ballots: []Ballot{{"a", "b"}, {"b", "b"}},
	})
	assert.Equal(t, []Delta{{"a", 1}, {"b", 3}, {"c", 1}}, deltas)
}

func TestVoterAccuracy(t *testing.T) {
	t.Parallel()
	deltas := DefaultVoterAccuracy().Score(Round{
		Members: []string{"a", "b", "c", "d"},
		Winner:  "b",
		Ballots: []Ballot{{"a", "b"}, {"b", "b"}, {"c", "c"}},
	})
	assert.Equal(t, []Delta{{"a", 1}, {"b", 1}, {"c", -1}}, deltas, "non-voters are not scored")

	custom := VoterAccuracy{Correct: 2, Wrong: -5}
	deltas = custom.Score(Round{Winner: "x", Ballots: []Ballot{{"a", "y"}}})
	assert.Equal(t, []Delta{{"a", -5}}, deltas)
}

func TestAdmission(t *testing.T) {
	t.Parallel()
	var open Admission
	assert.True(t, open.Admits(-1000))

	gated := Admission{Enabled: true, BanThreshold: DefaultBanThreshold}
	assert.True(t, gated.Admits(0))
	assert.True(t, gated.Admits(-3))
	assert.False(t, gated.Admits(-4))
}

func TestNewScoring(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     PolicyConfig
		want    Scoring
		wantErr bool
	}{
		{"default", PolicyConfig{MemberCredit: 1, WinnerBonus: 2}, Participation{MemberCredit: 1, WinnerBonus: 2}, false},
		{"participation", PolicyConfig{Policy: PolicyParticipation, MemberCredit: 2}, Participation{MemberCredit: 2}, false},
		{"voter accuracy", PolicyConfig{Policy: PolicyVoterAccuracy, CorrectVote: 1, WrongVote: -2}, VoterAccuracy{Correct: 1, Wrong: -2}, false},
		{"unknown", PolicyConfig{Policy: "karma"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewScoring(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
