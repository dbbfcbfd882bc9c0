package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
)

const creator = id.Identity("0xab5801a7d398351b8be11c439e05c5b3259aec9b")

func validGig(t *testing.T) *Gig {
	t.Helper()
	gig, err := NewGig(id.NewGigID(), creator,
		"Full Stack Web Development",
		"Build a decentralized application.",
		[]string{"Web Development", "Blockchain Development"},
		id.Wei(2_500_000_000_000_000_000), 0.75, time.Now())
	require.NoError(t, err)
	return gig
}

func TestNewGig_Validation(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name        string
		title       string
		description string
		types       []string
		bounty      id.Wei
		minScore    id.TrustScore
	}{
		{"empty title", "", "desc", []string{"Design"}, 0, 0.5},
		{"empty description", "title", "", []string{"Design"}, 0, 0.5},
		{"no types", "title", "desc", nil, 0, 0.5},
		{"only blank types", "title", "desc", []string{"  ", ""}, 0, 0.5},
		{"negative bounty", "title", "desc", []string{"Design"}, -1, 0.5},
		{"score above one", "title", "desc", []string{"Design"}, 0, 1.5},
		{"score below zero", "title", "desc", []string{"Design"}, 0, -0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGig(id.NewGigID(), creator, tc.title, tc.description, tc.types, tc.bounty, tc.minScore, now)
			require.Error(t, err)
			assert.True(t, derrors.HasCode(err, derrors.CodeValidation))
		})
	}

	t.Run("requires a creator", func(t *testing.T) {
		_, err := NewGig(id.NewGigID(), "", "title", "desc", []string{"Design"}, 0, 0.5, now)
		require.Error(t, err)
	})

	t.Run("dedupes and sorts types", func(t *testing.T) {
		gig, err := NewGig(id.NewGigID(), creator, "title", "desc",
			[]string{"Design", "design", " Blockchain "}, 0, 0.5, now)
		require.NoError(t, err)
		assert.Equal(t, []string{"Blockchain", "Design"}, gig.Types)
	})

	t.Run("new gigs start active", func(t *testing.T) {
		gig := validGig(t)
		assert.True(t, gig.IsActive())
		assert.Equal(t, GigStatusActive, gig.Status)
	})
}

func TestGigDeactivation(t *testing.T) {
	t.Run("active gig can deactivate once", func(t *testing.T) {
		gig := validGig(t)
		require.NoError(t, gig.CanDeactivate())

		gig.ApplyDeactivation(time.Now())
		assert.False(t, gig.IsActive())
	})

	t.Run("inactive gig cannot deactivate again", func(t *testing.T) {
		gig := validGig(t)
		gig.ApplyDeactivation(time.Now())

		err := gig.CanDeactivate()
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvariantViolation))
	})
}

func TestGigFiltering(t *testing.T) {
	gig := validGig(t)

	t.Run("matches query case-insensitively on title and description", func(t *testing.T) {
		assert.True(t, gig.MatchesQuery("full stack"))
		assert.True(t, gig.MatchesQuery("DECENTRALIZED"))
		assert.False(t, gig.MatchesQuery("machine learning"))
		assert.True(t, gig.MatchesQuery(""))
	})

	t.Run("matches type tags case-insensitively", func(t *testing.T) {
		assert.True(t, gig.HasType("web development"))
		assert.False(t, gig.HasType("UI/UX Design"))
	})
}

func TestGigClone(t *testing.T) {
	gig := validGig(t)
	cp := gig.Clone()
	cp.Types[0] = "mutated"
	assert.NotEqual(t, gig.Types[0], cp.Types[0], "clone must not alias the types slice")
}
