package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
)

func validDraft() Draft {
	return Draft{
		Title:              "Beach Cleanup",
		Location:           "Juhu, Mumbai",
		Date:               time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC),
		RequiredVolunteers: 2,
		Category:           "Environment",
		Causes:             []string{"Oceans", " oceans ", "Plastic"},
	}
}

func TestNewEvent(t *testing.T) {
	now := time.Now()

	t.Run("opens with empty attendee set", func(t *testing.T) {
		e, err := NewEvent(id.NewEventID(), id.NewOrganizationID(), validDraft(), now)
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, e.Status)
		assert.Empty(t, e.Attendees)
		assert.Equal(t, []string{"Oceans", "Plastic"}, e.Causes)
	})

	invalid := map[string]func(d *Draft){
		"zero capacity":     func(d *Draft) { d.RequiredVolunteers = 0 },
		"negative capacity": func(d *Draft) { d.RequiredVolunteers = -3 },
		"blank title":       func(d *Draft) { d.Title = "  " },
		"blank location":    func(d *Draft) { d.Location = "" },
		"missing date":      func(d *Draft) { d.Date = time.Time{} },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			d := validDraft()
			mutate(&d)
			_, err := NewEvent(id.NewEventID(), id.NewOrganizationID(), d, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestAttendeeSetSemantics(t *testing.T) {
	e, err := NewEvent(id.NewEventID(), id.NewOrganizationID(), validDraft(), time.Now())
	require.NoError(t, err)
	v := id.NewAccountID()

	assert.True(t, e.AddAttendee(v))
	assert.False(t, e.AddAttendee(v), "second add is a no-op")
	assert.Len(t, e.Attendees, 1)
	assert.Equal(t, 1, e.RemainingCapacity())

	assert.True(t, e.RemoveAttendee(v))
	assert.False(t, e.RemoveAttendee(v), "second remove is a no-op")
	assert.Empty(t, e.Attendees)
}

func TestRemainingCapacityNeverNegative(t *testing.T) {
	d := validDraft()
	d.RequiredVolunteers = 2
	e, err := NewEvent(id.NewEventID(), id.NewOrganizationID(), d, time.Now())
	require.NoError(t, err)

	for range 3 {
		e.AddAttendee(id.NewAccountID())
	}
	assert.Len(t, e.Attendees, 3)
	assert.Equal(t, 0, e.RemainingCapacity())
}

func TestMatching(t *testing.T) {
	e, err := NewEvent(id.NewEventID(), id.NewOrganizationID(), validDraft(), time.Now())
	require.NoError(t, err)

	assert.True(t, e.MatchesText("mumbai"))
	assert.True(t, e.MatchesText("BEACH"))
	assert.True(t, e.MatchesText(""))
	assert.False(t, e.MatchesText("delhi"))

	assert.True(t, e.MatchesCause("environment"), "category match")
	assert.True(t, e.MatchesCause("plastic"), "cause tag match")
	assert.False(t, e.MatchesCause("plast"), "tags match whole values")
}
