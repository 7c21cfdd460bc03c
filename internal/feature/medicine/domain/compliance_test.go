package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicine_backend/internal/feature/medicine/domain/entity"
)

func TestComputeCompliance(t *testing.T) {
	t.Parallel()

	at := date(2026, 10, 1)
	ev := func(taken bool) entity.IntakeEvent { return entity.IntakeEvent{Date: at, Taken: taken} }

	tests := []struct {
		name string
		log  []entity.IntakeEvent
		want Compliance
	}{
		{"empty log", nil, Compliance{}},
		{"all taken", []entity.IntakeEvent{ev(true), ev(true), ev(true)}, Compliance{Total: 3, Taken: 3, Missed: 0, Percent: 100}},
		{"none taken", []entity.IntakeEvent{ev(false), ev(false)}, Compliance{Total: 2, Taken: 0, Missed: 2, Percent: 0}},
		{"two of three rounds to 67", []entity.IntakeEvent{ev(true), ev(false), ev(true)}, Compliance{Total: 3, Taken: 2, Missed: 1, Percent: 67}},
		{"one of three rounds to 33", []entity.IntakeEvent{ev(true), ev(false), ev(false)}, Compliance{Total: 3, Taken: 1, Missed: 2, Percent: 33}},
		{"half", []entity.IntakeEvent{ev(true), ev(false)}, Compliance{Total: 2, Taken: 1, Missed: 1, Percent: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ComputeCompliance(tt.log))
		})
	}
}

func TestNewestFirst(t *testing.T) {
	t.Parallel()

	log := []entity.IntakeEvent{
		{Date: date(2026, 10, 1), Taken: true},
		{Date: date(2026, 10, 3), Taken: true},
		{Date: date(2026, 10, 2), Taken: false},
	}
	original := append([]entity.IntakeEvent(nil), log...)

	sorted := NewestFirst(log)

	require.Len(t, sorted, 3)
	assert.Equal(t, date(2026, 10, 3), sorted[0].Date)
	assert.Equal(t, date(2026, 10, 2), sorted[1].Date)
	assert.Equal(t, date(2026, 10, 1), sorted[2].Date)
	assert.Equal(t, original, log, "stored order must not be mutated")
}

func TestNewestFirst_EqualTimestampsPutLaterInsertFirst(t *testing.T) {
	t.Parallel()

	at := date(2026, 10, 1).Add(8 * time.Hour)
	log := []entity.IntakeEvent{{Date: at, Taken: false}, {Date: at, Taken: true}}

	sorted := NewestFirst(log)

	assert.True(t, sorted[0].Taken)
	assert.False(t, sorted[1].Taken)
}

func TestNewestFirst_EmptyIsNotNil(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, NewestFirst(nil))
	assert.Empty(t, NewestFirst(nil))
}
