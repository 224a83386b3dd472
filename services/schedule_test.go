package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlapsWithBuffer(t *testing.T) {
	// Existing booking 10:00-12:00; cleanup runs until 12:30.
	existingStart := at(10, 0)
	existingEnd := at(12, 0)

	cases := []struct {
		name     string
		start    time.Time
		end      time.Time
		conflict bool
	}{
		{"same slot", at(10, 0), at(12, 0), true},
		{"contained", at(10, 30), at(11, 0), true},
		{"starts during cleanup", at(12, 29), at(13, 0), true},
		{"starts exactly after cleanup", at(12, 30), at(13, 0), false},
		{"well after", at(14, 0), at(15, 0), false},
		{"ends during cleanup before existing", at(9, 0), at(9, 31), true},
		{"ends exactly a buffer before existing", at(9, 0), at(9, 30), false},
		{"well before", at(7, 0), at(8, 0), false},
		{"spans the whole booking", at(9, 0), at(13, 0), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := overlapsWithBuffer(existingStart, existingEnd, tc.start, tc.end)
			assert.Equal(t, tc.conflict, got)
		})
	}
}

func TestParseDatetimeFormats(t *testing.T) {
	for _, value := range []string{
		"2026-03-14T10:00:00",
		"2026-03-14T10:00",
		"2026-03-14T10:00:00Z",
	} {
		_, err := parseDatetime(value)
		assert.NoError(t, err, value)
	}

	_, err := parseDatetime("14.03.2026 10:00")
	assert.Error(t, err)
}

func TestParseIntervalRejectsBackwardsInterval(t *testing.T) {
	_, _, err := parseInterval("2026-03-14T12:00:00", "2026-03-14T10:00:00")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = parseInterval("2026-03-14T12:00:00", "2026-03-14T12:00:00")
	assert.ErrorIs(t, err, ErrValidation)
}
