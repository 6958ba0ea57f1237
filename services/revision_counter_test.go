package services

import (
	"testing"

	"certification-portal-api/models"

	"github.com/stretchr/testify/assert"
)

func TestIsFreeRevisionBoundary(t *testing.T) {
	cases := []struct {
		name    string
		current int
		max     int
		free    bool
	}{
		{"first revision under quota", 0, 2, true},
		{"second revision under quota", 1, 2, true},
		{"third revision over quota", 2, 2, false},
		{"far past quota", 5, 2, false},
		{"zero quota charges immediately", 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := models.Application{RevisionCountCurrent: tc.current, MaxFreeRevisions: tc.max}
			assert.Equal(t, tc.free, IsFreeRevision(app))
		})
	}
}

func TestOnRevisionRequestedIncrementsByOne(t *testing.T) {
	app := models.Application{RevisionCountCurrent: 1, MaxFreeRevisions: 2}

	updated := OnRevisionRequested(app)
	assert.Equal(t, 2, updated.RevisionCountCurrent)

	// The input value is untouched; the count only ever grows.
	assert.Equal(t, 1, app.RevisionCountCurrent)

	updated = OnRevisionRequested(updated)
	assert.Equal(t, 3, updated.RevisionCountCurrent)
}
