package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"logwatch/pkg/models"
)

func TestNextTransitions(t *testing.T) {
	const ref = int64(42)
	tests := []struct {
		name    string
		current models.AlertState
		high    bool
		want    models.AlertState
	}{
		{"inactive high", models.Inactive{}, true, models.Onset{Start: ref}},
		{"inactive low", models.Inactive{}, false, models.Inactive{}},
		{"onset high", models.Onset{Start: 1}, true, models.Sustained{}},
		{"onset low", models.Onset{Start: 1}, false, models.Recovering{End: ref}},
		{"sustained high", models.Sustained{}, true, models.Sustained{}},
		{"sustained low", models.Sustained{}, false, models.Recovering{End: ref}},
		{"recovering high", models.Recovering{End: 1}, true, models.Onset{Start: ref}},
		{"recovering low", models.Recovering{End: 1}, false, models.Inactive{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.current, tt.high, ref))
		})
	}
}

func TestStateMachineThresholdIsInclusive(t *testing.T) {
	m := NewStateMachine(2)
	assert.Equal(t, models.Inactive{}, m.State())
	assert.Equal(t, models.Inactive{}, m.Advance(1.99, 10))
	assert.Equal(t, models.Onset{Start: 11}, m.Advance(2, 11))
	assert.Equal(t, models.Sustained{}, m.Advance(2, 12))
	assert.Equal(t, models.Recovering{End: 13}, m.Advance(1.5, 13))
	assert.Equal(t, models.Inactive{}, m.Advance(0, 14))
}

type bogusState struct{ models.AlertState }

func (bogusState) Name() string { return "bogus" }

func TestNextPanicsOnUnknownState(t *testing.T) {
	assert.Panics(t, func() { Next(bogusState{}, true, 0) })
}
