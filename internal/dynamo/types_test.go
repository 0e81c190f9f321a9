package dynamo

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Arithmetic(t *testing.T) {
	a := State{1, 2, 3}
	b := State{4, 5, 6}

	assert.Equal(t, State{5, 7, 9}, a.Add(b))
	assert.Equal(t, State{-3, -3, -3}, a.Sub(b))
	assert.Equal(t, State{2, 4, 6}, a.Scale(2))
	assert.Equal(t, State{0.5, 1, 1.5}, a.Div(2))
	assert.Equal(t, State{-1, -2, -3}, a.Neg())
	assert.Equal(t, State{2.5, 3.5, 4.5}, a.Lerp(b, 0.5))
	assert.InDelta(t, math.Sqrt(14), a.Norm(), 1e-15)

	// inputs are never modified
	assert.Equal(t, State{1, 2, 3}, a)
}

func TestState_AddScaledInPlace(t *testing.T) {
	a := State{1, 1}
	a.AddScaledInPlace(State{2, -2}, 0.5)
	assert.Equal(t, State{2, 0}, a)
}

func TestState_LengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { State{1}.Add(State{1, 2}) })
	assert.Panics(t, func() { State{1}.Lerp(State{}, 0.5) })
}

func TestState_CloneAndValidity(t *testing.T) {
	a := State{1, 2}
	c := a.Clone()
	c[0] = 9
	assert.Equal(t, 1.0, a[0])

	assert.True(t, a.IsValid())
	assert.False(t, State{1, math.NaN()}.IsValid())
	assert.False(t, State{math.Inf(-1)}.IsValid())
}

func TestSimulationError_Unwraps(t *testing.T) {
	err := &SimulationError{Step: 3, Param: 0.25, Wrapped: ErrInvalidState}
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.Contains(t, err.Error(), "step 3")
}

func TestEnsemble_RunsEveryJob(t *testing.T) {
	var calls atomic.Int32
	ens := NewEnsemble(8, 3)

	results, err := ens.Run(context.Background(), func(ctx context.Context, idx int) (*Result, error) {
		calls.Add(1)
		return &Result{StepsTaken: idx}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(8), calls.Load())
	for i, r := range results {
		assert.Equal(t, i, r.StepsTaken)
	}
}

func TestEnsemble_PropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	ens := NewEnsemble(4, 1)

	_, err := ens.Run(context.Background(), func(ctx context.Context, idx int) (*Result, error) {
		if idx == 2 {
			return nil, boom
		}
		return &Result{}, nil
	})
	assert.ErrorIs(t, err, boom)
}
