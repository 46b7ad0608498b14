package pool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMapPreservesOrder(t *testing.T) {
	inputs := make([]int, 50)
	for i := range inputs {
		inputs[i] = i
	}

	out, err := Map(context.Background(), 8, inputs, func(_ context.Context, idx int, in int) (int, error) {
		// Finish later jobs first to exercise out-of-order completion.
		time.Sleep(time.Duration(50-idx) * time.Microsecond)
		return in * in, nil
	})
	require.NoError(t, err)
	require.Len(t, out, 50)
	for i, v := range out {
		require.Equal(t, i*i, v)
	}
}

func TestMapEmptyInput(t *testing.T) {
	out, err := Map(context.Background(), 4, nil, func(_ context.Context, _ int, in int) (int, error) {
		return in, nil
	})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestMapFirstErrorFailsBatch(t *testing.T) {
	boom := errors.New("boom")
	inputs := make([]int, 100)
	_, err := Map(context.Background(), 4, inputs, func(_ context.Context, idx int, _ int) (int, error) {
		if idx == 42 {
			return 0, boom
		}
		return idx, nil
	})
	require.ErrorIs(t, err, boom)
}

func TestMapRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := make([]int, 10)
	_, err := Map(ctx, 2, inputs, func(ctx context.Context, idx int, _ int) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Second):
			return idx, nil
		}
	})
	require.Error(t, err)
}
