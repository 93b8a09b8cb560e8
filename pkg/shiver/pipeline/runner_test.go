package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunnerSequentialKeepsOrder(t *testing.T) {
	var order []string
	var percents []int
	ids := []string{"a", "b", "c", "d"}

	rep := Runner{}.Run(context.Background(), StageParse, ids, func(_ context.Context, id string) error {
		order = append(order, id)
		if id == "b" {
			return errors.New("bad item")
		}
		return nil
	}, func(p Progress) { percents = append(percents, p.Percent()) })

	assert.Equal(t, ids, order)
	assert.Equal(t, []int{25, 50, 75, 100}, percents)
	assert.Equal(t, []string{"a", "c", "d"}, rep.Succeeded())
	require.Len(t, rep.Failed(), 1)
	assert.Equal(t, "b", rep.Failed()[0].ID)
	assert.ErrorContains(t, rep.Err(), "b: bad item")
}

func TestRunnerParallelIsBounded(t *testing.T) {
	const n, limit = 40, 4
	var running, peak int32
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%02d", i)
	}

	var calls int32
	rep := Runner{Concurrency: limit}.Run(context.Background(), StageMap, ids, func(_ context.Context, id string) error {
		cur := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&running, -1)
		atomic.AddInt32(&calls, 1)
		if id == "id-07" {
			return errors.New("boom")
		}
		return nil
	}, nil)

	assert.EqualValues(t, n, calls)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(limit))
	require.Len(t, rep.Outcomes, n)
	for i, o := range rep.Outcomes {
		assert.Equal(t, ids[i], o.ID, "outcomes must stay in input order")
	}
	assert.Len(t, rep.Failed(), 1)
}

func TestRunnerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rep := Runner{}.Run(ctx, StageSave, []string{"a", "b", "c"}, func(_ context.Context, id string) error {
		if id == "a" {
			cancel()
		}
		return nil
	}, nil)

	assert.True(t, rep.Outcomes[0].OK())
	for _, o := range rep.Outcomes[1:] {
		assert.ErrorIs(t, o.Err, context.Canceled)
		assert.NotEmpty(t, o.ID)
	}
}

func TestProgressPercentEmpty(t *testing.T) {
	assert.Equal(t, 100, Progress{}.Percent())
	assert.Equal(t, 33, Progress{Done: 1, Total: 3}.Percent())
}
