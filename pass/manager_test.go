package pass_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/jsdeobf/pass"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func noopPass(name string, deps ...string) *pass.Pass {
	return &pass.Pass{
		Name:         name,
		Dependencies: deps,
		Run: func(ctx context.Context, st *pass.State) (bool, error) {
			return false, nil
		},
	}
}

func TestOrderIsDeterministicAndRespectsDependencies(t *testing.T) {
	t.Parallel()

	m, err := pass.NewManager([]*pass.Pass{
		noopPass("dce", "constprop", "copyprop"),
		noopPass("copyprop"),
		noopPass("constprop"),
	})
	require.NoError(t, err)

	order := m.Order()
	require.Equal(t, []string{"constprop", "copyprop", "dce"}, order)
}

func TestUnregisteredDependencyErrors(t *testing.T) {
	t.Parallel()

	_, err := pass.NewManager([]*pass.Pass{noopPass("dce", "missing")})
	require.Error(t, err)
}

func TestCycleDetected(t *testing.T) {
	t.Parallel()

	_, err := pass.NewManager([]*pass.Pass{
		noopPass("a", "b"),
		noopPass("b", "a"),
	})
	require.Error(t, err)
}

func TestRunStopsOnErrorWithStopPolicy(t *testing.T) {
	t.Parallel()

	var ranSecond bool
	m, err := pass.NewManager([]*pass.Pass{
		{Name: "first", Run: func(ctx context.Context, st *pass.State) (bool, error) {
			return false, errors.New("boom")
		}},
		{Name: "second", Dependencies: []string{"first"}, Run: func(ctx context.Context, st *pass.State) (bool, error) {
			ranSecond = true
			return false, nil
		}},
	})
	require.NoError(t, err)
	m.ErrorPolicy = pass.StopOnError

	metrics := m.Run(context.Background(), &pass.State{})
	require.Len(t, metrics.Results, 1)
	require.False(t, ranSecond)
}

func TestRunContinuesOnErrorByDefault(t *testing.T) {
	t.Parallel()

	var ranSecond bool
	m, err := pass.NewManager([]*pass.Pass{
		{Name: "first", Run: func(ctx context.Context, st *pass.State) (bool, error) {
			return false, errors.New("boom")
		}},
		{Name: "second", Dependencies: []string{"first"}, Run: func(ctx context.Context, st *pass.State) (bool, error) {
			ranSecond = true
			return false, nil
		}},
	})
	require.NoError(t, err)

	metrics := m.Run(context.Background(), &pass.State{})
	require.Len(t, metrics.Results, 2)
	require.True(t, ranSecond)
}

func TestTimeoutReported(t *testing.T) {
	t.Parallel()

	m, err := pass.NewManager([]*pass.Pass{
		{Name: "slow", Timeout: 10 * time.Millisecond, Run: func(ctx context.Context, st *pass.State) (bool, error) {
			<-ctx.Done()
			return false, ctx.Err()
		}},
	})
	require.NoError(t, err)

	metrics := m.Run(context.Background(), &pass.State{})
	require.Len(t, metrics.Results, 1)
	require.True(t, metrics.Results[0].TimedOut)
}

func TestPanicRecoveredAsError(t *testing.T) {
	t.Parallel()

	m, err := pass.NewManager([]*pass.Pass{
		{Name: "panicky", Run: func(ctx context.Context, st *pass.State) (bool, error) {
			panic("unexpected")
		}},
	})
	require.NoError(t, err)

	metrics := m.Run(context.Background(), &pass.State{})
	require.Error(t, metrics.Results[0].Err)
}

func TestFixpointStopsWhenNoChange(t *testing.T) {
	t.Parallel()

	calls := 0
	m, err := pass.NewManager([]*pass.Pass{
		{Name: "once", Run: func(ctx context.Context, st *pass.State) (bool, error) {
			calls++
			return calls == 1, nil // changes only on the first call
		}},
	})
	require.NoError(t, err)
	m.MaxRounds = 5

	metrics := m.Run(context.Background(), &pass.State{})
	require.Equal(t, 2, metrics.Rounds, "stops one round after the last reported change")
	require.Equal(t, 2, calls)
}
