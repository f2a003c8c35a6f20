package workerpool_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/onsi/gomega"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/uiloop"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/pkt-cash/iriswallet/workerpool"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, workers int) (*uiloop.Loop, *workerpool.Pool) {
	loop := uiloop.New()
	loop.Start()
	pool := workerpool.New(workerpool.Config{Workers: workers, Poster: loop})
	t.Cleanup(func() {
		pool.Close()
		loop.Stop()
	})
	return loop, pool
}

func TestWorkerClamp(t *testing.T) {
	_, p := setup(t, 1)
	require.Equal(t, workerpool.MinWorkers, p.Workers())
	_, p = setup(t, 64)
	require.Equal(t, workerpool.MaxWorkers, p.Workers())
}

func TestOnDoneRunsOnLoop(t *testing.T) {
	loop, pool := setup(t, 2)
	done := make(chan bool, 1)
	pool.Submit("vm", func(context.Context) (interface{}, er.R) {
		return 42, nil
	}, func(r workerpool.Result) {
		require.Equal(t, 42, r.Value)
		done <- loop.OnLoop()
	})
	require.True(t, <-done)
}

// Later tasks of one owner which finish first are held back.
func TestPerOwnerOrder(t *testing.T) {
	loop, pool := setup(t, 4)
	var got []int
	gate := make(chan struct{})
	for i := 0; i < 20; i++ {
		i := i
		pool.Submit("vm", func(context.Context) (interface{}, er.R) {
			if i == 0 {
				<-gate
			}
			return i, nil
		}, func(r workerpool.Result) {
			got = append(got, r.Value.(int))
		})
	}
	time.Sleep(20 * time.Millisecond)
	close(gate)

	g := gomega.NewWithT(t)
	g.Eventually(func() int {
		var n int
		loop.Call(func() { n = len(got) })
		return n
	}).Should(gomega.Equal(20))
	loop.Call(func() {
		for i, v := range got {
			require.Equal(t, i, v)
		}
	})
}

func TestPanicBecomesFatal(t *testing.T) {
	_, pool := setup(t, 2)
	res := make(chan workerpool.Result, 1)
	pool.Submit("vm", func(context.Context) (interface{}, er.R) {
		panic("oops")
	}, func(r workerpool.Result) { res <- r })
	r := <-res
	require.True(t, walleterr.Fatal.Is(r.Err))
	require.False(t, r.Canceled)
}

func TestCancelQueued(t *testing.T) {
	_, pool := setup(t, 2)
	block := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		pool.Submit("busy", func(context.Context) (interface{}, er.R) {
			wg.Done()
			<-block
			return nil, nil
		}, nil)
	}
	wg.Wait()

	ran := false
	res := make(chan workerpool.Result, 1)
	task := pool.Submit("vm", func(context.Context) (interface{}, er.R) {
		ran = true
		return nil, nil
	}, func(r workerpool.Result) { res <- r })
	task.Cancel()
	close(block)
	r := <-res
	require.True(t, r.Canceled)
	require.False(t, ran)
}

func TestCancelOwnerRunning(t *testing.T) {
	_, pool := setup(t, 2)
	started := make(chan struct{})
	res := make(chan workerpool.Result, 1)
	pool.Submit("vm", func(ctx context.Context) (interface{}, er.R) {
		close(started)
		<-ctx.Done()
		return nil, walleterr.Canceled.Default()
	}, func(r workerpool.Result) { res <- r })
	<-started
	require.Equal(t, 1, pool.InFlight("vm"))
	require.Equal(t, 1, pool.CancelOwner("vm"))
	require.True(t, (<-res).Canceled)
	require.Equal(t, 0, pool.CancelOwner("nobody"))
}

func TestErrorsPassThrough(t *testing.T) {
	_, pool := setup(t, 2)
	res := make(chan workerpool.Result, 1)
	pool.Submit("vm", func(context.Context) (interface{}, er.R) {
		return nil, walleterr.Conflict.New("InsufficientAssets", nil)
	}, func(r workerpool.Result) { res <- r })
	r := <-res
	require.True(t, walleterr.Conflict.Is(r.Err))
}

func TestSubmitAfterClose(t *testing.T) {
	loop := uiloop.New()
	loop.Start()
	defer loop.Stop()
	pool := workerpool.New(workerpool.Config{Poster: loop})
	pool.Close()
	res := make(chan workerpool.Result, 1)
	pool.Submit("vm", func(context.Context) (interface{}, er.R) {
		return nil, nil
	}, func(r workerpool.Result) { res <- r })
	require.True(t, (<-res).Canceled)
}
