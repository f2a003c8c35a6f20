package uiloop_test

import (
	"sync"
	"testing"

	"github.com/pkt-cash/iriswallet/uiloop"
	"github.com/stretchr/testify/require"
)

func TestFIFO(t *testing.T) {
	l := uiloop.New()
	l.Start()
	defer l.Stop()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Flush()
	var snapshot []int
	l.Call(func() { snapshot = append(snapshot, got...) })
	require.Len(t, snapshot, 100)
	for i, v := range snapshot {
		require.Equal(t, i, v)
	}
}

func TestCallFromLoopRunsInline(t *testing.T) {
	l := uiloop.New()
	l.Start()
	defer l.Stop()

	require.False(t, l.OnLoop())
	ran := false
	l.Call(func() {
		require.True(t, l.OnLoop())
		l.Call(func() { ran = true })
	})
	require.True(t, ran)
}

func TestPanicDoesNotKillLoop(t *testing.T) {
	l := uiloop.New()
	l.Start()
	defer l.Stop()

	l.Post(func() { panic("boom") })
	ok := false
	l.Call(func() { ok = true })
	require.True(t, ok)
}

func TestConcurrentPosters(t *testing.T) {
	l := uiloop.New()
	l.Start()
	defer l.Stop()

	n := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Post(func() { n++ })
			}
		}()
	}
	wg.Wait()
	l.Flush()
	var got int
	l.Call(func() { got = n })
	require.Equal(t, 400, got)
}

func TestStopDrains(t *testing.T) {
	l := uiloop.New()
	l.Start()
	ran := make(chan struct{})
	l.Post(func() { close(ran) })
	l.Stop()
	<-l.Done()
	select {
	case <-ran:
	default:
		t.Fatal("queued closure did not run before stop")
	}
}
