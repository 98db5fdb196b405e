package uiloop

import (
	"sync"
	"testing"

	"github.com/mediasfu/recordctl/internal/recording"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ recording.Executor = (*Loop)(nil)

func TestLoop_RunsInOrder(t *testing.T) {
	l := New(4)
	go l.Run()
	defer l.Close()

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		l.Do(func() { got = append(got, i) })
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestLoop_SerializesConcurrentCallers(t *testing.T) {
	l := New(0)
	go l.Run()
	defer l.Close()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Do(func() { counter++ })
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestLoop_SubmitAfterClose(t *testing.T) {
	l := New(1)
	go l.Run()
	l.Close()

	ran := false
	err := l.Submit(func() { ran = true })

	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, ran)

	// idempotent
	l.Close()
}

func TestLoop_CloseWithoutRun(t *testing.T) {
	l := New(1)
	l.Close()

	require.ErrorIs(t, l.Submit(func() {}), ErrClosed)

	// Run after Close returns immediately
	l.Run()
}

func TestLoop_RecoversFromPanic(t *testing.T) {
	l := New(1)
	go l.Run()
	defer l.Close()

	l.Do(func() { panic("boom") })

	ran := false
	l.Do(func() { ran = true })
	assert.True(t, ran)
}

func TestLoop_DrivesStore(t *testing.T) {
	l := New(8)
	go l.Run()
	defer l.Close()

	store := recording.NewStore(recording.NewState("room", recording.MediaVideo, recording.Limits{}), l, nil)
	store.Update(recording.Patch{ModalVisible: func() *bool { b := true; return &b }()})

	assert.True(t, store.Snapshot().ModalVisible)
}
