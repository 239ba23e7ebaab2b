package groutine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGo_NamesTheContext(t *testing.T) {
	names := make(chan string, 1)
	Go(context.TODO(), "worker-1", func(ctx context.Context) {
		names <- GetName(ctx)
	})

	select {
	case name := <-names:
		assert.Equal(t, "worker-1", name)
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}

func TestGetName_Unnamed(t *testing.T) {
	assert.Empty(t, GetName(context.Background()))
	assert.NotZero(t, GetGID())
}

func TestTracker(t *testing.T) {
	var tr Tracker
	release := make(chan struct{})

	for i := 0; i < 3; i++ {
		tr.Go(context.Background(), "tracked", func(ctx context.Context) {
			<-release
		})
	}

	assert.Equal(t, int64(3), tr.Started())
	require.Eventually(t, func() bool { return tr.Running() == 3 }, time.Second, time.Millisecond)

	close(release)
	tr.Wait()
	assert.Zero(t, tr.Running())
}
