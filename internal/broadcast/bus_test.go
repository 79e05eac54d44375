package broadcast

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bappoz/Rustatui-Chat/internal/domain"
)

func chat(content string) domain.ChatMessage {
	return domain.NewChat(content, "127.0.0.1:5000", "alice", "general", "#FF6B6B")
}

func recvOne(t *testing.T, sub *Subscription) domain.ChatMessage {
	t.Helper()
	select {
	case msg, ok := <-sub.C():
		require.True(t, ok, "subscription closed unexpectedly")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return domain.ChatMessage{}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus(8)
	a := bus.Subscribe()
	b := bus.Subscribe()
	t.Cleanup(func() { a.Close(); b.Close() })

	bus.Publish(chat("hello"))

	assert.Equal(t, "hello", recvOne(t, a).Content)
	assert.Equal(t, "hello", recvOne(t, b).Content)
}

func TestLateSubscriberSeesNoReplay(t *testing.T) {
	bus := NewBus(8)
	bus.Publish(chat("before"))

	sub := bus.Subscribe()
	t.Cleanup(sub.Close)

	select {
	case msg := <-sub.C():
		t.Fatalf("unexpected replayed message: %q", msg.Content)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	bus := NewBus(1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(chat("noop"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked with zero subscribers")
	}
}

func TestSlowSubscriberDropsOldestAndReportsLoss(t *testing.T) {
	bus := NewBus(2)
	sub := bus.Subscribe()
	t.Cleanup(sub.Close)

	for i := 1; i <= 5; i++ {
		bus.Publish(chat(fmt.Sprintf("m%d", i)))
	}

	// Buffer holds the two newest; the three oldest were dropped.
	assert.Equal(t, 3, sub.Lost())
	assert.Equal(t, "m4", recvOne(t, sub).Content)
	assert.Equal(t, "m5", recvOne(t, sub).Content)
	assert.Equal(t, 0, sub.Lost())
}

func TestSlowSubscriberDoesNotAffectOthers(t *testing.T) {
	bus := NewBus(2)
	slow := bus.Subscribe()
	fast := bus.Subscribe()
	t.Cleanup(func() { slow.Close(); fast.Close() })

	// The fast subscriber drains after every publish and must see the
	// full ordered stream even while the slow one overflows.
	for i := 0; i < 10; i++ {
		bus.Publish(chat(fmt.Sprintf("m%d", i)))
		assert.Equal(t, fmt.Sprintf("m%d", i), recvOne(t, fast).Content)
	}

	assert.Equal(t, 0, fast.Lost())
	assert.Equal(t, 8, slow.Lost())
}

func TestCloseDetachesSubscriber(t *testing.T) {
	bus := NewBus(4)
	sub := bus.Subscribe()
	require.Equal(t, 1, bus.Subscribers())

	sub.Close()
	assert.Equal(t, 0, bus.Subscribers())

	// Publishing after close must not panic.
	bus.Publish(chat("after"))

	_, ok := <-sub.C()
	assert.False(t, ok)
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := NewBus(4)
	sub := bus.Subscribe()
	sub.Close()
	assert.NotPanics(t, sub.Close)
}

func TestConcurrentPublishers(t *testing.T) {
	bus := NewBus(1024)
	sub := bus.Subscribe()
	t.Cleanup(sub.Close)

	const publishers = 8
	const perPublisher = 50

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				bus.Publish(chat(fmt.Sprintf("p%d-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()

	for i := 0; i < publishers*perPublisher; i++ {
		recvOne(t, sub)
	}
	assert.Equal(t, 0, sub.Lost())
}
