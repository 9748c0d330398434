package ws

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	failWith error
	stall    chan struct{}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if c.stall != nil {
		<-c.stall
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub, cancel
}

func TestPublishReachesOnlyRecipients(t *testing.T) {
	hub, _ := startHub(t)
	alice, bob := uuid.New(), uuid.New()
	aliceConn, aliceTab, bobConn := &fakeConn{}, &fakeConn{}, &fakeConn{}

	require.True(t, hub.Join(NewClient(alice, aliceConn)))
	require.True(t, hub.Join(NewClient(alice, aliceTab)))
	require.True(t, hub.Join(NewClient(bob, bobConn)))
	require.Eventually(t, func() bool { return hub.ClientCount(alice) == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish([]uuid.UUID{alice}, []byte(`{"type":"pending_action_approved"}`)))

	assert.Eventually(t, func() bool { return aliceConn.received() == 1 && aliceTab.received() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, bobConn.received())
}

func TestFailedWriteDropsClient(t *testing.T) {
	hub, _ := startHub(t)
	user := uuid.New()
	conn := &fakeConn{failWith: errors.New("broken pipe")}

	require.True(t, hub.Join(NewClient(user, conn)))
	require.Eventually(t, func() bool { return hub.ClientCount(user) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish([]uuid.UUID{user}, []byte("x")))
	assert.Eventually(t, func() bool { return hub.ClientCount(user) == 0 && conn.isClosed() }, time.Second, 5*time.Millisecond)
}

func TestLeaveClosesConnection(t *testing.T) {
	hub, _ := startHub(t)
	conn := &fakeConn{}
	client := NewClient(uuid.New(), conn)

	require.True(t, hub.Join(client))
	hub.Leave(client)
	assert.Eventually(t, func() bool { return hub.ClientCount(client.UserID) == 0 && conn.isClosed() }, time.Second, 5*time.Millisecond)

	// a second leave is a no-op
	hub.Leave(client)
}

func TestStalledClientDoesNotBlockOthers(t *testing.T) {
	hub, _ := startHub(t)
	slow, fast := uuid.New(), uuid.New()
	stalled := &fakeConn{stall: make(chan struct{})}
	defer close(stalled.stall)
	healthy := &fakeConn{}

	require.True(t, hub.Join(NewClient(slow, stalled)))
	require.True(t, hub.Join(NewClient(fast, healthy)))
	require.Eventually(t, func() bool { return hub.ClientCount(slow) == 1 && hub.ClientCount(fast) == 1 }, time.Second, 5*time.Millisecond)

	// overflow the stalled client's buffer, then reach the healthy one
	for i := 0; i < clientBufferSize+2; i++ {
		require.NoError(t, hub.Publish([]uuid.UUID{slow}, []byte("x")))
	}
	require.NoError(t, hub.Publish([]uuid.UUID{fast}, []byte("y")))

	assert.Eventually(t, func() bool { return healthy.received() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.ClientCount(slow) == 0 }, time.Second, 5*time.Millisecond)
}

func TestJoinAndLeaveReturnAfterShutdown(t *testing.T) {
	hub, cancel := startHub(t)
	conn := &fakeConn{}
	client := NewClient(uuid.New(), conn)
	require.True(t, hub.Join(client))

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Eventually(t, conn.isClosed, time.Second, 5*time.Millisecond)

	returned := make(chan struct{})
	go func() {
		hub.Leave(client)
		assert.False(t, hub.Join(NewClient(uuid.New(), &fakeConn{})))
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Join/Leave blocked on a stopped hub")
	}
}

func TestPublishDoesNotBlockWhenQueueIsFull(t *testing.T) {
	hub := NewHub(quietLogger()) // not running, nothing drains the queue

	var err error
	for i := 0; i < cap(hub.send)+1; i++ {
		err = hub.Publish([]uuid.UUID{uuid.New()}, []byte("x"))
	}
	assert.ErrorIs(t, err, ErrHubBusy)
}
