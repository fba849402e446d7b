package background

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/inkwell-go/logging"
	"github.com/user/inkwell-go/notify"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(ev notify.Event) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return 1
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestDispatcher_PublishesAndDrainsOnStop(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, logging.Nop(), WithWorkers(3))
	d.Start()

	for i := 0; i < 20; i++ {
		require.NoError(t, d.Notify(context.Background(), notify.Changed(notify.TopicBlogs, notify.Created, "p")))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	assert.Equal(t, 20, pub.count())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(&recordingPublisher{}, logging.Nop(), WithQueueSize(1))

	ev := notify.Changed(notify.TopicBlogs, notify.Updated, "p")
	require.NoError(t, d.Notify(context.Background(), ev))
	assert.ErrorIs(t, d.Notify(context.Background(), ev), ErrQueueFull)
	assert.Equal(t, uint64(1), d.Dropped())
}

func TestDispatcher_NotifyAfterStop(t *testing.T) {
	d := NewDispatcher(&recordingPublisher{}, logging.Nop())
	d.Start()
	require.NoError(t, d.Stop(context.Background()))
	require.NoError(t, d.Stop(context.Background()))

	err := d.Notify(context.Background(), notify.Changed(notify.TopicBlogs, notify.Deleted, "p"))
	assert.ErrorIs(t, err, ErrStopped)
}
