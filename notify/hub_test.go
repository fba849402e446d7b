package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishByTopic(t *testing.T) {
	hub := NewHub()
	_, blogs := hub.Subscribe(TopicBlogs)
	_, comments := hub.Subscribe(TopicComments)

	n := hub.Publish(Changed(TopicBlogs, Created, "p1"))
	assert.Equal(t, 1, n)

	ev := <-blogs
	assert.Equal(t, EventChanged, ev.Name)
	assert.Equal(t, Change{Type: Created, PostID: "p1"}, ev.Data)
	assert.Empty(t, comments)
}

func TestHub_SlowSubscriberMissesEvents(t *testing.T) {
	hub := NewHub()
	_, ch := hub.Subscribe(TopicBlogs)

	for i := 0; i < subscriberBuffer; i++ {
		require.Equal(t, 1, hub.Publish(Changed(TopicBlogs, Updated, "p")))
	}
	assert.Equal(t, 0, hub.Publish(Changed(TopicBlogs, Updated, "p")))
	assert.Len(t, ch, subscriberBuffer)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()
	id, ch := hub.Subscribe(TopicBlogs)
	require.Equal(t, 1, hub.Subscribers(TopicBlogs))

	hub.Unsubscribe(id)
	hub.Unsubscribe(id)
	hub.Unsubscribe("unknown")

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers(TopicBlogs))
	assert.Equal(t, 0, hub.Publish(Changed(TopicBlogs, Deleted, "p")))
}

func TestHub_ConcurrentUse(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id, _ := hub.Subscribe(TopicBlogs)
			hub.Unsubscribe(id)
		}()
		go func() {
			defer wg.Done()
			hub.Publish(Changed(TopicBlogs, Created, "p"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.Subscribers(TopicBlogs))
}
