// Package notify carries change notifications from the write paths to
// connected browsers over server-sent events.
package notify

import "context"

// Topics published by the application.
const (
	TopicBlogs    = "blogs"
	TopicComments = "comments"
)

// EventChanged is the event name used for every content change.
const EventChanged = "changed"

// Event is a single notification on a topic.
type Event struct {
	Topic string `json:"topic"`
	Name  string `json:"event"`
	Data  any    `json:"data"`
}

// Notifier publishes events. Implementations must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Discard drops every event.
var Discard Notifier = NotifierFunc(func(context.Context, Event) error { return nil })

// Change is the payload of a "changed" event.
type Change struct {
	Type   string `json:"type"`
	PostID string `json:"postId"`
	ID     string `json:"id,omitempty"`
}

// Change types.
const (
	Created = "created"
	Updated = "updated"
	Deleted = "deleted"
)

// Changed builds a "changed" event on topic.
func Changed(topic, changeType, postID string) Event {
	return Event{Topic: topic, Name: EventChanged, Data: Change{Type: changeType, PostID: postID}}
}
