package sqlx

import "github.com/Code-Hex/sqlx-nestedtx/event"

// Option configures a DB.
type Option func(*options)

type options struct {
	hub     *event.Hub
	emitter event.Emitter
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.emitter == nil {
		if o.hub == nil {
			o.hub = event.NewHub()
		}
		o.emitter = o.hub
	}
	return o
}

// WithHub makes DB.Subscribe register on hub instead of a private one.
// Unless WithEmitter is given too, lifecycle events are published to hub.
func WithHub(hub *event.Hub) Option {
	return func(o *options) {
		o.hub = hub
	}
}

// WithEmitter publishes lifecycle events to emitter. Without WithHub,
// DB.Subscribe is unavailable; register observers on emitter directly.
// Combine both when emitter forwards to the hub, e.g. a metrics wrapper.
func WithEmitter(emitter event.Emitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}
