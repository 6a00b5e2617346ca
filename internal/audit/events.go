package audit

// Actions recorded on the audit stream.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is the wire format for audit messages, msgpack-encoded on the bus.
type Event struct {
	V          int    `msgpack:"v"`
	TS         int64  `msgpack:"ts"`
	ActorID    string `msgpack:"actor_id"`
	ActorEmail string `msgpack:"actor_email"`
	Action     string `msgpack:"action"`
	Resource   string `msgpack:"resource"`
	ResourceID string `msgpack:"resource_id"`
}
