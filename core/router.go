package core

import "context"

// Router delivers messages to registered agents and returns their replies.
//
// A concrete implementation is responsible for:
//   - Registering available agents (by name) via Register
//   - Point-to-point delivery (Send) returning the target agent's reply
//   - Layer-wide fan-out (Broadcast) collecting one reply per member
//
// Implementations SHOULD:
//   - Validate messages before delivery and reject malformed ones
//   - Answer sends to unknown agents with an alert reply rather than an error,
//     so upstream callers always receive a routable message
//   - Propagate context cancellation to underlying agent Process calls
//   - Be safe for concurrent use by multiple goroutines
type Router interface {
	// Register makes an agent available for later delivery by name.
	Register(a Agent)

	// Send delivers msg to its target agent and returns the reply. The error
	// return covers malformed input and router shutdown; delivery to an
	// unknown agent yields an alert reply, not an error.
	Send(ctx context.Context, msg Message) (Message, error)

	// Broadcast delivers msg to every agent in the target layer and returns
	// the replies in registration order.
	Broadcast(ctx context.Context, layer string, msg Message) ([]Message, error)
}
