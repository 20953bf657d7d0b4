package fanout

// Channel and event naming shared by server and clients.
const (
	// EventNewMessage is the single event name for newly appended room messages.
	EventNewMessage = "message:new"

	channelPrefix = "chat-room-"
)

// ChannelForRoom derives the fan-out channel name from a room slug.
func ChannelForRoom(slug string) string {
	return channelPrefix + slug
}

// Event is the envelope delivered to subscribers. The payload is
// self-contained so clients never need a follow-up fetch that could race
// the message log.
type Event struct {
	Channel string      `json:"channel"`
	Event   string      `json:"event"`
	Data    interface{} `json:"data"`
}

// Broadcaster publishes events to every client currently subscribed to a
// channel. Publishing is fire-and-forget: at-least-once to subscribers
// registered at publish time, nothing to anyone else, no replay.
//
// The broadcaster is an explicitly owned object with an open/close
// lifecycle, injected into handlers rather than reached as package state,
// so the send path is testable with a fake.
type Broadcaster interface {
	Publish(channel, event string, payload interface{}) error
	Close() error
}
