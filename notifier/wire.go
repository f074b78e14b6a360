package notifier

import (
	"encoding/json"
	"fmt"

	"socialfeed/models"
)

// Envelope is the websocket frame shape shared by server and client: {"type": ..., "payload": ...}.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type deletedPayload struct {
	ID string `json:"id"`
}

func (ev Event) MarshalJSON() ([]byte, error) {
	var payload interface{}
	switch ev.Kind {
	case PostAdded, PostUpdated:
		payload = ev.Post
	case PostDeleted:
		payload = deletedPayload{ID: ev.PostID}
	default:
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: string(ev.Kind), Payload: raw})
}

// DecodeEvent turns a change envelope back into an Event. A frame that names a known kind but carries
// a broken payload is returned as an Event with a nil Post (or empty PostID) alongside the error,
// so callers can still react to the kind.
func DecodeEvent(env Envelope) (Event, error) {
	kind, ok := ParseKind(env.Type)
	if !ok {
		return Event{}, fmt.Errorf("not a change event: %q", env.Type)
	}
	ev := Event{Kind: kind}

	switch kind {
	case PostDeleted:
		var p deletedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return ev, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		if p.ID == "" {
			return ev, fmt.Errorf("decode %s payload: missing post id", kind)
		}
		ev.PostID = p.ID
	default:
		var post models.Post
		if err := json.Unmarshal(env.Payload, &post); err != nil {
			return ev, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		if post.ID.IsZero() {
			return ev, fmt.Errorf("decode %s payload: missing post id", kind)
		}
		ev.Post = &post
		ev.PostID = post.ID.Hex()
	}
	return ev, nil
}
