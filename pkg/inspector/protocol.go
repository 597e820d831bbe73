package inspector

type MessageType string

const (
	MsgTypeSnapshot MessageType = "snapshot"
	MsgTypeChange   MessageType = "change"
)

// Message is sent to inspector clients. A snapshot carries the whole state;
// a change carries one key, its new value and the components mounted on it.
type Message struct {
	Type       MessageType    `json:"type"`
	Key        string         `json:"key,omitempty"`
	Value      any            `json:"value"`
	State      map[string]any `json:"state,omitempty"`
	Components []string       `json:"components,omitempty"`
}
