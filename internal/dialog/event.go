package dialog

// Event kinds delivered by the dispatch gateway.
const (
	KindCommand = "command"
	KindText    = "text"
	KindSelect  = "select"
	KindPhoto   = "photo"
)

// Event is one inbound user interaction, already stripped of transport
// details by the gateway.
type Event struct {
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	SelectID int64  `json:"select_id,omitempty"`
	PhotoID  string `json:"photo_id,omitempty"`
}

// Choice is one selectable option offered to the user.
type Choice struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Prompt is the outbound reply the gateway relays back to the user.
type Prompt struct {
	Text    string   `json:"text"`
	Choices []Choice `json:"choices,omitempty"`
}
