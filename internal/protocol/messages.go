package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldParams     WorldParams `json:"world_params"`
	Player          PlayerView  `json:"player"`
	Inventory       *TokenRef   `json:"inventory"`
}

type WorldParams struct {
	CellSizeDeg    float64 `json:"cell_size_deg"`
	InteractRadius int     `json:"interact_radius"`
	ViewMargin     int     `json:"view_margin"`
	VictoryTarget  int     `json:"victory_target"`
	Seed           int64   `json:"seed"`
	Spawn          LatLng  `json:"spawn"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PlayerView struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Cell [2]int  `json:"cell"`
}

type TokenRef struct {
	Value int `json:"value"`
}

// ACT kinds.
const (
	ActMove     = "MOVE"
	ActStep     = "STEP"
	ActActivate = "ACTIVATE"
	ActView     = "VIEW"
	ActReset    = "RESET"
)

// ACT (client -> server). One message per input event; fields beyond Kind
// are kind-specific.
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id,omitempty"`
	Kind            string `json:"kind"`

	// MOVE: absolute position report (geolocation-style source).
	Lat float64 `json:"lat,omitempty"`
	Lng float64 `json:"lng,omitempty"`

	// STEP: one-cell button step per axis, each in {-1, 0, 1}.
	DI int `json:"di,omitempty"`
	DJ int `json:"dj,omitempty"`

	// ACTIVATE: the targeted cell.
	Cell [2]int `json:"cell,omitempty"`

	// VIEW: visible rectangle corners, triggers reconciliation.
	View *ViewRect `json:"view,omitempty"`
}

type ViewRect struct {
	Min [2]int `json:"min"`
	Max [2]int `json:"max"`
}

// ACK (server -> client): the answer to an ACT.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Action          string `json:"action,omitempty"` // pickup | place | craft
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

// STATE (server -> client): the reconciled view after an event.
type StateMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Player          PlayerView `json:"player"`
	Inventory       *TokenRef  `json:"inventory"`
	Cells           []CellView `json:"cells"`
	Removed         [][2]int   `json:"removed,omitempty"`
}

type CellView struct {
	Cell    [2]int `json:"cell"`
	Value   int    `json:"value,omitempty"`
	InRange bool   `json:"in_range"`
}

// EVENT (server -> client): out-of-band notifications.
const (
	EventVictory   = "VICTORY"
	EventSaveError = "SAVE_ERROR"
)

type EventMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Name            string `json:"name"`
	Value           int    `json:"value,omitempty"`
	Message         string `json:"message,omitempty"`
}
