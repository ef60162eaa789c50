package hub

// EventKind names a trace event.
type EventKind string

const (
	EventArrival  EventKind = "arrival"
	EventBalk     EventKind = "balk"
	EventQueue    EventKind = "queue"
	EventRenege   EventKind = "renege"
	EventBind     EventKind = "bind"
	EventPhase    EventKind = "phase"
	EventDepart   EventKind = "depart"
	EventDispatch EventKind = "dispatch"
)

// Event is published on the trace bus while the simulation runs.
type Event struct {
	At        float64   `json:"at"`
	Kind      EventKind `json:"kind"`
	VehicleID string    `json:"vehicle_id,omitempty"`
	StationID string    `json:"station_id,omitempty"`
	PowerKW   float64   `json:"power_kw,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
