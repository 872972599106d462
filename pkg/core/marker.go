package core

// MaxMarkerNumber is the highest number a numbered overlay marker can show.
const MaxMarkerNumber = 9

// MarkerKind selects between numbered and plain overlay markers.
type MarkerKind int

const (
	MarkerPlain MarkerKind = iota
	MarkerNumbered
)

// MarkerVariant is the visual color variant of an overlay marker.
type MarkerVariant int

const (
	VariantPrimary MarkerVariant = iota
	VariantSecondary
	VariantUntracked
	VariantCompleted
	VariantFailed
)

func (v MarkerVariant) String() string {
	switch v {
	case VariantSecondary:
		return "secondary"
	case VariantUntracked:
		return "untracked"
	case VariantCompleted:
		return "completed"
	case VariantFailed:
		return "failed"
	default:
		return "primary"
	}
}

// MarkerSpec describes one overlay marker to spawn for an objective.
type MarkerSpec struct {
	Description string        `json:"description"`
	Kind        MarkerKind    `json:"kind"`
	Number      int           `json:"number,omitempty"`
	Variant     MarkerVariant `json:"variant"`
	Position    Position3D    `json:"position"`
}

// MarkerOp is the action of a MarkerCommand.
type MarkerOp string

const (
	MarkerSpawn   MarkerOp = "spawn"
	MarkerDestroy MarkerOp = "destroy"
)

// MarkerCommand is a spawn or destroy request handed to the host.
type MarkerCommand struct {
	Op     MarkerOp    `json:"op"`
	Handle string      `json:"handle"`
	Spec   *MarkerSpec `json:"spec,omitempty"`
}
