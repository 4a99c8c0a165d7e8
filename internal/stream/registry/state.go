package registry

// State is the lifecycle stage of a chunk record.
type State uint8

const (
	NotSpawned State = iota
	Spawned
	Active
	BlocksPending
	BlocksGenerated
	MeshPending
	MeshGenerated
	DespawnQueued
	Removed
)

var stateNames = [...]string{
	NotSpawned:      "not_spawned",
	Spawned:         "spawned",
	Active:          "active",
	BlocksPending:   "blocks_pending",
	BlocksGenerated: "blocks_generated",
	MeshPending:     "mesh_pending",
	MeshGenerated:   "mesh_generated",
	DespawnQueued:   "despawn_queued",
	Removed:         "removed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Live reports whether a record in state s is still streaming in.
func (s State) Live() bool {
	return s >= Spawned && s <= MeshGenerated
}

// CanTransition reports whether from -> to is a legal edge: the immediate
// successor, or DespawnQueued from any live state. Removed is reached only
// through Registry.Remove.
func CanTransition(from, to State) bool {
	if to == DespawnQueued {
		return from.Live()
	}
	return from.Live() && to == from+1 && to <= MeshGenerated
}
