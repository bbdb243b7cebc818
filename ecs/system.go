package ecs

// System represents a behavior that operates on every entity whose signature
// contains the system's required signature. User-defined systems embed
// SystemBase, which holds the entity set the Coordinator keeps up to date,
// and can carry any custom state that persists between frames.
type System interface {
	Execute(frame *UpdateFrame)
	systemBase() *SystemBase
}

// SystemBase is embedded in every system. The entity set it exposes reflects
// the most recent Coordinator mutation; changes made while the system is
// executing become visible on the next call.
type SystemBase struct {
	entities *EntitySet
	owner    *SystemDirectory
}

func (b *SystemBase) systemBase() *SystemBase {
	return b
}

// Entities returns the live set of entities this system processes.
func (b *SystemBase) Entities() *EntitySet {
	if b.entities == nil {
		b.entities = NewEntitySet(0)
	}
	return b.entities
}
