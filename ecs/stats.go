package ecs

// Stats is a snapshot of a Coordinator's occupancy.
type Stats struct {
	LiveEntities   int
	MaxEntities    int
	ComponentCount int
	SystemCount    int
	Components     []ComponentStats
	Systems        []SystemInfo
}

type ComponentStats struct {
	Slot  ComponentType
	Name  string
	Count int
}

type SystemInfo struct {
	Name        string
	Signature   Signature
	EntityCount int
}

// CollectStats gathers per-component and per-system counts.
func (c *Coordinator) CollectStats() *Stats {
	stats := &Stats{
		LiveEntities:   c.entities.Len(),
		MaxEntities:    c.entities.Capacity(),
		ComponentCount: c.components.Len(),
		SystemCount:    c.systems.Len(),
		Components:     make([]ComponentStats, 0, c.components.Len()),
		Systems:        make([]SystemInfo, 0, c.systems.Len()),
	}

	for slot, store := range c.components.stores {
		stats.Components = append(stats.Components, ComponentStats{
			Slot:  ComponentType(slot),
			Name:  store.Type().String(),
			Count: store.Len(),
		})
	}

	for _, rec := range c.systems.records {
		stats.Systems = append(stats.Systems, SystemInfo{
			Name:        rec.name,
			Signature:   rec.signature,
			EntityCount: rec.system.systemBase().entities.Len(),
		})
	}

	return stats
}
