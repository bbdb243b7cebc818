package debugui

import (
	"github.com/plus3/sigecs/ecs"
)

type EntityBrowserComponent struct {
	cache              *EntityBrowserCache
	selectedEntity     ecs.Entity
	selectedSignature  ecs.Signature
	hasSelection       bool
	filterText         string
	filterSignature    *ecs.Signature
	maxEntitiesPerPage int
	currentPage        int
}

type ComponentInspectorComponent struct {
	selectedEntity ecs.Entity
}

type SystemViewerComponent struct {
	cache          *SystemViewerCache
	selectedSystem string
}

type PerformanceStatsComponent struct {
	scheduler     *ecs.Scheduler
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

type SignatureDebuggerComponent struct {
	selected map[ecs.ComponentType]bool
}
