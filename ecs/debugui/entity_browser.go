package debugui

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sigecs/ecs"
)

// rebuildInterval is the number of frames after which the entity list is
// rebuilt even if the live entity count did not change.
const rebuildInterval = 30

type EntityInfo struct {
	ID             ecs.Entity
	Signature      ecs.Signature
	ComponentTypes []string
	ComponentCount int
}

type EntityBrowserCache struct {
	entities       []EntityInfo
	lastLiveCount  int
	framesSinceRun int
	sortColumn     int
	sortAscending  bool
}

func NewEntityBrowserComponent(maxEntitiesPerPage int) EntityBrowserComponent {
	return EntityBrowserComponent{
		cache: &EntityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
			lastLiveCount: -1,
		},
		maxEntitiesPerPage: max(1, maxEntitiesPerPage),
	}
}

func (eb *EntityBrowserComponent) Render(c *ecs.Coordinator) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(c)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterSignature = nil
	}
	if eb.filterSignature != nil {
		imgui.Text(fmt.Sprintf("Requiring signature 0x%X", uint64(*eb.filterSignature)))
	}

	filteredEntities := eb.getFilteredEntities()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Signature")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sortEntities()
			filteredEntities = eb.getFilteredEntities()
			sortSpecs.SetSpecsDirty(false)
		}

		startIdx := eb.currentPage * eb.maxEntitiesPerPage
		endIdx := min(startIdx+eb.maxEntitiesPerPage, len(filteredEntities))

		for i := startIdx; i < endIdx; i++ {
			entity := filteredEntities[i]
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.hasSelection && eb.selectedEntity == entity.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selectEntity(entity.ID, entity.Signature)
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", uint64(entity.Signature)))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ComponentCount))
		}

		imgui.EndTable()
	}

	if len(filteredEntities) > eb.maxEntitiesPerPage {
		totalPages := (len(filteredEntities) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		eb.currentPage = 0
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}

	imgui.End()
}

func (eb *EntityBrowserComponent) rebuildCacheIfNeeded(c *ecs.Coordinator) {
	eb.cache.framesSinceRun++
	live := c.LiveEntities()
	if eb.cache.lastLiveCount != live || eb.cache.framesSinceRun >= rebuildInterval {
		eb.rebuildCache(c)
	}
}

func (eb *EntityBrowserComponent) rebuildCache(c *ecs.Coordinator) {
	types := c.ComponentTypes()
	eb.cache.entities = eb.cache.entities[:0]

	for e := range c.Entities() {
		sig, err := c.SignatureOf(e)
		if err != nil {
			continue
		}
		names := componentNames(types, sig)
		eb.cache.entities = append(eb.cache.entities, EntityInfo{
			ID:             e,
			Signature:      sig,
			ComponentTypes: names,
			ComponentCount: len(names),
		})
	}

	eb.cache.lastLiveCount = c.LiveEntities()
	eb.cache.framesSinceRun = 0
	eb.sortEntities()

	eb.validateSelection(c)
}

func (eb *EntityBrowserComponent) selectEntity(e ecs.Entity, sig ecs.Signature) {
	eb.selectedEntity = e
	eb.selectedSignature = sig
	eb.hasSelection = true
}

// validateSelection drops the selection once the entity dies or its
// signature changes. Ids are recycled, so a changed signature is treated as a
// different entity.
func (eb *EntityBrowserComponent) validateSelection(c *ecs.Coordinator) {
	if !eb.hasSelection {
		return
	}
	sig, err := c.SignatureOf(eb.selectedEntity)
	if err != nil || !c.IsAlive(eb.selectedEntity) || sig != eb.selectedSignature {
		eb.hasSelection = false
	}
}

func (eb *EntityBrowserComponent) sortEntities() {
	sort.Slice(eb.cache.entities, func(i, j int) bool {
		a, b := eb.cache.entities[i], eb.cache.entities[j]
		if !eb.cache.sortAscending {
			a, b = b, a
		}
		var less bool

		switch eb.cache.sortColumn {
		case 0:
			less = a.ID < b.ID
		case 1:
			less = a.Signature < b.Signature
		case 2:
			less = strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case 3:
			less = a.ComponentCount < b.ComponentCount
		default:
			less = a.ID < b.ID
		}

		return less
	})
}

func (eb *EntityBrowserComponent) getFilteredEntities() []EntityInfo {
	if eb.filterText == "" && eb.filterSignature == nil {
		return eb.cache.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, entity := range eb.cache.entities {
		if eb.filterSignature != nil && !entity.Signature.Contains(*eb.filterSignature) {
			continue
		}

		if eb.filterText != "" {
			idStr := fmt.Sprintf("%d", entity.ID)
			componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " "))

			if !strings.Contains(idStr, filterLower) &&
				!strings.Contains(componentsStr, filterLower) {
				continue
			}
		}

		filtered = append(filtered, entity)
	}

	return filtered
}

// SetFilterSignature limits the list to entities whose signature contains sig.
func (eb *EntityBrowserComponent) SetFilterSignature(sig ecs.Signature) {
	eb.filterSignature = &sig
	eb.currentPage = 0
}

// GetSelectedEntity returns the entity picked in the table, if any. The
// selection is cleared on the next cache rebuild after the entity is
// destroyed or gains or loses a component.
func (eb *EntityBrowserComponent) GetSelectedEntity() (ecs.Entity, bool) {
	return eb.selectedEntity, eb.hasSelection
}

// componentNames returns the type names of every slot set in sig.
func componentNames(types []reflect.Type, sig ecs.Signature) []string {
	names := make([]string, 0, sig.Count())
	for slot := range sig.Types() {
		if int(slot) < len(types) {
			names = append(names, types[slot].String())
		}
	}
	return names
}
