package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sigecs/ecs"
)

type SystemRow struct {
	Name           string
	Signature      ecs.Signature
	ComponentTypes []string
	EntityCount    int
}

type SystemViewerCache struct {
	systems       []SystemRow
	sortColumn    int
	sortAscending bool
}

func NewSystemViewerComponent() SystemViewerComponent {
	return SystemViewerComponent{
		cache: &SystemViewerCache{
			sortColumn:    3,
			sortAscending: false,
		},
	}
}

// Render lists every registered system with its required components and
// current entity count. It returns the signature of the row clicked this
// frame, if any.
func (sv *SystemViewerComponent) Render(c *ecs.Coordinator) *ecs.Signature {
	if !imgui.BeginV("System Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return nil
	}

	sv.rebuildCache(c)

	maxEntityCount := 0
	for _, sys := range sv.cache.systems {
		maxEntityCount = max(maxEntityCount, sys.EntityCount)
	}

	var clicked *ecs.Signature

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("SystemTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("System")
		imgui.TableSetupColumn("Requires")
		imgui.TableSetupColumn("Signature")
		imgui.TableSetupColumn("Entities")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			sv.cache.sortColumn = int(spec.ColumnIndex())
			sv.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sv.sortSystems()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, sys := range sv.cache.systems {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(sys.Name, sv.selectedSystem == sys.Name, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				sv.selectedSystem = sys.Name
				sig := sys.Signature
				clicked = &sig
			}

			imgui.TableNextColumn()
			if len(sys.ComponentTypes) == 0 {
				imgui.Text("(nothing)")
			} else {
				imgui.Text(strings.Join(sys.ComponentTypes, ", "))
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", uint64(sys.Signature)))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", sys.EntityCount))

			if maxEntityCount > 0 {
				barWidth := float32(sys.EntityCount) / float32(maxEntityCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked
}

// rebuildCache refreshes the rows from the Coordinator. Systems are few, so
// the list is rebuilt every frame.
func (sv *SystemViewerComponent) rebuildCache(c *ecs.Coordinator) {
	stats := c.CollectStats()
	types := c.ComponentTypes()

	sv.cache.systems = sv.cache.systems[:0]
	for _, info := range stats.Systems {
		sv.cache.systems = append(sv.cache.systems, SystemRow{
			Name:           info.Name,
			Signature:      info.Signature,
			ComponentTypes: componentNames(types, info.Signature),
			EntityCount:    info.EntityCount,
		})
	}

	sv.sortSystems()
}

func (sv *SystemViewerComponent) sortSystems() {
	sort.SliceStable(sv.cache.systems, func(i, j int) bool {
		a, b := sv.cache.systems[i], sv.cache.systems[j]
		if !sv.cache.sortAscending {
			a, b = b, a
		}
		var less bool

		switch sv.cache.sortColumn {
		case 0:
			less = a.Name < b.Name
		case 1:
			less = strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case 2:
			less = a.Signature < b.Signature
		default:
			less = a.EntityCount < b.EntityCount
		}

		return less
	})
}
