package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sigecs/ecs"
)

func NewSignatureDebuggerComponent() SignatureDebuggerComponent {
	return SignatureDebuggerComponent{
		selected: make(map[ecs.ComponentType]bool),
	}
}

// Render lets the user assemble a signature from the registered component
// types and shows which live entities carry it and which systems an entity
// with exactly that signature would belong to.
func (sd *SignatureDebuggerComponent) Render(c *ecs.Coordinator) {
	if !imgui.BeginV("Signature Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		clear(sd.selected)
	}

	for slot, t := range c.ComponentTypes() {
		ct := ecs.ComponentType(slot)
		selected := sd.selected[ct]
		if imgui.Checkbox(fmt.Sprintf("[%d] %s", slot, t), &selected) {
			if selected {
				sd.selected[ct] = true
			} else {
				delete(sd.selected, ct)
			}
		}
	}

	imgui.Separator()

	sig := sd.signature()
	if sig.IsEmpty() {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Signature: %s", sig))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matchingEntities(c, sig))))

	accepting := systemsAccepting(c.CollectStats(), sig)
	if imgui.TreeNodeStr(fmt.Sprintf("Accepting Systems (%d)", len(accepting))) {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SignatureSystemTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Required")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, sys := range accepting {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(sys.Name)

				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%v", componentNames(c.ComponentTypes(), sys.Signature)))

				imgui.TableSetColumnIndex(2)
				imgui.Text(fmt.Sprintf("%d", sys.EntityCount))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (sd *SignatureDebuggerComponent) signature() ecs.Signature {
	var sig ecs.Signature
	for slot := range sd.selected {
		sig = sig.Set(slot)
	}
	return sig
}

// matchingEntities returns the live entities whose signature contains sig.
func matchingEntities(c *ecs.Coordinator, sig ecs.Signature) []ecs.Entity {
	var out []ecs.Entity
	for e := range c.Entities() {
		if have, err := c.SignatureOf(e); err == nil && have.Contains(sig) {
			out = append(out, e)
		}
	}
	return out
}

// systemsAccepting returns the systems an entity with signature sig would be
// a member of. Systems without a signature accept nothing.
func systemsAccepting(stats *ecs.Stats, sig ecs.Signature) []ecs.SystemInfo {
	var out []ecs.SystemInfo
	for _, sys := range stats.Systems {
		if !sys.Signature.IsEmpty() && sig.Contains(sys.Signature) {
			out = append(out, sys)
		}
	}
	return out
}
