package projection

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

// subComponent describes one synthetic node and the edge tying it to its
// primary.
type subComponent struct {
	suffix    string
	label     string
	typ       string
	payload   visual.Payload
	edgeLabel string
	class     visual.Class
	color     string
}

// explode builds the detail projection in two passes: compact primaries
// first, then sub-components per entity, then the original relations.
// A sub-component whose derived id is already taken is dropped with a
// warning so every node id stays unique.
func explode(g *scene.Graph, logger *log.Logger) *visual.Graph {
	out := &visual.Graph{
		Nodes: make([]visual.Node, 0, len(g.Nodes)*3),
		Edges: make([]visual.Edge, 0, len(g.Edges)*3),
	}

	taken := make(map[string]bool, cap(out.Nodes))
	for i := range g.Nodes {
		e := &g.Nodes[i]
		taken[e.ID] = true
		out.Nodes = append(out.Nodes, primaryNode(e, visual.KindCompact, visual.CompactPayload{
			EntityType: string(e.Type),
			Status:     e.Status,
		}))
	}

	counter := 0
	for i := range g.Nodes {
		e := &g.Nodes[i]
		for _, sc := range subComponents(e) {
			id := e.ID + "-" + sc.suffix
			if taken[id] {
				logger.Warn("sub-component id already in use, skipping", "id", id, "parent", e.ID)
				continue
			}
			taken[id] = true
			out.Nodes = append(out.Nodes, visual.Node{
				ID:        id,
				Kind:      visual.KindDetail,
				Type:      sc.typ,
				Label:     sc.label,
				ParentID:  e.ID,
				Payload:   sc.payload,
				Footprint: visual.FootprintOf(visual.KindDetail),
			})
			counter++
			out.Edges = append(out.Edges, visual.Edge{
				ID:        fmt.Sprintf("edge-%d", counter),
				Source:    e.ID,
				Target:    id,
				Label:     sc.edgeLabel,
				Class:     sc.class,
				Synthetic: true,
				Style:     visual.SyntheticStyle(sc.class, sc.color),
			})
		}
	}

	for _, r := range g.Edges {
		counter++
		out.Edges = append(out.Edges, relationEdge(fmt.Sprintf("original-%d", counter), r))
	}
	return out
}

// subComponents dispatches on entity kind. Kinds without sub-components
// return nil.
func subComponents(e *scene.Entity) []subComponent {
	a := attrs(e.Data)
	switch e.Type {
	case scene.KindVM:
		return vmSubComponents(a)
	case scene.KindHost:
		return []subComponent{
			sub("hardware", "Hardware", "Hardware", hardwarePayload(a), "Runs on", visual.ClassHosting),
			sub("esxi", "ESXi", "Software", softwarePayload(a), "Membre de", visual.ClassHosting),
		}
	case scene.KindDatastore:
		return []subComponent{
			sub("capacity", "Capacity", "Storage", capacityPayload(a), "Storage Capacity", visual.ClassStorage),
		}
	default:
		return nil
	}
}

func sub(suffix, label, typ string, p visual.Payload, edgeLabel string, class visual.Class) subComponent {
	return subComponent{
		suffix:    suffix,
		label:     label,
		typ:       typ,
		payload:   p,
		edgeLabel: edgeLabel,
		class:     class,
	}
}

func vmSubComponents(a attrs) []subComponent {
	disks := a.records("disks")
	nics := a.records("network_adapters")

	info := sub("info", "VM Info", "Info", identityPayload(a), "Identity", visual.ClassOther)
	info.color = visual.ColorIdentity
	compute := sub("compute", "Compute Resources", "Compute", computePayload(a), "Resources", visual.ClassOther)
	compute.color = visual.ColorCompute

	out := make([]subComponent, 0, 2+len(disks)+len(nics))
	out = append(out, info, compute)
	for i, d := range disks {
		label := d.str("label")
		if label == "" {
			label = fmt.Sprintf("Hard disk %d", i+1)
		}
		out = append(out, sub(fmt.Sprintf("disk-%d", i), label, "Disk", diskPayload(d), "Stockée sur", visual.ClassStorage))
	}
	for i, n := range nics {
		label := n.str("label")
		if label == "" {
			label = fmt.Sprintf("Network adapter %d", i+1)
		}
		out = append(out, sub(fmt.Sprintf("nic-%d", i), label, "NetworkAdapter", nicPayload(n), "Connectée à", visual.ClassNetwork))
	}
	return out
}
