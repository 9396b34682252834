// Package scene defines the scene graph exchanged with the topology service.
//
// A scene graph is the raw, loosely typed answer to a visualization request:
// a list of infrastructure [Entity] values (VMs, hosts, clusters, datastores,
// networks) and the [Relation] edges between them. Everything downstream
// (projection, layout, rendering) is derived from it and never writes back.
//
// # Wire Format
//
//	{
//	  "nodes": [
//	    {"id": "vm-1", "type": "VM", "label": "web-01", "status": "poweredOn",
//	     "data": {"vcpus": 4, "disks": [{"label": "Hard disk 1", "capacity_gb": 40}]}}
//	  ],
//	  "edges": [
//	    {"id": "e1", "source": "vm-1", "target": "host-1", "label": "Hébergée par"}
//	  ]
//	}
//
// A response with "nodes": [] is a valid, empty topology. A response where
// either field is missing is malformed; see [Graph.Malformed].
//
// # Reading
//
//	g, err := scene.ReadFile("topology.json")  // .json, .yaml or .yml
//	g, err := scene.Read(r)                    // JSON from a reader
//
// The package also carries the request payload ([Request]) and the technical
// architecture document ([Document]) returned by the document endpoint.
package scene
