package scene

import (
	"github.com/matzehuels/topoview/pkg/errors"
)

// StartTypeVM is the only start object type the topology service accepts.
const StartTypeVM = "VM"

// VMInclusions selects which dependencies of the start VM are traversed.
type VMInclusions struct {
	Host          bool `json:"include_host" toml:"host"`
	ClusterOfHost bool `json:"include_cluster_of_host" toml:"cluster_of_host"`
	Datastores    bool `json:"include_datastores" toml:"datastores"`
	Networks      bool `json:"include_networks" toml:"networks"`
}

// HostInclusions selects what is traversed when a host is reached at depth 2.
type HostInclusions struct {
	VMsOnHost bool `json:"include_vms_on_host" toml:"vms_on_host"`
}

// Request is the scene graph request sent to the topology service.
type Request struct {
	StartID        string         `json:"start_object_identifier"`
	StartType      string         `json:"start_object_type"`
	VMInclusions   VMInclusions   `json:"vm_inclusions"`
	HostInclusions HostInclusions `json:"host_depth2_inclusions"`
	Depth          int            `json:"depth"`
}

// NewRequest returns a depth-1 request for the given VM with every
// inclusion enabled, matching the service defaults.
func NewRequest(vmID string) Request {
	return Request{
		StartID:   vmID,
		StartType: StartTypeVM,
		VMInclusions: VMInclusions{
			Host:          true,
			ClusterOfHost: true,
			Datastores:    true,
			Networks:      true,
		},
		HostInclusions: HostInclusions{VMsOnHost: true},
		Depth:          1,
	}
}

// Normalize fills defaults for zero fields: start type VM and depth 1.
// The cluster inclusion is cleared when the host is not included, since
// the cluster is only reachable through it.
func (r Request) Normalize() Request {
	if r.StartType == "" {
		r.StartType = StartTypeVM
	}
	if r.Depth == 0 {
		r.Depth = 1
	}
	if !r.VMInclusions.Host {
		r.VMInclusions.ClusterOfHost = false
	}
	return r
}

// Validate checks the request before it is sent.
func (r Request) Validate() error {
	if err := errors.ValidateID(r.StartID); err != nil {
		return err
	}
	if r.StartType != StartTypeVM {
		return errors.New(errors.ErrCodeUnsupported, "start object type %q is not supported (only %q)", r.StartType, StartTypeVM)
	}
	return errors.ValidateDepth(r.Depth)
}
