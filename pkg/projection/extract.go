package projection

import (
	"fmt"
	"maps"

	"github.com/spf13/cast"

	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

// attrs is a loosely typed attribute map as sent by the topology service.
type attrs map[string]any

// get returns the first value among keys that is present, non-null and not
// an empty string.
func (a attrs) get(keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := a[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (a attrs) str(keys ...string) string {
	v, ok := a.get(keys...)
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

func (a attrs) intp(keys ...string) *int {
	v, ok := a.get(keys...)
	if !ok {
		return nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return nil
	}
	return &n
}

func (a attrs) floatp(keys ...string) *float64 {
	v, ok := a.get(keys...)
	if !ok {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return &f
}

func (a attrs) boolp(keys ...string) *bool {
	v, ok := a.get(keys...)
	if !ok {
		return nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil
	}
	return &b
}

func (a attrs) strs(key string) []string {
	v, ok := a.get(key)
	if !ok {
		return nil
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil
	}
	return out
}

// record returns a nested attribute map, or an empty one.
func (a attrs) record(key string) attrs {
	v, ok := a.get(key)
	if !ok {
		return attrs{}
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return attrs{}
	}
	return m
}

// records returns a list of nested attribute maps. Elements that are not
// maps still yield an (empty) entry so the list length is preserved.
func (a attrs) records(key string) []attrs {
	v, ok := a.get(key)
	if !ok {
		return nil
	}
	items, err := cast.ToSliceE(v)
	if err != nil {
		return nil
	}
	out := make([]attrs, len(items))
	for i, item := range items {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			m = map[string]any{}
		}
		out[i] = m
	}
	return out
}

// Utilization formats the used share of a datastore as "75.0%". It returns
// [visual.NotAvailable] when either value is missing or capacity is zero.
func Utilization(capacityGB, freeGB *float64) string {
	if capacityGB == nil || freeGB == nil || *capacityGB == 0 {
		return visual.NotAvailable
	}
	used := *capacityGB - *freeGB
	return fmt.Sprintf("%.1f%%", used/(*capacityGB)*100)
}

// =============================================================================
// Summary payloads
// =============================================================================

func summaryPayload(e *scene.Entity) visual.Payload {
	a := attrs(e.Data)
	full := maps.Clone(e.Data)

	switch e.Type {
	case scene.KindVM:
		disks := a.records("disks")
		nics := a.records("network_adapters")
		total := 0.0
		for _, d := range disks {
			if c := d.floatp("capacity_gb"); c != nil {
				total += *c
			}
		}
		ips := a.strs("ip_addresses")
		if len(ips) == 0 {
			for _, n := range nics {
				ips = append(ips, n.strs("guest_ips")...)
			}
		}
		status := e.Status
		if status == "" {
			status = a.str("power_state")
		}
		return visual.VMPayload{
			PowerState:  status,
			GuestOS:     a.str("guest_os_full", "guest_os"),
			VCPUs:       a.intp("vcpus", "total_vcpus"),
			RAMMB:       a.intp("ram_mb", "configured_ram_mb"),
			IPAddresses: ips,
			Disks:       len(disks),
			DiskTotalGB: total,
			NICs:        len(nics),
			Attributes:  full,
		}
	case scene.KindHost:
		return visual.HostPayload{
			Model:      a.str("model"),
			CPUModel:   a.str("cpu_model"),
			CPUCores:   a.intp("cpu_total_cores", "cpu_cores"),
			MemoryGB:   a.floatp("memory_gb"),
			Version:    a.str("version", "esxi_version", "version_full"),
			Attributes: full,
		}
	case scene.KindDatastore:
		capacity, free := a.floatp("capacity_gb"), a.floatp("free_space_gb")
		return visual.DatastorePayload{
			Type:        a.str("type", "datastore_type"),
			CapacityGB:  capacity,
			FreeSpaceGB: free,
			Utilization: Utilization(capacity, free),
			Attributes:  full,
		}
	case scene.KindCluster:
		hosts := a.intp("num_hosts", "host_count")
		if hosts == nil {
			if list, ok := a.get("hosts"); ok {
				if items, err := cast.ToSliceE(list); err == nil {
					n := len(items)
					hosts = &n
				}
			}
		}
		return visual.ClusterPayload{
			OverallStatus: a.str("overall_status", "status"),
			HAEnabled:     a.boolp("ha_enabled"),
			DRSEnabled:    a.boolp("drs_enabled"),
			Hosts:         hosts,
			Attributes:    full,
		}
	case scene.KindNetwork:
		return visual.NetworkPayload{
			NetworkType: a.str("network_type", "deduced_type"),
			VLAN:        a.str("vlan_id", "vlan", "cached_vlan_info"),
			Switch:      a.str("dvs_name", "switch", "cached_dvs_name"),
			Attributes:  full,
		}
	default:
		return visual.GenericPayload{Attributes: full}
	}
}

// =============================================================================
// Sub-component payloads
// =============================================================================

func identityPayload(a attrs) visual.Payload {
	return visual.IdentityPayload{
		InstanceUUID: a.str("instance_uuid"),
		BIOSUUID:     a.str("bios_uuid"),
		GuestOSFull:  a.str("guest_os_full"),
		ToolsStatus:  a.str("tools_status"),
		VMVersion:    a.str("vm_version"),
	}
}

func computePayload(a attrs) visual.Payload {
	return visual.ComputePayload{
		VCPUs:             a.intp("vcpus", "total_vcpus"),
		CoresPerSocket:    a.intp("cores_per_socket"),
		RAMMB:             a.intp("ram_mb", "configured_ram_mb"),
		CPUReservationMHz: a.str("cpu_reservation_mhz"),
		CPULimitMHz:       a.str("cpu_limit_mhz"),
	}
}

func diskPayload(d attrs) visual.Payload {
	provisioning := d.str("provisioning_type")
	if provisioning == "" {
		provisioning = "Unknown"
	}
	datastore := d.record("datastore_info").str("name")
	if datastore == "" {
		datastore = d.str("datastore_name")
	}
	return visual.DiskPayload{
		CapacityGB:       d.floatp("capacity_gb"),
		ProvisioningType: provisioning,
		DatastoreName:    datastore,
		VMDKPath:         d.str("vmdk_path"),
		ControllerKey:    d.str("controller_key"),
		DiskMode:         d.str("disk_mode"),
		Key:              d.str("key"),
	}
}

func nicPayload(n attrs) visual.Payload {
	network := n.str("network_name")
	if network == "" {
		network = n.record("connected_network_info").str("configured_name")
	}
	return visual.NICPayload{
		AdapterType: n.str("adapter_type"),
		MACAddress:  n.str("mac_address"),
		NetworkName: network,
		GuestIPs:    n.strs("guest_ips"),
	}
}

func hardwarePayload(a attrs) visual.Payload {
	return visual.HardwarePayload{
		Model:         a.str("model"),
		CPUModel:      a.str("cpu_model"),
		CPUSockets:    a.intp("cpu_sockets"),
		CPUTotalCores: a.intp("cpu_total_cores"),
		MemoryGB:      a.floatp("memory_gb"),
	}
}

func softwarePayload(a attrs) visual.Payload {
	return visual.SoftwarePayload{
		Version: a.str("version", "esxi_version", "version_full"),
		Build:   a.str("build"),
		Status:  a.str("status"),
	}
}

func capacityPayload(a attrs) visual.Payload {
	capacity, free := a.floatp("capacity_gb"), a.floatp("free_space_gb")
	return visual.CapacityPayload{
		CapacityGB:  capacity,
		FreeSpaceGB: free,
		Utilization: Utilization(capacity, free),
	}
}
