package visual

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// NotAvailable is shown for absent payload values.
const NotAvailable = "N/A"

// Field is one labelled value of a payload, ready for display.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Payload is the typed content of a visual node. The set of implementations
// is closed; each entity kind and sub-component has its own shape, built
// once by the projection.
type Payload interface {
	// PayloadKind names the payload shape, e.g. "vm" or "disk".
	PayloadKind() string
	// Fields lists the values in display order.
	Fields() []Field
	payload()
}

// =============================================================================
// Primary payloads
// =============================================================================

// VMPayload summarises a virtual machine.
type VMPayload struct {
	PowerState  string         `json:"power_state,omitempty"`
	GuestOS     string         `json:"guest_os,omitempty"`
	VCPUs       *int           `json:"vcpus,omitempty"`
	RAMMB       *int           `json:"ram_mb,omitempty"`
	IPAddresses []string       `json:"ip_addresses,omitempty"`
	Disks       int            `json:"disks"`
	DiskTotalGB float64        `json:"disk_total_gb"`
	NICs        int            `json:"nics"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

func (p VMPayload) PayloadKind() string { return "vm" }

func (p VMPayload) Fields() []Field {
	return []Field{
		{"Power state", text(p.PowerState)},
		{"Guest OS", text(p.GuestOS)},
		{"vCPUs", intText(p.VCPUs)},
		{"RAM", unitText(p.RAMMB, "MB")},
		{"IP addresses", listText(p.IPAddresses)},
		{"Disks", fmt.Sprintf("%d (%.0f GB)", p.Disks, p.DiskTotalGB)},
		{"Network adapters", strconv.Itoa(p.NICs)},
	}
}

// HostPayload summarises an ESXi host.
type HostPayload struct {
	Model      string         `json:"model,omitempty"`
	CPUModel   string         `json:"cpu_model,omitempty"`
	CPUCores   *int           `json:"cpu_cores,omitempty"`
	MemoryGB   *float64       `json:"memory_gb,omitempty"`
	Version    string         `json:"version,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (p HostPayload) PayloadKind() string { return "host" }

func (p HostPayload) Fields() []Field {
	return []Field{
		{"Model", text(p.Model)},
		{"CPU", text(p.CPUModel)},
		{"Cores", intText(p.CPUCores)},
		{"Memory", floatText(p.MemoryGB, "GB")},
		{"ESXi", text(p.Version)},
	}
}

// DatastorePayload summarises a datastore.
type DatastorePayload struct {
	Type        string         `json:"type,omitempty"`
	CapacityGB  *float64       `json:"capacity_gb,omitempty"`
	FreeSpaceGB *float64       `json:"free_space_gb,omitempty"`
	Utilization string         `json:"utilization"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

func (p DatastorePayload) PayloadKind() string { return "datastore" }

func (p DatastorePayload) Fields() []Field {
	return []Field{
		{"Type", text(p.Type)},
		{"Capacity", floatText(p.CapacityGB, "GB")},
		{"Free", floatText(p.FreeSpaceGB, "GB")},
		{"Utilization", p.Utilization},
	}
}

// ClusterPayload summarises a compute cluster.
type ClusterPayload struct {
	OverallStatus string         `json:"overall_status,omitempty"`
	HAEnabled     *bool          `json:"ha_enabled,omitempty"`
	DRSEnabled    *bool          `json:"drs_enabled,omitempty"`
	Hosts         *int           `json:"hosts,omitempty"`
	Attributes    map[string]any `json:"attributes,omitempty"`
}

func (p ClusterPayload) PayloadKind() string { return "cluster" }

func (p ClusterPayload) Fields() []Field {
	return []Field{
		{"Status", text(p.OverallStatus)},
		{"HA", boolText(p.HAEnabled)},
		{"DRS", boolText(p.DRSEnabled)},
		{"Hosts", intText(p.Hosts)},
	}
}

// NetworkPayload summarises a port group or network.
type NetworkPayload struct {
	NetworkType string         `json:"network_type,omitempty"`
	VLAN        string         `json:"vlan,omitempty"`
	Switch      string         `json:"switch,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

func (p NetworkPayload) PayloadKind() string { return "network" }

func (p NetworkPayload) Fields() []Field {
	return []Field{
		{"Type", text(p.NetworkType)},
		{"VLAN", text(p.VLAN)},
		{"Switch", text(p.Switch)},
	}
}

// GenericPayload carries the attributes of an entity of unknown kind.
type GenericPayload struct {
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (p GenericPayload) PayloadKind() string { return "generic" }

func (p GenericPayload) Fields() []Field {
	return attributeFields(p.Attributes)
}

// CompactPayload is the minimal payload of a primary in detail mode.
type CompactPayload struct {
	EntityType string `json:"entity_type"`
	Status     string `json:"status,omitempty"`
}

func (p CompactPayload) PayloadKind() string { return "compact" }

func (p CompactPayload) Fields() []Field {
	return []Field{{"Type", text(p.EntityType)}, {"Status", text(p.Status)}}
}

// =============================================================================
// Sub-component payloads
// =============================================================================

// IdentityPayload identifies a VM and its guest.
type IdentityPayload struct {
	InstanceUUID string `json:"instance_uuid,omitempty"`
	BIOSUUID     string `json:"bios_uuid,omitempty"`
	GuestOSFull  string `json:"guest_os_full,omitempty"`
	ToolsStatus  string `json:"tools_status,omitempty"`
	VMVersion    string `json:"vm_version,omitempty"`
}

func (p IdentityPayload) PayloadKind() string { return "identity" }

func (p IdentityPayload) Fields() []Field {
	return []Field{
		{"Instance UUID", text(p.InstanceUUID)},
		{"BIOS UUID", text(p.BIOSUUID)},
		{"Guest OS", text(p.GuestOSFull)},
		{"Tools", text(p.ToolsStatus)},
		{"HW version", text(p.VMVersion)},
	}
}

// ComputePayload describes CPU and memory allocation of a VM.
// Reservations and limits are kept as text since the service may answer
// "Unlimited".
type ComputePayload struct {
	VCPUs             *int   `json:"vcpus,omitempty"`
	CoresPerSocket    *int   `json:"cores_per_socket,omitempty"`
	RAMMB             *int   `json:"ram_mb,omitempty"`
	CPUReservationMHz string `json:"cpu_reservation_mhz,omitempty"`
	CPULimitMHz       string `json:"cpu_limit_mhz,omitempty"`
}

func (p ComputePayload) PayloadKind() string { return "compute" }

func (p ComputePayload) Fields() []Field {
	return []Field{
		{"vCPUs", intText(p.VCPUs)},
		{"Cores/socket", intText(p.CoresPerSocket)},
		{"RAM", unitText(p.RAMMB, "MB")},
		{"CPU reservation", text(p.CPUReservationMHz)},
		{"CPU limit", text(p.CPULimitMHz)},
	}
}

// DiskPayload describes one virtual disk.
type DiskPayload struct {
	CapacityGB       *float64 `json:"capacity_gb,omitempty"`
	ProvisioningType string   `json:"provisioning_type"`
	DatastoreName    string   `json:"datastore_name,omitempty"`
	VMDKPath         string   `json:"vmdk_path,omitempty"`
	ControllerKey    string   `json:"controller_key,omitempty"`
	DiskMode         string   `json:"disk_mode,omitempty"`
	Key              string   `json:"key,omitempty"`
}

func (p DiskPayload) PayloadKind() string { return "disk" }

func (p DiskPayload) Fields() []Field {
	return []Field{
		{"Capacity", floatText(p.CapacityGB, "GB")},
		{"Provisioning", text(p.ProvisioningType)},
		{"Datastore", text(p.DatastoreName)},
		{"Path", text(p.VMDKPath)},
		{"Mode", text(p.DiskMode)},
	}
}

// NICPayload describes one network adapter.
type NICPayload struct {
	AdapterType string   `json:"adapter_type,omitempty"`
	MACAddress  string   `json:"mac_address,omitempty"`
	NetworkName string   `json:"network_name,omitempty"`
	GuestIPs    []string `json:"guest_ips,omitempty"`
}

func (p NICPayload) PayloadKind() string { return "nic" }

func (p NICPayload) Fields() []Field {
	return []Field{
		{"Adapter", text(p.AdapterType)},
		{"MAC", text(p.MACAddress)},
		{"Network", text(p.NetworkName)},
		{"IPs", listText(p.GuestIPs)},
	}
}

// HardwarePayload describes host hardware.
type HardwarePayload struct {
	Model         string   `json:"model,omitempty"`
	CPUModel      string   `json:"cpu_model,omitempty"`
	CPUSockets    *int     `json:"cpu_sockets,omitempty"`
	CPUTotalCores *int     `json:"cpu_total_cores,omitempty"`
	MemoryGB      *float64 `json:"memory_gb,omitempty"`
}

func (p HardwarePayload) PayloadKind() string { return "hardware" }

func (p HardwarePayload) Fields() []Field {
	return []Field{
		{"Model", text(p.Model)},
		{"CPU", text(p.CPUModel)},
		{"Sockets", intText(p.CPUSockets)},
		{"Cores", intText(p.CPUTotalCores)},
		{"Memory", floatText(p.MemoryGB, "GB")},
	}
}

// SoftwarePayload describes the hypervisor of a host.
type SoftwarePayload struct {
	Version string `json:"version,omitempty"`
	Build   string `json:"build,omitempty"`
	Status  string `json:"status,omitempty"`
}

func (p SoftwarePayload) PayloadKind() string { return "software" }

func (p SoftwarePayload) Fields() []Field {
	return []Field{
		{"Version", text(p.Version)},
		{"Build", text(p.Build)},
		{"Status", text(p.Status)},
	}
}

// CapacityPayload describes datastore capacity.
type CapacityPayload struct {
	CapacityGB  *float64 `json:"capacity_gb,omitempty"`
	FreeSpaceGB *float64 `json:"free_space_gb,omitempty"`
	Utilization string   `json:"utilization"`
}

func (p CapacityPayload) PayloadKind() string { return "capacity" }

func (p CapacityPayload) Fields() []Field {
	return []Field{
		{"Capacity", floatText(p.CapacityGB, "GB")},
		{"Free", floatText(p.FreeSpaceGB, "GB")},
		{"Utilization", p.Utilization},
	}
}

func (VMPayload) payload()        {}
func (HostPayload) payload()      {}
func (DatastorePayload) payload() {}
func (ClusterPayload) payload()   {}
func (NetworkPayload) payload()   {}
func (GenericPayload) payload()   {}
func (CompactPayload) payload()   {}
func (IdentityPayload) payload()  {}
func (ComputePayload) payload()   {}
func (DiskPayload) payload()      {}
func (NICPayload) payload()       {}
func (HardwarePayload) payload()  {}
func (SoftwarePayload) payload()  {}
func (CapacityPayload) payload()  {}

// =============================================================================
// Formatting helpers
// =============================================================================

func text(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func intText(v *int) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.Itoa(*v)
}

func unitText(v *int, unit string) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%d %s", *v, unit)
}

func floatText(v *float64, unit string) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " " + unit
}

func boolText(v *bool) string {
	switch {
	case v == nil:
		return NotAvailable
	case *v:
		return "enabled"
	default:
		return "disabled"
	}
}

func listText(v []string) string {
	if len(v) == 0 {
		return NotAvailable
	}
	return strings.Join(v, ", ")
}

func attributeFields(attrs map[string]any) []Field {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, Field{Name: k, Value: fmt.Sprint(attrs[k])})
	}
	return out
}
