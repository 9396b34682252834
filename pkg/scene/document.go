package scene

// DocumentRequest asks the document service for a VM's architecture document.
type DocumentRequest struct {
	VMID string `json:"vm_identifier"`
}

// Document is the technical architecture document generated for one VM.
// It is consumed as an opaque rendering payload; fields the service leaves
// out stay at their zero value.
type Document struct {
	GeneratedAt      string            `json:"generated_at_utc"`
	GeneratedBy      string            `json:"generated_by,omitempty"`
	Identification   VMIdentification  `json:"vm_identification"`
	Compute          ComputeResources  `json:"compute_resources"`
	Storage          []DocumentDisk    `json:"storage_configuration"`
	Network          []DocumentNIC     `json:"network_configuration"`
	Hosting          HostingContext    `json:"hosting_context"`
	CustomAttributes []CustomAttribute `json:"custom_attributes"`
}

// VMIdentification identifies the VM and its guest.
type VMIdentification struct {
	Name         string `json:"vm_name,omitempty"`
	InstanceUUID string `json:"instance_uuid,omitempty"`
	BIOSUUID     string `json:"bios_uuid,omitempty"`
	VMXPath      string `json:"vmx_path,omitempty"`
	GuestOSFull  string `json:"guest_os_full,omitempty"`
	GuestOSID    string `json:"guest_os_id,omitempty"`
	PowerState   string `json:"power_state,omitempty"`
	ToolsStatus  string `json:"tools_status,omitempty"`
	ToolsVersion string `json:"tools_version,omitempty"`
	ToolsRunning string `json:"tools_running,omitempty"`
	VMVersion    string `json:"vm_version,omitempty"`
	BootTime     string `json:"boot_time,omitempty"`
}

// ComputeResources describes CPU and memory allocation. Reservation and
// limit values are numbers or strings such as "Unlimited".
type ComputeResources struct {
	TotalVCPUs        *int   `json:"total_vcpus,omitempty"`
	VirtualSockets    *int   `json:"virtual_sockets,omitempty"`
	CoresPerSocket    *int   `json:"cores_per_socket,omitempty"`
	ConfiguredRAMMB   *int   `json:"configured_ram_mb,omitempty"`
	CPUReservationMHz any    `json:"cpu_reservation_mhz,omitempty"`
	CPULimitMHz       any    `json:"cpu_limit_mhz,omitempty"`
	CPUShares         string `json:"cpu_shares,omitempty"`
	MemReservationMB  any    `json:"mem_reservation_mb,omitempty"`
	MemLimitMB        any    `json:"mem_limit_mb,omitempty"`
	MemShares         string `json:"mem_shares,omitempty"`
}

// DatastoreRef names the datastore backing a disk.
type DatastoreRef struct {
	Name string `json:"name,omitempty"`
	UUID string `json:"uuid,omitempty"`
	Type string `json:"type,omitempty"`
}

// DocumentDisk is one virtual disk of the VM.
type DocumentDisk struct {
	Label            string        `json:"label,omitempty"`
	Key              string        `json:"key,omitempty"`
	ControllerKey    string        `json:"controller_key,omitempty"`
	CapacityGB       *float64      `json:"capacity_gb,omitempty"`
	ProvisioningType string        `json:"provisioning_type,omitempty"`
	DiskMode         string        `json:"disk_mode,omitempty"`
	WriteThrough     *bool         `json:"write_through,omitempty"`
	Datastore        *DatastoreRef `json:"datastore_info,omitempty"`
	VMDKPath         string        `json:"vmdk_path,omitempty"`
	SIOCShares       string        `json:"sioc_shares,omitempty"`
	SIOCLimitIOPS    any           `json:"sioc_limit_iops,omitempty"`
}

// ConnectedNetwork describes the port group a NIC is attached to.
type ConnectedNetwork struct {
	ConfiguredName      string `json:"configured_name,omitempty"`
	DeducedType         string `json:"deduced_type,omitempty"`
	PortgroupKey        string `json:"dpg_key,omitempty"`
	SwitchUUID          string `json:"dvs_uuid,omitempty"`
	CachedPortgroupName string `json:"cached_portgroup_name,omitempty"`
	CachedSwitchName    string `json:"cached_dvs_name,omitempty"`
	CachedVLANInfo      string `json:"cached_vlan_info,omitempty"`
}

// DocumentNIC is one network adapter of the VM.
type DocumentNIC struct {
	Label              string            `json:"label,omitempty"`
	Key                string            `json:"key,omitempty"`
	AdapterType        string            `json:"adapter_type,omitempty"`
	MACAddress         string            `json:"mac_address,omitempty"`
	MACAddressType     string            `json:"mac_address_type,omitempty"`
	ConnectedAtPowerOn *bool             `json:"connected_at_poweron,omitempty"`
	GuestConnected     *bool             `json:"guest_net_connected_status,omitempty"`
	Network            *ConnectedNetwork `json:"connected_network_info,omitempty"`
	GuestIPs           []string          `json:"guest_ips"`
}

// HostingHost is the ESXi host running the VM.
type HostingHost struct {
	Name        string `json:"name,omitempty"`
	Model       string `json:"model,omitempty"`
	ESXiVersion string `json:"esxi_version,omitempty"`
	Status      string `json:"status,omitempty"`
	BIOSUUID    string `json:"bios_uuid,omitempty"`
}

// HostingCluster is the cluster of the host.
type HostingCluster struct {
	Name          string `json:"name,omitempty"`
	OverallStatus string `json:"overall_status,omitempty"`
	HAEnabled     *bool  `json:"ha_enabled,omitempty"`
	DRSEnabled    *bool  `json:"drs_enabled,omitempty"`
	DRSBehavior   string `json:"drs_behavior,omitempty"`
}

// HostingContext places the VM in its host, cluster and datacenter.
type HostingContext struct {
	Host             *HostingHost    `json:"host,omitempty"`
	Cluster          *HostingCluster `json:"cluster,omitempty"`
	DatacenterName   string          `json:"datacenter_name,omitempty"`
	ResourcePoolName string          `json:"resource_pool_name,omitempty"`
}

// CustomAttribute is a vCenter custom attribute on the VM.
type CustomAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
