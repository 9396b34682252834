package visual

import "testing"

func TestPayloadFields(t *testing.T) {
	vcpus, ram := 4, 8192
	capacity := 100.0

	tests := []struct {
		name    string
		payload Payload
		kind    string
		field   string
		want    string
	}{
		{"vm vcpus", VMPayload{VCPUs: &vcpus}, "vm", "vCPUs", "4"},
		{"vm ram", VMPayload{RAMMB: &ram}, "vm", "RAM", "8192 MB"},
		{"vm missing os", VMPayload{}, "vm", "Guest OS", NotAvailable},
		{"vm disks", VMPayload{Disks: 2, DiskTotalGB: 80}, "vm", "Disks", "2 (80 GB)"},
		{"disk capacity", DiskPayload{CapacityGB: &capacity}, "disk", "Capacity", "100 GB"},
		{"nic ips", NICPayload{GuestIPs: []string{"10.0.0.1", "10.0.0.2"}}, "nic", "IPs", "10.0.0.1, 10.0.0.2"},
		{"capacity utilization", CapacityPayload{Utilization: "75.0%"}, "capacity", "Utilization", "75.0%"},
		{"generic sorted", GenericPayload{Attributes: map[string]any{"b": 2, "a": 1}}, "generic", "a", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.payload.PayloadKind(); got != tt.kind {
				t.Errorf("PayloadKind() = %s, want %s", got, tt.kind)
			}
			for _, f := range tt.payload.Fields() {
				if f.Name == tt.field {
					if f.Value != tt.want {
						t.Errorf("%s = %q, want %q", tt.field, f.Value, tt.want)
					}
					return
				}
			}
			t.Errorf("field %q not found", tt.field)
		})
	}
}

func TestGenericPayloadOrder(t *testing.T) {
	fields := GenericPayload{Attributes: map[string]any{"zeta": 1, "alpha": 2, "mid": 3}}.Fields()
	if len(fields) != 3 || fields[0].Name != "alpha" || fields[2].Name != "zeta" {
		t.Errorf("Fields() = %v", fields)
	}
}
