package hcloud

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	compute "google.golang.org/api/compute/v1"

	"github.com/imamik/gkectl/internal/util/labels"
)

// Zones map to Hetzner datacenters (fsn1-dc14) and regions to locations
// (fsn1), so address.RegionOf derives one from the other.

// Metadata keys whose value becomes the server's user data.
var userDataKeys = []string{"user-data", "startup-script"}

// Network zone mapping for locations. Unknown locations fall back to eu-central.
var locationToNetworkZone = map[string]hcloud.NetworkZone{
	"fsn1": hcloud.NetworkZoneEUCentral,
	"nbg1": hcloud.NetworkZoneEUCentral,
	"hel1": hcloud.NetworkZoneEUCentral,
	"ash":  hcloud.NetworkZoneUSEast,
	"hil":  hcloud.NetworkZoneUSWest,
	"sin":  hcloud.NetworkZoneAPSouthEast,
}

// networkZone returns the Hetzner network zone for a location.
func networkZone(location string) hcloud.NetworkZone {
	if zone, ok := locationToNetworkZone[location]; ok {
		return zone
	}
	return hcloud.NetworkZoneEUCentral
}

// lastSegment returns the final element of a resource path or URL.
func lastSegment(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// serverCreatePlan is what InsertInstance derives from a compute.Instance.
type serverCreatePlan struct {
	opts      hcloud.ServerCreateOpts
	networkIP net.IP
	network   *hcloud.Network
	natIP     string
}

// buildServerCreateOpts maps a compute.Instance onto server create options.
// Tags become labels with an empty value so firewalls can select them.
func (c *RealClient) buildServerCreateOpts(ctx context.Context, zone string, inst *compute.Instance) (*serverCreatePlan, error) {
	if inst.Name == "" {
		return nil, fmt.Errorf("instance name is required")
	}
	if inst.MachineType == "" {
		return nil, fmt.Errorf("instance %s: machine type is required", inst.Name)
	}
	image := ""
	if len(inst.Disks) > 0 && inst.Disks[0].InitializeParams != nil {
		image = lastSegment(inst.Disks[0].InitializeParams.SourceImage)
	}
	if image == "" {
		return nil, fmt.Errorf("instance %s: boot disk source image is required", inst.Name)
	}

	lb := labels.New("instance").Merge(inst.Labels)
	if inst.Tags != nil {
		lb.WithTags(inst.Tags.Items)
	}

	plan := &serverCreatePlan{
		opts: hcloud.ServerCreateOpts{
			Name:       inst.Name,
			ServerType: &hcloud.ServerType{Name: lastSegment(inst.MachineType)},
			Image:      &hcloud.Image{Name: image},
			Datacenter: &hcloud.Datacenter{Name: zone},
			Labels:     lb.Build(),
			UserData:   userData(inst.Metadata),
			PublicNet: &hcloud.ServerCreatePublicNet{
				EnableIPv4: true,
				EnableIPv6: true,
			},
		},
	}

	if len(inst.NetworkInterfaces) > 0 {
		nic := inst.NetworkInterfaces[0]
		if nic.Network != "" {
			network, err := c.getNetwork(ctx, "instances.insert", lastSegment(nic.Network))
			if err != nil {
				return nil, err
			}
			plan.network = network
			if nic.NetworkIP != "" {
				ip := net.ParseIP(nic.NetworkIP)
				if ip == nil {
					return nil, fmt.Errorf("invalid private ip: %s", nic.NetworkIP)
				}
				// The address can only be chosen when attaching, so the server
				// starts powered off and is attached before power on.
				plan.networkIP = ip
				plan.opts.StartAfterCreate = hcloud.Ptr(false)
			} else {
				plan.opts.Networks = []*hcloud.Network{network}
			}
		}
		if len(nic.AccessConfigs) > 0 {
			plan.natIP = nic.AccessConfigs[0].NatIP
		}
	}
	return plan, nil
}

// userData picks the first startup script from instance metadata.
func userData(md *compute.Metadata) string {
	if md == nil {
		return ""
	}
	for _, key := range userDataKeys {
		for _, item := range md.Items {
			if item.Key == key && item.Value != nil {
				return *item.Value
			}
		}
	}
	return ""
}

// findFloatingIP returns the floating IP holding ip.
func (c *RealClient) findFloatingIP(ctx context.Context, ip string) (*hcloud.FloatingIP, error) {
	fips, err := c.client.FloatingIP.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list floating IPs: %w", err)
	}
	for _, fip := range fips {
		if fip.IP != nil && fip.IP.String() == ip {
			return fip, nil
		}
	}
	return nil, notFound("instances.insert", "floating IP", ip)
}

// serverStatus maps server states onto Compute Engine instance states.
func serverStatus(s hcloud.ServerStatus) string {
	switch s {
	case hcloud.ServerStatusInitializing:
		return "PROVISIONING"
	case hcloud.ServerStatusStarting:
		return "STAGING"
	case hcloud.ServerStatusRunning:
		return "RUNNING"
	case hcloud.ServerStatusStopping, hcloud.ServerStatusDeleting:
		return "STOPPING"
	case hcloud.ServerStatusOff:
		return "TERMINATED"
	default:
		return strings.ToUpper(string(s))
	}
}

// ServerIPv4 extracts the public IPv4 address from a server, or empty string if not set.
func ServerIPv4(s *hcloud.Server) string {
	if s != nil && s.PublicNet.IPv4.IP != nil {
		return s.PublicNet.IPv4.IP.String()
	}
	return ""
}

// toInstance describes a server as a compute.Instance. natIPs are listed in
// access config order; the primary IPv4 comes last.
func toInstance(s *hcloud.Server, natIPs ...string) *compute.Instance {
	inst := &compute.Instance{
		Id:     uint64(s.ID),
		Name:   s.Name,
		Status: serverStatus(s.Status),
		Labels: map[string]string{},
	}
	if !s.Created.IsZero() {
		inst.CreationTimestamp = s.Created.Format(time.RFC3339)
	}
	if s.ServerType != nil {
		inst.MachineType = s.ServerType.Name
	}
	if s.Datacenter != nil {
		inst.Zone = s.Datacenter.Name
	}

	var tags []string
	for k, v := range labels.Strip(s.Labels) {
		if v == "" {
			tags = append(tags, k)
			continue
		}
		inst.Labels[k] = v
	}
	if len(tags) > 0 {
		sort.Strings(tags)
		inst.Tags = &compute.Tags{Items: tags}
	}

	nic := &compute.NetworkInterface{Name: "nic0"}
	if len(s.PrivateNet) > 0 {
		pn := s.PrivateNet[0]
		if pn.Network != nil {
			nic.Network = strconv.FormatInt(pn.Network.ID, 10)
		}
		if pn.IP != nil {
			nic.NetworkIP = pn.IP.String()
		}
	}
	if primary := ServerIPv4(s); primary != "" {
		natIPs = append(natIPs, primary)
	}
	for _, ip := range natIPs {
		nic.AccessConfigs = append(nic.AccessConfigs, &compute.AccessConfig{
			Name:  "External NAT",
			Type:  "ONE_TO_ONE_NAT",
			NatIP: ip,
		})
	}
	inst.NetworkInterfaces = []*compute.NetworkInterface{nic}
	return inst
}
