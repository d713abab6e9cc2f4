package hcloud

import (
	"context"
	"fmt"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	compute "google.golang.org/api/compute/v1"

	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/provider"
	"github.com/imamik/gkectl/internal/util/labels"
)

// DefaultNetworkRange is used for networks created without an IPv4 range;
// subnets are carved out of it.
const DefaultNetworkRange = "10.0.0.0/8"

// InsertNetwork creates a network. Networks with auto-created subnetworks
// have no Hetzner equivalent.
func (c *RealClient) InsertNetwork(ctx context.Context, network *compute.Network) (operation.Handle, error) {
	if network.AutoCreateSubnetworks {
		return nil, unsupported("networks.insert", network.Name, "auto-created subnetworks")
	}
	ipRange := network.IPv4Range
	if ipRange == "" {
		ipRange = DefaultNetworkRange
	}
	_, ipNet, err := net.ParseCIDR(ipRange)
	if err != nil {
		return nil, fmt.Errorf("invalid network ip range: %w", err)
	}

	created, _, err := c.client.Network.Create(ctx, hcloud.NetworkCreateOpts{
		Name:    network.Name,
		IPRange: ipNet,
		Labels:  labels.New("network").Build(),
	})
	if err != nil {
		return nil, provider.WrapRequestError("networks.insert", network.Name, err)
	}
	c.logger.V(1).Info("network created", "name", created.Name, "id", created.ID)
	return c.actionHandle("global/networks/"+network.Name, nil), nil
}

// InsertSubnetwork adds a cloud subnet to the named network in the region's network zone.
func (c *RealClient) InsertSubnetwork(ctx context.Context, region string, subnet *compute.Subnetwork) (operation.Handle, error) {
	resource := regionalName(region, subnet.Name)
	network, err := c.getNetwork(ctx, "subnetworks.insert", lastSegment(subnet.Network))
	if err != nil {
		return nil, err
	}
	_, ipNet, err := net.ParseCIDR(subnet.IpCidrRange)
	if err != nil {
		return nil, fmt.Errorf("invalid subnet ip range: %w", err)
	}

	action, _, err := c.client.Network.AddSubnet(ctx, network, hcloud.NetworkAddSubnetOpts{
		Subnet: hcloud.NetworkSubnet{
			Type:        hcloud.NetworkSubnetTypeCloud,
			IPRange:     ipNet,
			NetworkZone: networkZone(region),
		},
	})
	if err != nil {
		return nil, provider.WrapRequestError("subnetworks.insert", resource, err)
	}
	return c.actionHandle(resource, []*hcloud.Action{action}), nil
}

// InsertRoute adds a static route to the named network. Route names,
// priorities and tags are not kept by Hetzner Cloud.
func (c *RealClient) InsertRoute(ctx context.Context, route *compute.Route) (operation.Handle, error) {
	network, err := c.getNetwork(ctx, "routes.insert", lastSegment(route.Network))
	if err != nil {
		return nil, err
	}
	_, dest, err := net.ParseCIDR(route.DestRange)
	if err != nil {
		return nil, fmt.Errorf("invalid route destination: %w", err)
	}
	gateway := net.ParseIP(route.NextHopIp)
	if gateway == nil {
		return nil, fmt.Errorf("invalid route next hop: %s", route.NextHopIp)
	}

	action, _, err := c.client.Network.AddRoute(ctx, network, hcloud.NetworkAddRouteOpts{
		Route: hcloud.NetworkRoute{Destination: dest, Gateway: gateway},
	})
	if err != nil {
		return nil, provider.WrapRequestError("routes.insert", route.Name, err)
	}
	return c.actionHandle("global/routes/"+route.Name, []*hcloud.Action{action}), nil
}

// getNetwork looks a network up by name.
func (c *RealClient) getNetwork(ctx context.Context, op, name string) (*hcloud.Network, error) {
	network, _, err := c.client.Network.Get(ctx, name)
	if err != nil {
		return nil, provider.WrapRequestError(op, name, err)
	}
	if network == nil {
		return nil, notFound(op, "network", name)
	}
	return network, nil
}
