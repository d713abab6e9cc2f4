package provisioning

import (
	"context"

	compute "google.golang.org/api/compute/v1"

	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/spec"
)

// CreateVPC creates a VPC network.
func (o *Orchestrator) CreateVPC(ctx context.Context, p spec.VPCParams, wait bool) (*operation.Operation, error) {
	doc, err := spec.BuildVPC(p)
	if err != nil {
		return nil, err
	}
	network := &compute.Network{}
	if err := doc.Decode(network); err != nil {
		return nil, err
	}
	return o.track(ctx, kindNetwork, "global/networks/"+p.Name, wait, func() (operation.Handle, error) {
		return o.compute.InsertNetwork(ctx, network)
	})
}

// CreateSubnet creates a subnetwork in p.Region.
func (o *Orchestrator) CreateSubnet(ctx context.Context, p spec.SubnetParams, wait bool) (*operation.Operation, error) {
	doc, err := spec.BuildSubnet(o.project, p)
	if err != nil {
		return nil, err
	}
	subnet := &compute.Subnetwork{}
	if err := doc.Decode(subnet); err != nil {
		return nil, err
	}
	return o.track(ctx, kindSubnetwork, "regions/"+p.Region+"/subnetworks/"+p.Name, wait, func() (operation.Handle, error) {
		return o.compute.InsertSubnetwork(ctx, p.Region, subnet)
	})
}

// ReserveIP reserves an internal address in a subnetwork.
func (o *Orchestrator) ReserveIP(ctx context.Context, p spec.ReserveIPParams, wait bool) (*operation.Operation, error) {
	doc, err := spec.BuildInternalAddress(p)
	if err != nil {
		return nil, err
	}
	addr := &compute.Address{}
	if err := doc.Decode(addr); err != nil {
		return nil, err
	}
	return o.track(ctx, kindAddress, regionalResource(p.Region, p.Name), wait, func() (operation.Handle, error) {
		return o.compute.InsertAddress(ctx, p.Region, addr)
	})
}

// CreateFirewall creates a firewall rule.
func (o *Orchestrator) CreateFirewall(ctx context.Context, p spec.FirewallParams, wait bool) (*operation.Operation, error) {
	doc, err := spec.BuildFirewall(o.project, p)
	if err != nil {
		return nil, err
	}
	firewall := &compute.Firewall{}
	if err := doc.Decode(firewall); err != nil {
		return nil, err
	}
	return o.track(ctx, kindFirewall, "global/firewalls/"+p.Name, wait, func() (operation.Handle, error) {
		return o.compute.InsertFirewall(ctx, firewall)
	})
}

// CreateRoute creates a static route.
func (o *Orchestrator) CreateRoute(ctx context.Context, p spec.RouteParams, wait bool) (*operation.Operation, error) {
	doc, err := spec.BuildRoute(o.project, p)
	if err != nil {
		return nil, err
	}
	route := &compute.Route{}
	if err := doc.Decode(route); err != nil {
		return nil, err
	}
	return o.track(ctx, kindRoute, "global/routes/"+p.Name, wait, func() (operation.Handle, error) {
		return o.compute.InsertRoute(ctx, route)
	})
}
