package gcp

import (
	"context"
	"fmt"

	compute "google.golang.org/api/compute/v1"

	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/provider"
)

// InsertAddress reserves a regional address.
func (c *Client) InsertAddress(ctx context.Context, region string, addr *compute.Address) (operation.Handle, error) {
	op, err := c.compute.Addresses.Insert(c.project, region, addr).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("addresses.insert", regionalName(region, addr.Name), err)
	}
	return c.computeHandle(op, c.regionWait(region)), nil
}

// GetAddress reads a regional address.
func (c *Client) GetAddress(ctx context.Context, region, name string) (*compute.Address, error) {
	addr, err := c.compute.Addresses.Get(c.project, region, name).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("addresses.get", regionalName(region, name), err)
	}
	return addr, nil
}

// DeleteAddress releases a regional address.
func (c *Client) DeleteAddress(ctx context.Context, region, name string) (operation.Handle, error) {
	op, err := c.compute.Addresses.Delete(c.project, region, name).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("addresses.delete", regionalName(region, name), err)
	}
	return c.computeHandle(op, c.regionWait(region)), nil
}

// InsertInstance creates a VM.
func (c *Client) InsertInstance(ctx context.Context, zone string, inst *compute.Instance) (operation.Handle, error) {
	op, err := c.compute.Instances.Insert(c.project, zone, inst).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("instances.insert", zonalName(zone, inst.Name), err)
	}
	return c.computeHandle(op, c.zoneWait(zone)), nil
}

// GetInstance reads a VM.
func (c *Client) GetInstance(ctx context.Context, zone, name string) (*compute.Instance, error) {
	inst, err := c.compute.Instances.Get(c.project, zone, name).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("instances.get", zonalName(zone, name), err)
	}
	return inst, nil
}

// ListInstances lists all VMs in a zone.
func (c *Client) ListInstances(ctx context.Context, zone string) ([]*compute.Instance, error) {
	var out []*compute.Instance
	err := c.compute.Instances.List(c.project, zone).Pages(ctx, func(page *compute.InstanceList) error {
		out = append(out, page.Items...)
		return nil
	})
	if err != nil {
		return nil, provider.WrapRequestError("instances.list", zone, err)
	}
	return out, nil
}

// StartInstance starts a stopped VM.
func (c *Client) StartInstance(ctx context.Context, zone, name string) (operation.Handle, error) {
	op, err := c.compute.Instances.Start(c.project, zone, name).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("instances.start", zonalName(zone, name), err)
	}
	return c.computeHandle(op, c.zoneWait(zone)), nil
}

// StopInstance stops a running VM.
func (c *Client) StopInstance(ctx context.Context, zone, name string) (operation.Handle, error) {
	op, err := c.compute.Instances.Stop(c.project, zone, name).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("instances.stop", zonalName(zone, name), err)
	}
	return c.computeHandle(op, c.zoneWait(zone)), nil
}

// ResetInstance hard-resets a VM.
func (c *Client) ResetInstance(ctx context.Context, zone, name string) (operation.Handle, error) {
	op, err := c.compute.Instances.Reset(c.project, zone, name).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("instances.reset", zonalName(zone, name), err)
	}
	return c.computeHandle(op, c.zoneWait(zone)), nil
}

// DeleteInstance deletes a VM.
func (c *Client) DeleteInstance(ctx context.Context, zone, name string) (operation.Handle, error) {
	op, err := c.compute.Instances.Delete(c.project, zone, name).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("instances.delete", zonalName(zone, name), err)
	}
	return c.computeHandle(op, c.zoneWait(zone)), nil
}

// InsertNetwork creates a VPC network.
func (c *Client) InsertNetwork(ctx context.Context, network *compute.Network) (operation.Handle, error) {
	if !network.AutoCreateSubnetworks {
		network.ForceSendFields = append(network.ForceSendFields, "AutoCreateSubnetworks")
	}
	op, err := c.compute.Networks.Insert(c.project, network).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("networks.insert", network.Name, err)
	}
	return c.computeHandle(op, c.globalWait()), nil
}

// InsertSubnetwork creates a subnetwork in region.
func (c *Client) InsertSubnetwork(ctx context.Context, region string, subnet *compute.Subnetwork) (operation.Handle, error) {
	op, err := c.compute.Subnetworks.Insert(c.project, region, subnet).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("subnetworks.insert", regionalName(region, subnet.Name), err)
	}
	return c.computeHandle(op, c.regionWait(region)), nil
}

// InsertFirewall creates a firewall rule.
func (c *Client) InsertFirewall(ctx context.Context, firewall *compute.Firewall) (operation.Handle, error) {
	op, err := c.compute.Firewalls.Insert(c.project, firewall).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("firewalls.insert", firewall.Name, err)
	}
	return c.computeHandle(op, c.globalWait()), nil
}

// InsertRoute creates a static route. Priority 0 is sent explicitly since
// the API would otherwise apply its own default.
func (c *Client) InsertRoute(ctx context.Context, route *compute.Route) (operation.Handle, error) {
	if route.Priority == 0 {
		route.ForceSendFields = append(route.ForceSendFields, "Priority")
	}
	op, err := c.compute.Routes.Insert(c.project, route).Context(ctx).Do()
	if err != nil {
		return nil, provider.WrapRequestError("routes.insert", route.Name, err)
	}
	return c.computeHandle(op, c.globalWait()), nil
}

func zonalName(zone, name string) string {
	return fmt.Sprintf("zones/%s/%s", zone, name)
}

func regionalName(region, name string) string {
	return fmt.Sprintf("regions/%s/%s", region, name)
}
