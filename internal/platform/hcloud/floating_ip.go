package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	compute "google.golang.org/api/compute/v1"

	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/provider"
	"github.com/imamik/gkectl/internal/util/labels"
)

// Address types.
const (
	addressExternal = "EXTERNAL"
	addressInternal = "INTERNAL"
)

// InsertAddress reserves an external address as an IPv4 floating IP homed in
// the region's location. Internal addresses are assigned when a server is
// attached to a network and cannot be reserved up front.
func (c *RealClient) InsertAddress(ctx context.Context, region string, addr *compute.Address) (operation.Handle, error) {
	resource := regionalName(region, addr.Name)
	if addr.AddressType == addressInternal {
		return nil, unsupported("addresses.insert", resource, "internal address reservation")
	}

	loc, err := c.resolveLocation(ctx, region)
	if err != nil {
		return nil, provider.WrapRequestError("addresses.insert", resource, err)
	}

	opts := hcloud.FloatingIPCreateOpts{
		Name:         hcloud.Ptr(addr.Name),
		Type:         hcloud.FloatingIPTypeIPv4,
		HomeLocation: loc,
		Labels:       labels.New("address").Merge(addr.Labels).Build(),
	}
	if addr.Description != "" {
		opts.Description = hcloud.Ptr(addr.Description)
	}
	res, _, err := c.client.FloatingIP.Create(ctx, opts)
	if err != nil {
		return nil, provider.WrapRequestError("addresses.insert", resource, err)
	}
	return c.actionHandle(resource, []*hcloud.Action{res.Action}), nil
}

// GetAddress reads a floating IP by name.
func (c *RealClient) GetAddress(ctx context.Context, region, name string) (*compute.Address, error) {
	fip, _, err := c.client.FloatingIP.Get(ctx, name)
	if err != nil {
		return nil, provider.WrapRequestError("addresses.get", regionalName(region, name), err)
	}
	if fip == nil {
		return nil, notFound("addresses.get", "floating IP", regionalName(region, name))
	}
	return toAddress(fip), nil
}

// DeleteAddress releases a floating IP. Releasing a missing address succeeds.
func (c *RealClient) DeleteAddress(ctx context.Context, region, name string) (operation.Handle, error) {
	_, _, err := (&DeleteOperation[*hcloud.FloatingIP]{
		Name:         name,
		ResourceType: "floating IP",
		Get:          c.client.FloatingIP.Get,
		Delete: func(ctx context.Context, fip *hcloud.FloatingIP) (*hcloud.Action, *hcloud.Response, error) {
			resp, err := c.client.FloatingIP.Delete(ctx, fip)
			return nil, resp, err
		},
	}).Execute(ctx, c)
	if err != nil {
		return nil, provider.WrapRequestError("addresses.delete", regionalName(region, name), err)
	}
	return c.actionHandle(regionalName(region, name), nil), nil
}

// resolveLocation resolves a location name to a location object.
func (c *RealClient) resolveLocation(ctx context.Context, location string) (*hcloud.Location, error) {
	locObj, _, err := c.client.Location.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to get location %s: %w", location, err)
	}
	if locObj == nil {
		return nil, notFound("locations.get", "location", location)
	}
	return locObj, nil
}

func toAddress(fip *hcloud.FloatingIP) *compute.Address {
	addr := &compute.Address{
		Id:          uint64(fip.ID),
		Name:        fip.Name,
		Description: fip.Description,
		AddressType: addressExternal,
		Labels:      labels.Strip(fip.Labels),
		Status:      "RESERVED",
	}
	if fip.IP != nil {
		addr.Address = fip.IP.String()
	}
	if fip.HomeLocation != nil {
		addr.Region = fip.HomeLocation.Name
	}
	if fip.Server != nil {
		addr.Status = "IN_USE"
	}
	return addr
}
