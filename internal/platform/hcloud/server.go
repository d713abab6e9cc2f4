package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	compute "google.golang.org/api/compute/v1"

	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/provider"
	"github.com/imamik/gkectl/internal/util/retry"
)

// InsertInstance creates a server. A reserved address given as the first
// access config's natIP is looked up before the server is created and
// assigned once creation finished, as part of the same operation.
func (c *RealClient) InsertInstance(ctx context.Context, zone string, inst *compute.Instance) (operation.Handle, error) {
	plan, err := c.buildServerCreateOpts(ctx, zone, inst)
	if err != nil {
		return nil, err
	}

	var fip *hcloud.FloatingIP
	if plan.natIP != "" {
		if fip, err = c.findFloatingIP(ctx, plan.natIP); err != nil {
			return nil, err
		}
	}

	result, err := c.createServerWithRetry(ctx, plan.opts)
	if err != nil {
		return nil, provider.WrapRequestError("instances.insert", inst.Name, err)
	}

	var steps []step
	if plan.networkIP != nil {
		steps = append(steps,
			func(ctx context.Context) ([]*hcloud.Action, error) {
				action, _, err := c.client.Server.AttachToNetwork(ctx, result.Server, hcloud.ServerAttachToNetworkOpts{
					Network: plan.network,
					IP:      plan.networkIP,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to attach server to network: %w", err)
				}
				return []*hcloud.Action{action}, nil
			},
			func(ctx context.Context) ([]*hcloud.Action, error) {
				action, _, err := c.client.Server.Poweron(ctx, result.Server)
				if err != nil {
					return nil, fmt.Errorf("failed to power on server: %w", err)
				}
				return []*hcloud.Action{action}, nil
			},
		)
	}
	if fip != nil {
		steps = append(steps, func(ctx context.Context) ([]*hcloud.Action, error) {
			action, _, err := c.client.FloatingIP.Assign(ctx, fip, result.Server)
			if err != nil {
				return nil, fmt.Errorf("failed to assign floating IP: %w", err)
			}
			return []*hcloud.Action{action}, nil
		})
	}

	actions := append([]*hcloud.Action{result.Action}, result.NextActions...)
	return c.actionHandle(zonalName(zone, inst.Name), actions, steps...), nil
}

// createServerWithRetry creates a server, retrying while a dependency is locked.
func (c *RealClient) createServerWithRetry(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, error) {
	var result hcloud.ServerCreateResult
	err := retry.Do(ctx, func() error {
		res, _, err := c.client.Server.Create(ctx, opts)
		if err != nil {
			if !isResourceLocked(err) {
				return retry.Permanent(err)
			}
			return err
		}
		result = res
		return nil
	}, retry.WithRetries(c.timeouts.RetryMaxAttempts), retry.WithDelay(c.timeouts.RetryInitialDelay))
	return result, err
}

// GetInstance describes a server. Assigned floating IPs are listed before
// the primary IPv4.
func (c *RealClient) GetInstance(ctx context.Context, zone, name string) (*compute.Instance, error) {
	server, err := c.getServer(ctx, "instances.get", zone, name)
	if err != nil {
		return nil, err
	}
	var natIPs []string
	for _, ref := range server.PublicNet.FloatingIPs {
		fip, _, err := c.client.FloatingIP.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, provider.WrapRequestError("instances.get", zonalName(zone, name), err)
		}
		if fip != nil && fip.IP != nil {
			natIPs = append(natIPs, fip.IP.String())
		}
	}
	return toInstance(server, natIPs...), nil
}

// ListInstances lists the servers in a datacenter.
func (c *RealClient) ListInstances(ctx context.Context, zone string) ([]*compute.Instance, error) {
	servers, err := c.client.Server.All(ctx)
	if err != nil {
		return nil, provider.WrapRequestError("instances.list", zone, err)
	}
	var out []*compute.Instance
	for _, s := range servers {
		if s.Datacenter != nil && s.Datacenter.Name == zone {
			out = append(out, toInstance(s))
		}
	}
	return out, nil
}

// StartInstance powers a server on.
func (c *RealClient) StartInstance(ctx context.Context, zone, name string) (operation.Handle, error) {
	return c.serverAction(ctx, "instances.start", zone, name, c.client.Server.Poweron)
}

// StopInstance powers a server off.
func (c *RealClient) StopInstance(ctx context.Context, zone, name string) (operation.Handle, error) {
	return c.serverAction(ctx, "instances.stop", zone, name, c.client.Server.Poweroff)
}

// ResetInstance hard-resets a server.
func (c *RealClient) ResetInstance(ctx context.Context, zone, name string) (operation.Handle, error) {
	return c.serverAction(ctx, "instances.reset", zone, name, c.client.Server.Reset)
}

// DeleteInstance deletes a server. Deleting a missing server reports a 404.
func (c *RealClient) DeleteInstance(ctx context.Context, zone, name string) (operation.Handle, error) {
	action, found, err := (&DeleteOperation[*hcloud.Server]{
		Name:         name,
		ResourceType: "server",
		Get:          c.client.Server.Get,
		Delete: func(ctx context.Context, server *hcloud.Server) (*hcloud.Action, *hcloud.Response, error) {
			res, resp, err := c.client.Server.DeleteWithResult(ctx, server)
			if err != nil {
				return nil, resp, err
			}
			return res.Action, resp, nil
		},
	}).Execute(ctx, c)
	if err != nil {
		return nil, provider.WrapRequestError("instances.delete", zonalName(zone, name), err)
	}
	if !found {
		return nil, notFound("instances.delete", "server", name)
	}
	return c.actionHandle(zonalName(zone, name), []*hcloud.Action{action}), nil
}

type serverActionFunc func(ctx context.Context, server *hcloud.Server) (*hcloud.Action, *hcloud.Response, error)

func (c *RealClient) serverAction(ctx context.Context, op, zone, name string, fn serverActionFunc) (operation.Handle, error) {
	server, err := c.getServer(ctx, op, zone, name)
	if err != nil {
		return nil, err
	}
	action, _, err := fn(ctx, server)
	if err != nil {
		return nil, provider.WrapRequestError(op, zonalName(zone, name), err)
	}
	return c.actionHandle(zonalName(zone, name), []*hcloud.Action{action}), nil
}

// getServer looks a server up by name and checks it lives in zone.
func (c *RealClient) getServer(ctx context.Context, op, zone, name string) (*hcloud.Server, error) {
	server, _, err := c.client.Server.Get(ctx, name)
	if err != nil {
		return nil, provider.WrapRequestError(op, zonalName(zone, name), err)
	}
	if server == nil || (zone != "" && server.Datacenter != nil && server.Datacenter.Name != zone) {
		return nil, notFound(op, "server", zonalName(zone, name))
	}
	return server, nil
}

func zonalName(zone, name string) string {
	return fmt.Sprintf("zones/%s/%s", zone, name)
}

func regionalName(region, name string) string {
	return fmt.Sprintf("regions/%s/%s", region, name)
}
