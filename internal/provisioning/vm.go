package provisioning

import (
	"context"
	"fmt"
	"strings"

	compute "google.golang.org/api/compute/v1"

	"github.com/imamik/gkectl/internal/address"
	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/spec"
	"github.com/imamik/gkectl/internal/util/naming"
)

// VMActionName selects what VMAction does to an instance.
type VMActionName string

// Supported VM actions.
const (
	ActionStart   VMActionName = "Start"
	ActionStop    VMActionName = "Stop"
	ActionRestart VMActionName = "Restart"
	ActionDelete  VMActionName = "Delete"
	ActionGet     VMActionName = "Get"
	ActionGetIP   VMActionName = "Get-IP"
)

// VMActions lists the accepted action names.
var VMActions = []VMActionName{ActionStart, ActionStop, ActionRestart, ActionDelete, ActionGet, ActionGetIP}

// ParseVMAction returns the action matching name, ignoring case.
func ParseVMAction(name string) (VMActionName, error) {
	for _, a := range VMActions {
		if strings.EqualFold(string(a), name) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownAction, name)
}

// VMActionResult holds what a VM action produced. Exactly one field is set.
type VMActionResult struct {
	Operation *operation.Operation `json:"operation,omitempty"`
	Instance  *compute.Instance    `json:"instance,omitempty"`
	IP        string               `json:"ip,omitempty"`
}

// LaunchVM creates an instance. With AutoCreateStaticIP an external address
// named <vm>-ext-addr is reserved first, waited on and attached. If the
// instance then cannot be created the address is released again and the
// instance error is returned unchanged.
func (o *Orchestrator) LaunchVM(ctx context.Context, p spec.VMParams, wait bool) (*operation.Operation, error) {
	doc, err := spec.BuildVM(o.project, p)
	if err != nil {
		return nil, err
	}

	comp := NewCompensation(o.observer)
	if p.AutoCreateStaticIP {
		region := p.Region
		if region == "" {
			region = address.RegionOf(p.Zone)
		}
		ip, err := o.reserveExternalAddress(ctx, region, naming.ExternalAddress(p.Name), comp)
		if err != nil {
			return nil, err
		}
		spec.SpliceNatIP(doc, ip)
	}

	inst := &compute.Instance{}
	if err := doc.Decode(inst); err != nil {
		comp.Rollback(ctx, err)
		return nil, err
	}
	op, err := o.track(ctx, kindInstance, zonalResource(p.Zone, p.Name), wait, func() (operation.Handle, error) {
		return o.compute.InsertInstance(ctx, p.Zone, inst)
	})
	if err != nil {
		comp.Rollback(ctx, err)
		return nil, err
	}
	comp.Release()
	return op, nil
}

// reserveExternalAddress reserves name in region, waits for it and returns
// the allocated IP. Once the reservation is done the address is registered
// with comp.
func (o *Orchestrator) reserveExternalAddress(ctx context.Context, region, name string, comp *Compensation) (string, error) {
	doc, err := spec.BuildExternalAddress(name)
	if err != nil {
		return "", err
	}
	addr := &compute.Address{}
	if err := doc.Decode(addr); err != nil {
		return "", err
	}

	resource := regionalResource(region, name)
	h, err := o.compute.InsertAddress(ctx, region, addr)
	if err != nil {
		LogOperationFailed(o.observer, kindAddress, resource, err)
		return "", err
	}
	operationsSubmitted.WithLabelValues(kindAddress).Inc()
	LogOperationSubmitted(o.observer, kindAddress, resource, h.Operation())
	if _, err := o.poller.Wait(ctx, h); err != nil {
		LogOperationFailed(o.observer, kindAddress, resource, err)
		return "", fmt.Errorf("failed to reserve address %s: %w", name, err)
	}
	comp.Register("delete address", resource, func(ctx context.Context) error {
		_, err := o.compute.DeleteAddress(ctx, region, name)
		return err
	})

	reserved, err := o.compute.GetAddress(ctx, region, name)
	if err != nil {
		comp.Rollback(ctx, err)
		return "", err
	}
	if reserved.Address == "" {
		err := fmt.Errorf("address %s was reserved without an IP", name)
		comp.Rollback(ctx, err)
		return "", err
	}
	o.observer.Logger().V(1).Info("static address reserved", "name", name, "ip", reserved.Address)
	return reserved.Address, nil
}

// VMAction runs action on the instance name in zone. Delete stops the
// instance and waits for it to stop before deleting it; wait applies to the
// final request. Get and Get-IP never submit anything.
func (o *Orchestrator) VMAction(ctx context.Context, action VMActionName, zone, name string, wait bool) (*VMActionResult, error) {
	if err := requireFields(field{"zone", zone}, field{"name", name}); err != nil {
		return nil, err
	}
	resource := zonalResource(zone, name)

	var (
		op  *operation.Operation
		err error
	)
	switch action {
	case ActionStart:
		op, err = o.track(ctx, kindInstance, resource, wait, func() (operation.Handle, error) {
			return o.compute.StartInstance(ctx, zone, name)
		})
	case ActionStop:
		op, err = o.track(ctx, kindInstance, resource, wait, func() (operation.Handle, error) {
			return o.compute.StopInstance(ctx, zone, name)
		})
	case ActionRestart:
		op, err = o.track(ctx, kindInstance, resource, wait, func() (operation.Handle, error) {
			return o.compute.ResetInstance(ctx, zone, name)
		})
	case ActionDelete:
		if _, err := o.track(ctx, kindInstance, resource, true, func() (operation.Handle, error) {
			return o.compute.StopInstance(ctx, zone, name)
		}); err != nil {
			return nil, fmt.Errorf("failed to stop %s before deletion: %w", name, err)
		}
		op, err = o.track(ctx, kindInstance, resource, wait, func() (operation.Handle, error) {
			return o.compute.DeleteInstance(ctx, zone, name)
		})
	case ActionGet:
		inst, err := o.compute.GetInstance(ctx, zone, name)
		if err != nil {
			return nil, err
		}
		return &VMActionResult{Instance: inst}, nil
	case ActionGetIP:
		inst, err := o.compute.GetInstance(ctx, zone, name)
		if err != nil {
			return nil, err
		}
		ip, ok := ExternalIP(inst)
		if !ok {
			return nil, fmt.Errorf("%s: %w", resource, ErrNoExternalIP)
		}
		return &VMActionResult{IP: ip}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
	if err != nil {
		return nil, err
	}
	return &VMActionResult{Operation: op}, nil
}

// ExternalIP returns networkInterfaces[0].accessConfigs[0].natIP.
func ExternalIP(inst *compute.Instance) (string, bool) {
	if inst == nil || len(inst.NetworkInterfaces) == 0 {
		return "", false
	}
	nic := inst.NetworkInterfaces[0]
	if nic == nil || len(nic.AccessConfigs) == 0 || nic.AccessConfigs[0] == nil {
		return "", false
	}
	ip := nic.AccessConfigs[0].NatIP
	return ip, ip != ""
}

// ListInstances returns the instances in zone.
func (o *Orchestrator) ListInstances(ctx context.Context, zone string) ([]*compute.Instance, error) {
	if err := requireFields(field{"zone", zone}); err != nil {
		return nil, err
	}
	return o.compute.ListInstances(ctx, zone)
}

func zonalResource(zone, name string) string {
	return fmt.Sprintf("zones/%s/instances/%s", zone, name)
}

func regionalResource(region, name string) string {
	return fmt.Sprintf("regions/%s/addresses/%s", region, name)
}
