package handlers

import (
	"context"

	"github.com/imamik/gkectl/internal/provisioning"
)

// VMAction runs a named action on an instance and prints what it produced.
func VMAction(ctx context.Context, g Globals, action, zone, name string, wait bool) error {
	parsed, err := provisioning.ParseVMAction(action)
	if err != nil {
		return err
	}

	ctx, sess, err := setup(ctx, g, scopeCompute)
	if err != nil {
		return err
	}
	defer sess.close()

	result, err := sess.orchestrator.VMAction(ctx, parsed, zone, name, wait)
	if err != nil {
		return err
	}
	return printResult(sess.output, result)
}

// ListInstances prints the instances in zone.
func ListInstances(ctx context.Context, g Globals, zone string) error {
	ctx, sess, err := setup(ctx, g, scopeCompute)
	if err != nil {
		return err
	}
	defer sess.close()

	instances, err := sess.orchestrator.ListInstances(ctx, zone)
	if err != nil {
		return err
	}
	return printResult(sess.output, instances)
}
