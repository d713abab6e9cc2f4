// Package provisioning creates, changes and removes GKE clusters, node pools,
// VM instances and VPC resources.
//
// An [Orchestrator] validates parameters, builds the request document with
// package spec, submits it through a provider client and, when asked to,
// waits for the resulting operation with an [operation.Poller].
//
// # Compensation
//
// Launching a VM with an automatically reserved static address is the only
// multi-step sequence. The address is registered with a [Compensation] and
// released again when the instance cannot be created. A failed release is
// reported through the [Observer] and counted, never returned.
//
// # Observability
//
// Every submit, completion and rollback step is emitted as an [Event] on the
// Observer. [LogObserver] writes them to a logr.Logger.
package provisioning
