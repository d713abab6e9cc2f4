// Package hcloud implements provider.ComputeAPI on the Hetzner Cloud API.
//
// Compute Engine records are mapped onto Hetzner resources:
//
//   - zones are datacenters (fsn1-dc14) and regions are locations (fsn1)
//   - instances are servers; network tags become labels with an empty value
//   - external addresses are IPv4 floating IPs
//   - VPC networks, subnetworks and routes map onto networks, cloud subnets
//     and network routes
//   - firewalls are Hetzner firewalls built from the allow rules; target tags
//     become label selectors
//
// Some Compute Engine fields have no Hetzner counterpart and are ignored:
//
//   - instances: description, scheduling, service accounts, canIpForward,
//     boot disk type, size and auto-delete (the server type fixes the disk),
//     and every network interface after the first
//   - routes: name, priority and tags; Hetzner routes are identified by
//     destination and gateway only
//   - firewalls: priority
//   - subnetworks: description, private Google access and flow logs
//   - networks: description
//
// Internal address reservation, auto-created subnetworks and deny rules are
// rejected with [ErrUnsupported] instead.
//
// Created servers, floating IPs, networks and firewalls carry the gkectl.io
// labels from package labels; those keys are hidden again when servers and
// floating IPs are read back.
//
// Hetzner actions are event-driven: a returned handle waits on the actions
// through the action waiter and reports each finished action as progress.
// Multi-step requests (attach to a network and power on, assign a floating
// IP) run their follow-up steps inside the same operation.
//
// Deletes use [DeleteOperation], which retries locked resources with
// exponential backoff within the configured delete timeout.
package hcloud
