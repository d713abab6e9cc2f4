package provisioning

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/gkectl/internal/address"
	"github.com/imamik/gkectl/internal/gcloudcli"
	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/provider"
)

// Errors returned by the orchestrator itself. Validation and provider
// failures keep their own types.
var (
	ErrNoExternalIP  = errors.New("instance has no external IP")
	ErrUnknownAction = errors.New("unknown action")
	ErrNoAdminCLI    = errors.New("cluster admin cli is not configured")
)

// Resource kinds used in events and metrics.
const (
	kindCluster    = "cluster"
	kindNodePool   = "node_pool"
	kindInstance   = "instance"
	kindAddress    = "address"
	kindNetwork    = "network"
	kindSubnetwork = "subnetwork"
	kindFirewall   = "firewall"
	kindRoute      = "route"
)

// AdminCLI runs cluster administration commands that have no REST API.
// Implemented by gcloudcli.Client.
type AdminCLI interface {
	CreateServiceAccount(ctx context.Context, key gcloudcli.KeyFile, cluster address.Address, sa gcloudcli.ServiceAccount) (string, error)
	LookupToken(ctx context.Context, key gcloudcli.KeyFile, cluster address.Address, namespace, secret string) (string, error)
	LookupCertAndEndpoint(ctx context.Context, key gcloudcli.KeyFile, cluster address.Address, namespace string) (ca, endpoint string, err error)
}

// Target names where a call applies. Region and Zone are mutually exclusive;
// Cluster and NodePool are only read by calls that address them.
type Target struct {
	Region   string `mapstructure:"region"`
	Zone     string `mapstructure:"zone"`
	Cluster  string `mapstructure:"cluster"`
	NodePool string `mapstructure:"nodePool"`
}

// Orchestrator submits provisioning requests and optionally waits for them.
// It holds no per-call state and is safe for concurrent use.
type Orchestrator struct {
	project  string
	clusters provider.ClusterAPI
	compute  provider.ComputeAPI
	cli      AdminCLI
	poller   *operation.Poller
	observer Observer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver replaces the default observer.
func WithObserver(o Observer) Option {
	return func(orc *Orchestrator) {
		orc.observer = o
	}
}

// WithPoller replaces the default poller.
func WithPoller(p *operation.Poller) Option {
	return func(orc *Orchestrator) {
		orc.poller = p
	}
}

// WithAdminCLI enables service account management.
func WithAdminCLI(cli AdminCLI) Option {
	return func(orc *Orchestrator) {
		orc.cli = cli
	}
}

// New creates an Orchestrator for project. Without options events go to a
// discarding logger.
func New(project string, clusters provider.ClusterAPI, compute provider.ComputeAPI, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		project:  project,
		clusters: clusters,
		compute:  compute,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.observer == nil {
		o.observer = NewLogObserver(logr.Discard())
	}
	if o.poller == nil {
		o.poller = operation.NewPoller(o.observer.Logger())
	}
	return o
}

// Project returns the project all calls are scoped to.
func (o *Orchestrator) Project() string {
	return o.project
}

// track submits a request and, when wait is set, drives the operation to a
// terminal state. Errors are returned unchanged so callers can classify them.
func (o *Orchestrator) track(ctx context.Context, kind, resource string, wait bool, submit func() (operation.Handle, error)) (*operation.Operation, error) {
	h, err := submit()
	if err != nil {
		LogOperationFailed(o.observer, kind, resource, err)
		return nil, err
	}
	op := h.Operation()
	operationsSubmitted.WithLabelValues(kind).Inc()
	LogOperationSubmitted(o.observer, kind, resource, op)
	if !wait {
		return op, nil
	}

	start := time.Now()
	done, err := o.poller.Wait(ctx, h)
	if err != nil {
		LogOperationFailed(o.observer, kind, resource, err)
		return nil, err
	}
	LogOperationCompleted(o.observer, kind, resource, done, time.Since(start))
	return done, nil
}

func (t Target) location(project string) (address.Address, error) {
	return address.ResolveLocation(project, t.Region, t.Zone)
}

func (t Target) cluster(project string) (address.Address, error) {
	return address.ResolveCluster(project, t.Region, t.Zone, t.Cluster)
}

func (t Target) nodePool(project string) (address.Address, error) {
	return address.ResolveNodePool(project, t.Region, t.Zone, t.Cluster, t.NodePool)
}
