package provisioning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	compute "google.golang.org/api/compute/v1"
	container "google.golang.org/api/container/v1"

	"github.com/imamik/gkectl/internal/address"
	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/provider"
)

const testProject = "proj"

// scriptedHandle starts PENDING and yields outcomes on successive fetches.
type scriptedHandle struct {
	op       *operation.Operation
	outcomes []*operation.Operation
	fetchErr error
	fetches  int
}

func (h *scriptedHandle) Operation() *operation.Operation { return h.op }

func (h *scriptedHandle) Interval() time.Duration { return time.Second }

func (h *scriptedHandle) Fetch(context.Context) (*operation.Operation, error) {
	h.fetches++
	if h.fetchErr != nil {
		return nil, h.fetchErr
	}
	if len(h.outcomes) == 0 {
		return nil, errors.New("fetched more often than scripted")
	}
	h.op, h.outcomes = h.outcomes[0], h.outcomes[1:]
	return h.op, nil
}

func pending(name string, outcomes ...*operation.Operation) *scriptedHandle {
	return &scriptedHandle{
		op:       &operation.Operation{Name: name, Status: operation.StatusPending},
		outcomes: outcomes,
	}
}

func done(name string) *operation.Operation {
	return &operation.Operation{Name: name, Status: operation.StatusDone, Progress: 100}
}

func failed(name, code, message string) *operation.Operation {
	return &operation.Operation{
		Name:   name,
		Status: operation.StatusDone,
		Errors: []operation.Failure{{Code: code, Message: message}},
	}
}

// fakeProvider implements provider.ClusterAPI and provider.ComputeAPI. Every
// mutating call returns the handle scripted for its method, or a handle that
// settles DONE after one fetch.
type fakeProvider struct {
	mu sync.Mutex

	calls   []string
	handles map[string]*scriptedHandle
	errs    map[string]error

	cluster   *container.Cluster
	clusters  []*container.Cluster
	nodePools []*container.NodePool
	address   *compute.Address
	instance  *compute.Instance
	instances []*compute.Instance

	gotCluster  *container.Cluster
	gotNodePool *container.NodePool
	gotAddress  *compute.Address
	gotInstance *compute.Instance
	gotNetwork  *compute.Network
	gotSubnet   *compute.Subnetwork
	gotFirewall *compute.Firewall
	gotRoute    *compute.Route
}

var (
	_ provider.ClusterAPI = (*fakeProvider)(nil)
	_ provider.ComputeAPI = (*fakeProvider)(nil)
)

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		handles: map[string]*scriptedHandle{},
		errs:    map[string]error{},
	}
}

func (f *fakeProvider) record(method, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method+" "+target)
	return f.errs[method]
}

func (f *fakeProvider) submit(method, target string) (operation.Handle, error) {
	if err := f.record(method, target); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.handles[method]; ok {
		return h, nil
	}
	name := fmt.Sprintf("op-%d", len(f.calls))
	return pending(name, done(name)), nil
}

// called returns the recorded calls of method.
func (f *fakeProvider) called(method string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if len(c) > len(method) && c[:len(method)+1] == method+" " {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeProvider) CreateCluster(_ context.Context, parent address.Address, cluster *container.Cluster) (operation.Handle, error) {
	f.gotCluster = cluster
	return f.submit("CreateCluster", parent.Parent())
}

func (f *fakeProvider) DeleteCluster(_ context.Context, cluster address.Address) (operation.Handle, error) {
	return f.submit("DeleteCluster", cluster.String())
}

func (f *fakeProvider) GetCluster(_ context.Context, cluster address.Address) (*container.Cluster, error) {
	if err := f.record("GetCluster", cluster.String()); err != nil {
		return nil, err
	}
	return f.cluster, nil
}

func (f *fakeProvider) ListClusters(_ context.Context, parent address.Address) ([]*container.Cluster, error) {
	if err := f.record("ListClusters", parent.Parent()); err != nil {
		return nil, err
	}
	return f.clusters, nil
}

func (f *fakeProvider) CreateNodePool(_ context.Context, cluster address.Address, pool *container.NodePool) (operation.Handle, error) {
	f.gotNodePool = pool
	return f.submit("CreateNodePool", cluster.String())
}

func (f *fakeProvider) DeleteNodePool(_ context.Context, pool address.Address) (operation.Handle, error) {
	return f.submit("DeleteNodePool", pool.String())
}

func (f *fakeProvider) ListNodePools(_ context.Context, cluster address.Address) ([]*container.NodePool, error) {
	if err := f.record("ListNodePools", cluster.String()); err != nil {
		return nil, err
	}
	return f.nodePools, nil
}

func (f *fakeProvider) InsertAddress(_ context.Context, region string, addr *compute.Address) (operation.Handle, error) {
	f.gotAddress = addr
	return f.submit("InsertAddress", region+"/"+addr.Name)
}

func (f *fakeProvider) GetAddress(_ context.Context, region, name string) (*compute.Address, error) {
	if err := f.record("GetAddress", region+"/"+name); err != nil {
		return nil, err
	}
	return f.address, nil
}

func (f *fakeProvider) DeleteAddress(_ context.Context, region, name string) (operation.Handle, error) {
	return f.submit("DeleteAddress", region+"/"+name)
}

func (f *fakeProvider) InsertInstance(_ context.Context, zone string, inst *compute.Instance) (operation.Handle, error) {
	f.gotInstance = inst
	return f.submit("InsertInstance", zone+"/"+inst.Name)
}

func (f *fakeProvider) GetInstance(_ context.Context, zone, name string) (*compute.Instance, error) {
	if err := f.record("GetInstance", zone+"/"+name); err != nil {
		return nil, err
	}
	return f.instance, nil
}

func (f *fakeProvider) ListInstances(_ context.Context, zone string) ([]*compute.Instance, error) {
	if err := f.record("ListInstances", zone); err != nil {
		return nil, err
	}
	return f.instances, nil
}

func (f *fakeProvider) StartInstance(_ context.Context, zone, name string) (operation.Handle, error) {
	return f.submit("StartInstance", zone+"/"+name)
}

func (f *fakeProvider) StopInstance(_ context.Context, zone, name string) (operation.Handle, error) {
	return f.submit("StopInstance", zone+"/"+name)
}

func (f *fakeProvider) ResetInstance(_ context.Context, zone, name string) (operation.Handle, error) {
	return f.submit("ResetInstance", zone+"/"+name)
}

func (f *fakeProvider) DeleteInstance(_ context.Context, zone, name string) (operation.Handle, error) {
	return f.submit("DeleteInstance", zone+"/"+name)
}

func (f *fakeProvider) InsertNetwork(_ context.Context, network *compute.Network) (operation.Handle, error) {
	f.gotNetwork = network
	return f.submit("InsertNetwork", network.Name)
}

func (f *fakeProvider) InsertSubnetwork(_ context.Context, region string, subnet *compute.Subnetwork) (operation.Handle, error) {
	f.gotSubnet = subnet
	return f.submit("InsertSubnetwork", region+"/"+subnet.Name)
}

func (f *fakeProvider) InsertFirewall(_ context.Context, firewall *compute.Firewall) (operation.Handle, error) {
	f.gotFirewall = firewall
	return f.submit("InsertFirewall", firewall.Name)
}

func (f *fakeProvider) InsertRoute(_ context.Context, route *compute.Route) (operation.Handle, error) {
	f.gotRoute = route
	return f.submit("InsertRoute", route.Name)
}

// recordingObserver keeps every event in memory.
type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingObserver) Event(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) Logger() logr.Logger { return logr.Discard() }

func (r *recordingObserver) WithFields(map[string]string) Observer { return r }

func (r *recordingObserver) ofType(typ EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// testOrchestrator returns an orchestrator over a fresh fake provider whose
// poller records the intervals it sleeps instead of sleeping.
func testOrchestrator(t *testing.T, opts ...Option) (*Orchestrator, *fakeProvider, *recordingObserver, *[]time.Duration) {
	t.Helper()
	fake := newFakeProvider()
	obs := &recordingObserver{}
	var slept []time.Duration
	poller := operation.NewPoller(logr.Discard(), operation.WithSleep(func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}))
	opts = append([]Option{WithObserver(obs), WithPoller(poller)}, opts...)
	return New(testProject, fake, fake, opts...), fake, obs, &slept
}
