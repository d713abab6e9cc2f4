package handlers

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	compute "google.golang.org/api/compute/v1"
	container "google.golang.org/api/container/v1"

	"github.com/imamik/gkectl/internal/address"
	"github.com/imamik/gkectl/internal/config"
	"github.com/imamik/gkectl/internal/gcloudcli"
	"github.com/imamik/gkectl/internal/logging"
	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/provider"
	"github.com/imamik/gkectl/internal/provisioning"
	"github.com/imamik/gkectl/internal/spec"
)

const testProject = "proj"

// fakeCloud records every call and submits operations that are already DONE.
type fakeCloud struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error

	clusters  []*container.Cluster
	cluster   *container.Cluster
	nodePools []*container.NodePool
	instance  *compute.Instance
	instances []*compute.Instance
	address   *compute.Address

	gotCluster  *container.Cluster
	gotNodePool *container.NodePool
	gotInstance *compute.Instance
	gotNetwork  *compute.Network
	gotFirewall *compute.Firewall
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{errs: map[string]error{}}
}

func (f *fakeCloud) record(method, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method+" "+target)
	return f.errs[method]
}

func (f *fakeCloud) submit(method, target string) (operation.Handle, error) {
	if err := f.record(method, target); err != nil {
		return nil, err
	}
	op := &operation.Operation{Name: "op-" + method, Status: operation.StatusDone, Progress: 100, TargetLink: target}
	return operation.NewPollHandle(op, func(context.Context, string) (*operation.Operation, error) {
		return op, nil
	}, 0), nil
}

func (f *fakeCloud) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeCloud) CreateCluster(_ context.Context, parent address.Address, c *container.Cluster) (operation.Handle, error) {
	f.mu.Lock()
	f.gotCluster = c
	f.mu.Unlock()
	return f.submit("CreateCluster", parent.Parent())
}

func (f *fakeCloud) DeleteCluster(_ context.Context, c address.Address) (operation.Handle, error) {
	return f.submit("DeleteCluster", c.String())
}

func (f *fakeCloud) GetCluster(_ context.Context, c address.Address) (*container.Cluster, error) {
	return f.cluster, f.record("GetCluster", c.String())
}

func (f *fakeCloud) ListClusters(_ context.Context, parent address.Address) ([]*container.Cluster, error) {
	return f.clusters, f.record("ListClusters", parent.Parent())
}

func (f *fakeCloud) CreateNodePool(_ context.Context, c address.Address, p *container.NodePool) (operation.Handle, error) {
	f.mu.Lock()
	f.gotNodePool = p
	f.mu.Unlock()
	return f.submit("CreateNodePool", c.String())
}

func (f *fakeCloud) DeleteNodePool(_ context.Context, p address.Address) (operation.Handle, error) {
	return f.submit("DeleteNodePool", p.String())
}

func (f *fakeCloud) ListNodePools(_ context.Context, c address.Address) ([]*container.NodePool, error) {
	return f.nodePools, f.record("ListNodePools", c.String())
}

func (f *fakeCloud) InsertAddress(_ context.Context, region string, a *compute.Address) (operation.Handle, error) {
	return f.submit("InsertAddress", region+"/"+a.Name)
}

func (f *fakeCloud) GetAddress(_ context.Context, region, name string) (*compute.Address, error) {
	return f.address, f.record("GetAddress", region+"/"+name)
}

func (f *fakeCloud) DeleteAddress(_ context.Context, region, name string) (operation.Handle, error) {
	return f.submit("DeleteAddress", region+"/"+name)
}

func (f *fakeCloud) InsertInstance(_ context.Context, zone string, inst *compute.Instance) (operation.Handle, error) {
	f.mu.Lock()
	f.gotInstance = inst
	f.mu.Unlock()
	return f.submit("InsertInstance", zone+"/"+inst.Name)
}

func (f *fakeCloud) GetInstance(_ context.Context, zone, name string) (*compute.Instance, error) {
	return f.instance, f.record("GetInstance", zone+"/"+name)
}

func (f *fakeCloud) ListInstances(_ context.Context, zone string) ([]*compute.Instance, error) {
	return f.instances, f.record("ListInstances", zone)
}

func (f *fakeCloud) StartInstance(_ context.Context, zone, name string) (operation.Handle, error) {
	return f.submit("StartInstance", zone+"/"+name)
}

func (f *fakeCloud) StopInstance(_ context.Context, zone, name string) (operation.Handle, error) {
	return f.submit("StopInstance", zone+"/"+name)
}

func (f *fakeCloud) ResetInstance(_ context.Context, zone, name string) (operation.Handle, error) {
	return f.submit("ResetInstance", zone+"/"+name)
}

func (f *fakeCloud) DeleteInstance(_ context.Context, zone, name string) (operation.Handle, error) {
	return f.submit("DeleteInstance", zone+"/"+name)
}

func (f *fakeCloud) InsertNetwork(_ context.Context, n *compute.Network) (operation.Handle, error) {
	f.mu.Lock()
	f.gotNetwork = n
	f.mu.Unlock()
	return f.submit("InsertNetwork", n.Name)
}

func (f *fakeCloud) InsertSubnetwork(_ context.Context, region string, s *compute.Subnetwork) (operation.Handle, error) {
	return f.submit("InsertSubnetwork", region+"/"+s.Name)
}

func (f *fakeCloud) InsertFirewall(_ context.Context, fw *compute.Firewall) (operation.Handle, error) {
	f.mu.Lock()
	f.gotFirewall = fw
	f.mu.Unlock()
	return f.submit("InsertFirewall", fw.Name)
}

func (f *fakeCloud) InsertRoute(_ context.Context, r *compute.Route) (operation.Handle, error) {
	return f.submit("InsertRoute", r.Name)
}

// fakeCLI answers the admin CLI calls with fixed values.
type fakeCLI struct {
	err error
}

func (c *fakeCLI) CreateServiceAccount(context.Context, gcloudcli.KeyFile, address.Address, gcloudcli.ServiceAccount) (string, error) {
	return "deployer-token-abcde", c.err
}

func (c *fakeCLI) LookupToken(context.Context, gcloudcli.KeyFile, address.Address, string, string) (string, error) {
	return "secret-token", nil
}

func (c *fakeCLI) LookupCertAndEndpoint(context.Context, gcloudcli.KeyFile, address.Address, string) (string, string, error) {
	return "Q0EtREFUQQ==", "10.0.0.1", nil
}

// testEnv replaces every factory with fakes for the duration of the test.
type testEnv struct {
	cloud      *fakeCloud
	cli        *fakeCLI
	out        *bytes.Buffer
	cloudMade  int
	hcloudMade int
	objects    spec.ObjectFetcher
}

func stubEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{cloud: newFakeCloud(), cli: &fakeCLI{}, out: &bytes.Buffer{}}

	origStdout, origStderr := stdout, stderr
	origFind, origTimeouts, origLogger := findConfigFile, loadTimeouts, newLogger
	origCloud, origHCloud, origObjects, origCLI := newCloudClient, newHCloudCompute, newObjectFetcher, newAdminCLI
	origReadFile, origWriteKubeconfig := readFile, writeKubeconfig
	t.Cleanup(func() {
		stdout, stderr = origStdout, origStderr
		findConfigFile, loadTimeouts, newLogger = origFind, origTimeouts, origLogger
		newCloudClient, newHCloudCompute, newObjectFetcher, newAdminCLI = origCloud, origHCloud, origObjects, origCLI
		readFile, writeKubeconfig = origReadFile, origWriteKubeconfig
	})

	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	stdout = env.out
	stderr = &bytes.Buffer{}
	findConfigFile = func() (string, error) { return "", errors.New("config file gkectl.yaml not found") }
	loadTimeouts = config.TestTimeouts
	newLogger = func(logging.Options) (logr.Logger, error) { return logr.Discard(), nil }
	newCloudClient = func(context.Context, *config.Config, logr.Logger, *config.Timeouts) (cloudClient, error) {
		env.cloudMade++
		return env.cloud, nil
	}
	newHCloudCompute = func(string, logr.Logger, *config.Timeouts) provider.ComputeAPI {
		env.hcloudMade++
		return env.cloud
	}
	newObjectFetcher = func(config.S3Config) (spec.ObjectFetcher, error) {
		if env.objects == nil {
			return nil, errors.New("no object store")
		}
		return env.objects, nil
	}
	newAdminCLI = func(config.CLIConfig, logr.Logger) provisioning.AdminCLI { return env.cli }
	return env
}

func testGlobals() Globals {
	return Globals{Project: testProject, Output: OutputJSON}
}
