package gcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	compute "google.golang.org/api/compute/v1"
	container "google.golang.org/api/container/v1"
	"google.golang.org/api/option"

	"github.com/imamik/gkectl/internal/address"
	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/provider"
)

// testServer mocks the container and compute REST APIs on one mux. Container
// paths start with /v1/, compute paths with /projects/.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux

	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{mux: http.NewServeMux()}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		ts.mu.Lock()
		ts.requests = append(ts.requests, rec)
		ts.mu.Unlock()
		ts.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

// client returns a Client pointed at the test server with a 1ms poll interval.
func (ts *testServer) client(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), "proj",
		WithPollInterval(time.Millisecond),
		WithAPIOptions(option.WithEndpoint(ts.server.URL+"/"), option.WithoutAuthentication()),
	)
	require.NoError(t, err)
	return c
}

func (ts *testServer) bodyOf(method, path string) map[string]any {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, r := range ts.requests {
		if r.Method == method && r.Path == path {
			return r.Body
		}
	}
	return nil
}

func jsonResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func apiError(w http.ResponseWriter, code int, message string) {
	jsonResponse(w, code, map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

func noSleep() operation.PollerOption {
	return operation.WithSleep(func(context.Context, time.Duration) error { return nil })
}

func TestClient_CreateCluster_Zonal(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v1/projects/proj/zones/us-central1-a/clusters", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		jsonResponse(w, http.StatusOK, container.Operation{Name: "operation-1", Status: "RUNNING", OperationType: "CREATE_CLUSTER"})
	})
	polls := 0
	ts.handleFunc("/v1/projects/proj/zones/us-central1-a/operations/operation-1", func(w http.ResponseWriter, _ *http.Request) {
		polls++
		status := "RUNNING"
		if polls == 2 {
			status = "DONE"
		}
		jsonResponse(w, http.StatusOK, container.Operation{
			Name:       "operation-1",
			Status:     status,
			TargetLink: "https://container.googleapis.com/v1/projects/proj/zones/us-central1-a/clusters/demo",
		})
	})

	c := ts.client(t)
	loc, err := address.ResolveLocation("proj", "", "us-central1-a")
	require.NoError(t, err)

	h, err := c.CreateCluster(context.Background(), loc, &container.Cluster{Name: "demo", InitialNodeCount: 1})
	require.NoError(t, err)
	assert.Equal(t, operation.StatusPending, h.Operation().Status)
	assert.Equal(t, "CREATE_CLUSTER", h.Operation().Type)

	body := ts.bodyOf(http.MethodPost, "/v1/projects/proj/zones/us-central1-a/clusters")
	require.NotNil(t, body)
	cluster, ok := body["cluster"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "demo", cluster["name"])

	op, err := operation.NewPoller(logr.Discard(), noSleep()).Wait(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, operation.StatusDone, op.Status)
	assert.Equal(t, 2, polls)
	assert.Contains(t, op.Result, "clusters/demo")
}

func TestClient_CreateCluster_Regional(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v1/projects/proj/locations/europe-west1/clusters", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, container.Operation{Name: "operation-2", Status: "PENDING"})
	})
	ts.handleFunc("/v1/projects/proj/locations/europe-west1/operations/operation-2", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, container.Operation{
			Name:   "operation-2",
			Status: "DONE",
			Error:  &container.Status{Code: 8, Message: "quota exceeded"},
		})
	})

	c := ts.client(t)
	loc, err := address.ResolveLocation("proj", "europe-west1", "")
	require.NoError(t, err)

	h, err := c.CreateCluster(context.Background(), loc, &container.Cluster{Name: "demo"})
	require.NoError(t, err)

	_, err = operation.NewPoller(logr.Discard(), noSleep()).Wait(context.Background(), h)
	require.ErrorIs(t, err, operation.ErrOperationFailed)
	assert.Contains(t, err.Error(), "8: quota exceeded")
}

func TestClient_GetCluster_NotFound(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v1/projects/proj/zones/us-central1-a/clusters/missing", func(w http.ResponseWriter, _ *http.Request) {
		apiError(w, http.StatusNotFound, "cluster not found")
	})

	c := ts.client(t)
	addr, err := address.ResolveCluster("proj", "", "us-central1-a", "missing")
	require.NoError(t, err)

	_, err = c.GetCluster(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, provider.IsNotFound(err))

	var re *provider.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "clusters.get", re.Op)
	assert.Equal(t, "cluster not found", re.Message)
}

func TestClient_NodePools(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v1/projects/proj/locations/europe-west1/clusters/demo/nodePools", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			jsonResponse(w, http.StatusOK, container.Operation{Name: "operation-np", Status: "RUNNING"})
		default:
			jsonResponse(w, http.StatusOK, container.ListNodePoolsResponse{
				NodePools: []*container.NodePool{{Name: "default-pool"}, {Name: "extra"}},
			})
		}
	})
	ts.handleFunc("/v1/projects/proj/locations/europe-west1/clusters/demo/nodePools/extra", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		jsonResponse(w, http.StatusOK, container.Operation{Name: "operation-del", Status: "RUNNING"})
	})

	c := ts.client(t)
	cluster, err := address.ResolveCluster("proj", "europe-west1", "", "demo")
	require.NoError(t, err)

	h, err := c.CreateNodePool(context.Background(), cluster, &container.NodePool{Name: "extra", InitialNodeCount: 2})
	require.NoError(t, err)
	assert.Equal(t, "operation-np", h.Operation().Name)

	pools, err := c.ListNodePools(context.Background(), cluster)
	require.NoError(t, err)
	require.Len(t, pools, 2)
	assert.Equal(t, "extra", pools[1].Name)

	pool, err := address.ResolveNodePool("proj", "europe-west1", "", "demo", "extra")
	require.NoError(t, err)
	h, err = c.DeleteNodePool(context.Background(), pool)
	require.NoError(t, err)
	assert.Equal(t, "operation-del", h.Operation().Name)
}

func TestClient_InsertInstance_WaitsOnZoneOperation(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/projects/proj/zones/us-central1-a/instances", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		jsonResponse(w, http.StatusOK, compute.Operation{Name: "op-vm", Status: "RUNNING"})
	})
	waits := 0
	ts.handleFunc("/projects/proj/zones/us-central1-a/operations/op-vm/wait", func(w http.ResponseWriter, _ *http.Request) {
		waits++
		if waits < 3 {
			jsonResponse(w, http.StatusOK, compute.Operation{Name: "op-vm", Status: "RUNNING", Progress: int64(waits * 40)})
			return
		}
		jsonResponse(w, http.StatusOK, compute.Operation{
			Name:       "op-vm",
			Status:     "DONE",
			Progress:   100,
			TargetLink: "https://compute.googleapis.com/compute/v1/projects/proj/zones/us-central1-a/instances/vm-1",
		})
	})

	c := ts.client(t)
	h, err := c.InsertInstance(context.Background(), "us-central1-a", &compute.Instance{Name: "vm-1"})
	require.NoError(t, err)
	assert.Zero(t, waits, "the wait watcher starts only when the handle is waited on")
	assert.Equal(t, time.Duration(0), h.Interval())

	op, err := operation.NewPoller(logr.Discard()).Wait(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, operation.StatusDone, op.Status)
	assert.Equal(t, 100, op.Progress)
	assert.Equal(t, 3, waits)
}

func TestClient_InsertAddress_Failure(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/projects/proj/regions/us-central1/addresses", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, compute.Operation{Name: "op-addr", Status: "PENDING"})
	})
	ts.handleFunc("/projects/proj/regions/us-central1/operations/op-addr/wait", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, compute.Operation{
			Name:   "op-addr",
			Status: "DONE",
			Error: &compute.OperationError{Errors: []*compute.OperationErrorErrors{
				{Code: "QUOTA_EXCEEDED", Message: "Quota 'STATIC_ADDRESSES' exceeded"},
			}},
		})
	})

	c := ts.client(t)
	h, err := c.InsertAddress(context.Background(), "us-central1", &compute.Address{Name: "vm-1-ext-addr", AddressType: "EXTERNAL"})
	require.NoError(t, err)

	_, err = operation.NewPoller(logr.Discard()).Wait(context.Background(), h)
	require.ErrorIs(t, err, operation.ErrOperationFailed)

	var failed *operation.FailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "QUOTA_EXCEEDED", failed.Operation.Errors[0].Code)
}

func TestClient_ComputeWaitError(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/projects/proj/global/networks", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, compute.Operation{Name: "op-net", Status: "RUNNING"})
	})
	ts.handleFunc("/projects/proj/global/operations/op-net/wait", func(w http.ResponseWriter, _ *http.Request) {
		apiError(w, http.StatusBadRequest, "invalid operation")
	})

	c := ts.client(t)
	h, err := c.InsertNetwork(context.Background(), &compute.Network{Name: "vpc"})
	require.NoError(t, err)

	_, err = operation.NewPoller(logr.Discard()).Wait(context.Background(), h)
	var fetchErr *operation.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "op-net", fetchErr.Last.Name)
}

func TestClient_ForceSendsZeroValues(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	for _, path := range []string{"/projects/proj/global/networks", "/projects/proj/global/routes"} {
		ts.handleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, http.StatusOK, compute.Operation{Name: "op", Status: "DONE"})
		})
	}

	c := ts.client(t)
	_, err := c.InsertNetwork(context.Background(), &compute.Network{Name: "vpc"})
	require.NoError(t, err)
	_, err = c.InsertRoute(context.Background(), &compute.Route{Name: "r", Network: "n", DestRange: "0.0.0.0/0", NextHopIp: "10.0.0.2"})
	require.NoError(t, err)

	network := ts.bodyOf(http.MethodPost, "/projects/proj/global/networks")
	assert.Equal(t, false, network["autoCreateSubnetworks"])

	route := ts.bodyOf(http.MethodPost, "/projects/proj/global/routes")
	assert.Contains(t, route, "priority")
}

func TestClient_ListInstances_Pages(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/projects/proj/zones/us-central1-a/instances", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "" {
			jsonResponse(w, http.StatusOK, compute.InstanceList{
				Items:         []*compute.Instance{{Name: "vm-1"}},
				NextPageToken: "next",
			})
			return
		}
		jsonResponse(w, http.StatusOK, compute.InstanceList{Items: []*compute.Instance{{Name: "vm-2"}}})
	})

	c := ts.client(t)
	got, err := c.ListInstances(context.Background(), "us-central1-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "vm-2", got[1].Name)
}

func TestFromContainer(t *testing.T) {
	t.Parallel()

	op := fromContainer(&container.Operation{Name: "o", Status: "DONE", TargetLink: "link"})
	assert.Equal(t, operation.StatusDone, op.Status)
	assert.Equal(t, "link", op.Result)
	assert.Empty(t, op.Errors)

	op = fromContainer(&container.Operation{Name: "o", Status: "ABORTING", Error: &container.Status{Message: "cancelled by user"}})
	assert.Equal(t, operation.StatusAborting, op.Status)
	require.Len(t, op.Errors, 1)
	assert.Equal(t, "cancelled by user", op.Errors[0].Message)
	assert.Nil(t, op.Result)
}
