package handlers

import (
	"context"
	"fmt"
	"sort"

	"github.com/imamik/gkectl/internal/provisioning"
	"github.com/imamik/gkectl/internal/spec"
)

// Resource kinds accepted by create commands and plan entries.
const (
	KindCluster   = "cluster"
	KindNodePool  = "nodepool"
	KindVM        = "vm"
	KindVPC       = "vpc"
	KindSubnet    = "subnet"
	KindReserveIP = "reserve-ip"
	KindFirewall  = "firewall"
	KindRoute     = "route"
)

// step is one create request, built from flags or read from a plan.
type step struct {
	Kind     string              `mapstructure:"kind"`
	Name     string              `mapstructure:"name"`
	Wait     bool                `mapstructure:"wait"`
	Target   provisioning.Target `mapstructure:"target"`
	Params   map[string]any      `mapstructure:"params"`
	Document string              `mapstructure:"document"`
}

type creator func(ctx context.Context, s *session, st step) (any, error)

// creators maps each kind to the orchestrator call that creates it. Kinds
// that accept a document use it in place of the flat parameters.
var creators = map[string]creator{
	KindCluster: func(ctx context.Context, s *session, st step) (any, error) {
		if st.Document != "" {
			doc, err := s.loader.Load(ctx, st.Document)
			if err != nil {
				return nil, err
			}
			return s.orchestrator.CreateClusterFromDocument(ctx, st.Target, doc, st.Wait)
		}
		var p spec.ClusterParams
		if err := decodeParams(st.Params, &p); err != nil {
			return nil, err
		}
		return s.orchestrator.CreateBasicCluster(ctx, p, st.Wait)
	},
	KindNodePool: func(ctx context.Context, s *session, st step) (any, error) {
		if st.Document != "" {
			doc, err := s.loader.Load(ctx, st.Document)
			if err != nil {
				return nil, err
			}
			return s.orchestrator.CreateNodePoolFromDocument(ctx, st.Target, doc, st.Wait)
		}
		var p spec.NodePoolParams
		if err := decodeParams(st.Params, &p); err != nil {
			return nil, err
		}
		return s.orchestrator.CreateNodePool(ctx, st.Target, p, st.Wait)
	},
	KindVM: func(ctx context.Context, s *session, st step) (any, error) {
		var p spec.VMParams
		if err := decodeParams(st.Params, &p); err != nil {
			return nil, err
		}
		return s.orchestrator.LaunchVM(ctx, p, st.Wait)
	},
	KindVPC: func(ctx context.Context, s *session, st step) (any, error) {
		var p spec.VPCParams
		if err := decodeParams(st.Params, &p); err != nil {
			return nil, err
		}
		return s.orchestrator.CreateVPC(ctx, p, st.Wait)
	},
	KindSubnet: func(ctx context.Context, s *session, st step) (any, error) {
		var p spec.SubnetParams
		if err := decodeParams(st.Params, &p); err != nil {
			return nil, err
		}
		return s.orchestrator.CreateSubnet(ctx, p, st.Wait)
	},
	KindReserveIP: func(ctx context.Context, s *session, st step) (any, error) {
		var p spec.ReserveIPParams
		if err := decodeParams(st.Params, &p); err != nil {
			return nil, err
		}
		return s.orchestrator.ReserveIP(ctx, p, st.Wait)
	},
	KindFirewall: func(ctx context.Context, s *session, st step) (any, error) {
		var p spec.FirewallParams
		if err := decodeParams(st.Params, &p); err != nil {
			return nil, err
		}
		return s.orchestrator.CreateFirewall(ctx, p, st.Wait)
	},
	KindRoute: func(ctx context.Context, s *session, st step) (any, error) {
		var p spec.RouteParams
		if err := decodeParams(st.Params, &p); err != nil {
			return nil, err
		}
		return s.orchestrator.CreateRoute(ctx, p, st.Wait)
	},
}

// Kinds returns the resource kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(creators))
	for k := range creators {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// scopeOf reports whether kind needs the GKE API.
func scopeOf(kind string) scope {
	if kind == KindCluster || kind == KindNodePool {
		return scopeClusters
	}
	return scopeCompute
}

func (s *session) create(ctx context.Context, st step) (any, error) {
	create, ok := creators[st.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q (want one of %v)", st.Kind, Kinds())
	}
	if st.Params == nil {
		st.Params = map[string]any{}
	}
	return create(ctx, s, st)
}

// Create creates one resource of kind from flat parameters or, for clusters
// and node pools, from a document reference, and prints the operation.
func Create(ctx context.Context, g Globals, kind string, params ParamFlags, document string, target provisioning.Target, wait bool) error {
	if _, ok := creators[kind]; !ok {
		return fmt.Errorf("unknown kind %q (want one of %v)", kind, Kinds())
	}
	values, err := params.values()
	if err != nil {
		return err
	}

	ctx, sess, err := setup(ctx, g, scopeOf(kind))
	if err != nil {
		return err
	}
	defer sess.close()

	result, err := sess.create(ctx, step{Kind: kind, Wait: wait, Target: target, Params: values, Document: document})
	if err != nil {
		return err
	}
	return printResult(sess.output, result)
}
