package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/imamik/gkectl/cmd/gkectl/handlers"
)

// Apply returns the command that runs a provisioning plan.
//
// A plan is a YAML file of stages. Stages run in order and the steps of a
// stage run concurrently:
//
//	parallelism: 4
//	stages:
//	  - name: network
//	    steps:
//	      - kind: vpc
//	        wait: true
//	        params: {name: prod-net}
//	  - name: compute
//	    steps:
//	      - kind: cluster
//	        document: s3://plans/prod-cluster.json
//	        target: {region: europe-west1}
//	        wait: true
//	      - kind: vm
//	        params: {name: bastion, zone: europe-west1-b, machineType: e2-small}
func Apply(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "apply PLAN",
		Short: "Run a provisioning plan",
		Long: `Run a provisioning plan file.

Stages run in order; the steps of one stage run concurrently, at most
"parallelism" at a time. A failing step does not cancel its siblings, but
the plan stops after the stage it failed in.

Step kinds: ` + strings.Join(handlers.Kinds(), ", ") + `.`,
		Args: cobra.ExactArgs(1),
		RunE: runE(g, func(cmd *cobra.Command, args []string) error {
			return handlers.Apply(cmd.Context(), *g, args[0])
		}),
	}
}
