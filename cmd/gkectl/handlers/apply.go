package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/imamik/gkectl/internal/util/async"
)

// plan is a provisioning plan file. Stages run in order; the steps of one
// stage run concurrently, at most Parallelism at a time.
type plan struct {
	Parallelism int     `mapstructure:"parallelism"`
	Stages      []stage `mapstructure:"stages"`
}

type stage struct {
	Name  string `mapstructure:"name"`
	Steps []step `mapstructure:"steps"`
}

// loadPlan reads and validates a plan file. Steps without a name are named
// <kind>-<stage>-<index>.
func loadPlan(path string) (*plan, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}
	var p plan
	if err := decodeParams(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	if len(p.Stages) == 0 {
		return nil, fmt.Errorf("plan %s has no stages", path)
	}

	seen := map[string]bool{}
	var errs []error
	for i := range p.Stages {
		st := &p.Stages[i]
		if st.Name == "" {
			st.Name = fmt.Sprintf("stage-%d", i+1)
		}
		for j := range st.Steps {
			s := &st.Steps[j]
			if _, ok := creators[s.Kind]; !ok {
				errs = append(errs, fmt.Errorf("%s step %d: unknown kind %q", st.Name, j+1, s.Kind))
			}
			if s.Name == "" {
				s.Name = fmt.Sprintf("%s-%d-%d", s.Kind, i+1, j+1)
			}
			if seen[s.Name] {
				errs = append(errs, fmt.Errorf("%s: duplicate step name %q", st.Name, s.Name))
			}
			seen[s.Name] = true
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *plan) scope() scope {
	for _, st := range p.Stages {
		for _, s := range st.Steps {
			if scopeOf(s.Kind) == scopeClusters {
				return scopeClusters
			}
		}
	}
	return scopeCompute
}

// Apply runs a plan file and prints the result of every step by name. A
// failing stage stops the plan; the other steps of that stage still finish.
func Apply(ctx context.Context, g Globals, planPath string) error {
	p, err := loadPlan(planPath)
	if err != nil {
		return err
	}

	ctx, sess, err := setup(ctx, g, p.scope())
	if err != nil {
		return err
	}
	defer sess.close()

	var (
		mu      sync.Mutex
		results = map[string]any{}
	)
	for _, st := range p.Stages {
		tasks := make([]async.Task, 0, len(st.Steps))
		for _, s := range st.Steps {
			tasks = append(tasks, async.Task{
				Name: s.Name,
				Func: func(ctx context.Context) error {
					result, err := sess.create(ctx, s)
					if err != nil {
						return err
					}
					mu.Lock()
					results[s.Name] = result
					mu.Unlock()
					return nil
				},
			})
		}

		sess.logger.Info("applying stage", "stage", st.Name, "steps", len(tasks))
		if err := async.RunParallel(ctx, tasks, p.Parallelism); err != nil {
			if perr := printResult(sess.output, results); perr != nil {
				sess.logger.Error(perr, "failed to print partial results")
			}
			return fmt.Errorf("stage %s failed: %w", st.Name, err)
		}
	}
	return printResult(sess.output, results)
}
