// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/gkectl/internal/config"
	"github.com/imamik/gkectl/internal/gcloudcli"
	"github.com/imamik/gkectl/internal/logging"
	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/platform/gcp"
	"github.com/imamik/gkectl/internal/platform/hcloud"
	"github.com/imamik/gkectl/internal/platform/s3"
	"github.com/imamik/gkectl/internal/provider"
	"github.com/imamik/gkectl/internal/provisioning"
	"github.com/imamik/gkectl/internal/spec"
)

// Globals holds the values of the persistent root flags.
type Globals struct {
	ConfigPath      string
	Project         string
	Verbosity       int
	LogFormat       string
	Output          string
	MetricsTextfile string
}

// cloudClient is a client serving both GKE and Compute Engine.
type cloudClient interface {
	provider.ClusterAPI
	provider.ComputeAPI
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// stdout receives command results.
	stdout io.Writer = os.Stdout

	// stderr receives log records.
	stderr io.Writer = os.Stderr

	// findConfigFile locates gkectl.yaml when no path is given.
	findConfigFile = config.FindConfigFile

	// loadTimeouts reads the GKECTL_* timeout variables.
	loadTimeouts = config.LoadTimeouts

	// newLogger creates the process logger.
	newLogger = logging.New

	// newCloudClient creates the GKE and Compute Engine client.
	newCloudClient = func(ctx context.Context, cfg *config.Config, logger logr.Logger, timeouts *config.Timeouts) (cloudClient, error) {
		c, err := gcp.NewClient(ctx, cfg.Project,
			gcp.WithLogger(logger),
			gcp.WithPollInterval(timeouts.PollInterval),
			gcp.WithCredentialsFile(cfg.CredentialsFile),
		)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	// newHCloudCompute creates the Hetzner Cloud compute backend.
	newHCloudCompute = func(token string, logger logr.Logger, timeouts *config.Timeouts) provider.ComputeAPI {
		return hcloud.NewRealClient(token, hcloud.WithTimeouts(timeouts), hcloud.WithLogger(logger))
	}

	// newObjectFetcher creates the client resolving s3:// document references.
	newObjectFetcher = func(cfg config.S3Config) (spec.ObjectFetcher, error) {
		c, err := s3.NewClient(cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	// newAdminCLI creates the containerised gcloud/kubectl client.
	newAdminCLI = func(cfg config.CLIConfig, logger logr.Logger) provisioning.AdminCLI {
		return gcloudcli.New(gcloudcli.NewDockerRunner(cfg.Docker, cfg.Image, logger), logger)
	}
)

// scope says which provider APIs a command talks to.
type scope int

const (
	// scopeCompute commands only reach the compute backend.
	scopeCompute scope = iota
	// scopeClusters commands reach GKE, and possibly the compute backend.
	scopeClusters
)

// session is everything a handler needs for one invocation.
type session struct {
	cfg          *config.Config
	logger       logr.Logger
	orchestrator *provisioning.Orchestrator
	loader       spec.Loader
	output       string
	cancel       context.CancelFunc
}

func (s *session) close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// loadConfig reads the configuration file. Without an explicit path the
// file is looked up from the working directory; when none exists the
// defaults for project are used. A non-empty project overrides the file.
func loadConfig(path, project string) (*config.Config, error) {
	if path == "" {
		found, err := findConfigFile()
		if err != nil {
			cfg := config.Default(project)
			return cfg, cfg.Validate()
		}
		path = found
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if project != "" {
		cfg.Project = project
	}
	return cfg, nil
}

// setup loads configuration and builds the orchestrator for one command.
// The returned context carries the GKECTL_REQUEST_TIMEOUT deadline, if any;
// callers must close the session.
func setup(ctx context.Context, g Globals, sc scope) (context.Context, *session, error) {
	if err := checkOutput(g.Output); err != nil {
		return ctx, nil, err
	}
	logger, err := newLogger(logging.Options{Verbosity: g.Verbosity, Format: g.LogFormat, Writer: stderr})
	if err != nil {
		return ctx, nil, err
	}

	cfg, err := loadConfig(g.ConfigPath, g.Project)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger = logger.WithValues("project", cfg.Project)

	timeouts := loadTimeouts()
	sess := &session{cfg: cfg, logger: logger, output: g.Output}
	if timeouts.Request > 0 {
		ctx, sess.cancel = context.WithTimeout(ctx, timeouts.Request)
	}

	var (
		clusters provider.ClusterAPI
		compute  provider.ComputeAPI
	)
	if sc == scopeClusters || cfg.Compute.Backend == config.BackendGCP {
		cloud, err := newCloudClient(ctx, cfg, logger, timeouts)
		if err != nil {
			sess.close()
			return ctx, nil, fmt.Errorf("failed to create GCP client: %w", err)
		}
		clusters, compute = cloud, cloud
	}
	if cfg.Compute.Backend == config.BackendHCloud {
		token := cfg.HCloudToken()
		if token == "" {
			sess.close()
			return ctx, nil, fmt.Errorf("%s is required for the %s compute backend", cfg.Compute.HCloudTokenEnv, config.BackendHCloud)
		}
		compute = newHCloudCompute(token, logger, timeouts)
	}

	if cfg.S3.Enabled() {
		objects, err := newObjectFetcher(cfg.S3)
		if err != nil {
			sess.close()
			return ctx, nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		sess.loader = spec.Loader{Objects: objects}
	}

	sess.orchestrator = provisioning.New(cfg.Project, clusters, compute,
		provisioning.WithObserver(provisioning.NewLogObserver(logger)),
		provisioning.WithPoller(operation.NewPoller(logger)),
		provisioning.WithAdminCLI(newAdminCLI(cfg.CLI, logger)),
	)
	return ctx, sess, nil
}
