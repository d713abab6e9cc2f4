// Package gcp implements the provider contracts on Google Kubernetes Engine
// (container/v1) and Compute Engine (compute/v1).
//
// GKE operations are poll-driven: the returned handle re-reads the operation
// by name from the same region or zone it was started in. Compute Engine
// operations are event-driven: the handle runs a watcher over the
// long-polling operations Wait endpoint and emits progress and completion
// events.
package gcp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	compute "google.golang.org/api/compute/v1"
	container "google.golang.org/api/container/v1"
	"google.golang.org/api/option"

	"github.com/imamik/gkectl/internal/operation"
)

// Client talks to GKE and Compute Engine for a single project.
type Client struct {
	project      string
	container    *container.Service
	compute      *compute.Service
	logger       logr.Logger
	pollInterval time.Duration
	apiOptions   []option.ClientOption
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger used for operation progress.
func WithLogger(l logr.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithPollInterval sets the delay between operation status reads.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithCredentialsFile authenticates with a service account key file.
func WithCredentialsFile(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.apiOptions = append(c.apiOptions, option.WithCredentialsFile(path))
		}
	}
}

// WithAPIOptions passes options through to the generated API clients (useful for testing).
func WithAPIOptions(opts ...option.ClientOption) ClientOption {
	return func(c *Client) {
		c.apiOptions = append(c.apiOptions, opts...)
	}
}

// NewClient creates a Client for project.
func NewClient(ctx context.Context, project string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		project:      project,
		logger:       logr.Discard(),
		pollInterval: operation.DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	apiOpts := append([]option.ClientOption{option.WithScopes(compute.CloudPlatformScope)}, c.apiOptions...)

	var err error
	c.container, err = container.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create container service: %w", err)
	}
	c.compute, err = compute.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute service: %w", err)
	}
	return c, nil
}

// Project returns the project the client operates on.
func (c *Client) Project() string {
	return c.project
}
