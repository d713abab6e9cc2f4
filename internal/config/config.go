package config

import (
	"errors"
	"fmt"
	"os"
)

// DefaultConfigFilename is the file FindConfigFile looks for.
const DefaultConfigFilename = "gkectl.yaml"

// Compute backends.
const (
	BackendGCP    = "gcp"
	BackendHCloud = "hcloud"
)

// Defaults applied by LoadFile.
const (
	DefaultCLIImage       = "alpine/gcloud"
	DefaultDockerBinary   = "docker"
	DefaultHCloudTokenEnv = "HCLOUD_TOKEN"
	DefaultS3Region       = "us-east-1"
)

// Config holds the application configuration.
type Config struct {
	Project string `mapstructure:"project" yaml:"project"`

	// CredentialsFile is a service account key file. Empty uses
	// application default credentials.
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`

	Compute ComputeConfig `mapstructure:"compute" yaml:"compute"`
	S3      S3Config      `mapstructure:"s3" yaml:"s3"`
	CLI     CLIConfig     `mapstructure:"cli" yaml:"cli"`
}

// ComputeConfig selects the backend for VMs, addresses and VPC resources.
// Clusters and node pools always go to GKE.
type ComputeConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // gcp (default) or hcloud

	// HCloudTokenEnv names the environment variable holding the Hetzner Cloud token.
	HCloudTokenEnv string `mapstructure:"hcloud_token_env" yaml:"hcloud_token_env"`
}

// S3Config locates spec documents referenced as s3://bucket/key.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Region    string `mapstructure:"region" yaml:"region"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
}

// CLIConfig configures the containerised gcloud/kubectl invocation.
type CLIConfig struct {
	Image  string `mapstructure:"image" yaml:"image"`
	Docker string `mapstructure:"docker" yaml:"docker"`
}

// Enabled reports whether s3:// document references can be resolved.
func (s S3Config) Enabled() bool {
	return s.Endpoint != "" || s.AccessKey != ""
}

// HCloudToken reads the Hetzner Cloud token from the configured environment variable.
func (c *Config) HCloudToken() string {
	return os.Getenv(c.Compute.HCloudTokenEnv)
}

// applyDefaults fills unset fields. S3 credentials fall back to the standard AWS variables.
func (c *Config) applyDefaults() {
	if c.Compute.Backend == "" {
		c.Compute.Backend = BackendGCP
	}
	if c.Compute.HCloudTokenEnv == "" {
		c.Compute.HCloudTokenEnv = DefaultHCloudTokenEnv
	}
	if c.S3.AccessKey == "" {
		c.S3.AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if c.S3.SecretKey == "" {
		c.S3.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if c.S3.Region == "" {
		c.S3.Region = DefaultS3Region
	}
	if c.CLI.Image == "" {
		c.CLI.Image = DefaultCLIImage
	}
	if c.CLI.Docker == "" {
		c.CLI.Docker = DefaultDockerBinary
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error
	if c.Project == "" {
		errs = append(errs, errors.New("project is required"))
	}
	switch c.Compute.Backend {
	case BackendGCP, BackendHCloud:
	default:
		errs = append(errs, fmt.Errorf("compute.backend must be %q or %q, got %q", BackendGCP, BackendHCloud, c.Compute.Backend))
	}
	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		errs = append(errs, errors.New("s3.access_key and s3.secret_key must be set together"))
	}
	return errors.Join(errs...)
}

// Default returns a configuration with defaults applied and no file behind it.
func Default(project string) *Config {
	cfg := &Config{Project: project}
	cfg.applyDefaults()
	return cfg
}
