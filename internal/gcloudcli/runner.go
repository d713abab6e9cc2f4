package gcloudcli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/go-logr/logr"
)

// KeyMountPath is where the key directory is mounted inside the container.
const KeyMountPath = "/keys"

// Invocation is one script run inside the CLI container.
type Invocation struct {
	// Script is passed to sh -c.
	Script string
	// Env is exported into the container. Values never appear on the
	// docker command line.
	Env map[string]string
	// KeyDir is mounted read-only at KeyMountPath when set.
	KeyDir string
}

// Output is what a script printed.
type Output struct {
	Stdout string
	Stderr string
}

// Runner executes invocations.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Output, error)
}

// DockerRunner runs invocations with docker run.
type DockerRunner struct {
	Binary string
	Image  string
	Logger logr.Logger
}

// NewDockerRunner creates a runner for the given docker binary and CLI image.
func NewDockerRunner(binary, image string, logger logr.Logger) *DockerRunner {
	return &DockerRunner{Binary: binary, Image: image, Logger: logger}
}

// Run executes inv in a fresh container. A non-zero exit status, or output
// on stderr only, is an error carrying stderr.
func (r *DockerRunner) Run(ctx context.Context, inv Invocation) (Output, error) {
	args := dockerArgs(r.Image, inv)
	r.Logger.V(1).Info("running cli container", "image", r.Image, "env", sortedKeys(inv.Env))

	// #nosec G204 - the binary comes from configuration; script values are passed through the environment
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Env = append(os.Environ(), envList(inv.Env)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return out, fmt.Errorf("cli container failed: %w: %s", err, strings.TrimSpace(out.Stderr))
	}
	if out.Stdout == "" && out.Stderr != "" {
		return out, fmt.Errorf("cli container failed: %s", strings.TrimSpace(out.Stderr))
	}
	return out, nil
}

// dockerArgs builds the docker run arguments. Environment variables are
// forwarded by name only.
func dockerArgs(image string, inv Invocation) []string {
	args := []string{"run", "--rm"}
	if inv.KeyDir != "" {
		args = append(args, "-v", inv.KeyDir+":"+KeyMountPath+":ro")
	}
	for _, k := range sortedKeys(inv.Env) {
		args = append(args, "-e", k)
	}
	return append(args, image, "sh", "-c", inv.Script)
}

func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for _, k := range sortedKeys(env) {
		out = append(out, k+"="+env[k])
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
