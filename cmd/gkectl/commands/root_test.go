package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/gkectl/cmd/gkectl/handlers"
)

func find(t *testing.T, root *cobra.Command, path ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := root.Find(path)
	require.NoError(t, err)
	require.NotNil(t, cmd)
	return cmd
}

func TestRoot(t *testing.T) {
	cmd := Root()

	assert.Equal(t, "gkectl", cmd.Use)
	assert.True(t, cmd.SilenceUsage)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"cluster", "nodepool", "vm", "network", "service-account", "apply", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRoot_PersistentFlags(t *testing.T) {
	flags := Root().PersistentFlags()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"config", "c", ""},
		{"project", "", ""},
		{"verbose", "v", "0"},
		{"log-format", "", "auto"},
		{"output", "o", handlers.OutputJSON},
		{"metrics-textfile", "", ""},
	}
	for _, tt := range tests {
		f := flags.Lookup(tt.name)
		require.NotNil(t, f, tt.name)
		assert.Equal(t, tt.shorthand, f.Shorthand, tt.name)
		assert.Equal(t, tt.def, f.DefValue, tt.name)
	}
}

func TestSubcommands(t *testing.T) {
	root := Root()

	tests := []struct {
		path  []string
		use   string
		flags []string
	}{
		{[]string{"cluster", "create"}, "create", []string{"params", "set", "region", "zone", "from-file", "wait"}},
		{[]string{"cluster", "delete"}, "delete NAME", []string{"region", "zone", "wait"}},
		{[]string{"cluster", "describe"}, "describe NAME", []string{"region", "zone"}},
		{[]string{"cluster", "list"}, "list", []string{"region", "zone"}},
		{[]string{"cluster", "credentials"}, "credentials NAME", []string{"region", "zone", "kubeconfig"}},
		{[]string{"nodepool", "create"}, "create", []string{"params", "set", "cluster", "from-file", "wait"}},
		{[]string{"nodepool", "delete"}, "delete NAME", []string{"cluster", "wait"}},
		{[]string{"nodepool", "list"}, "list", []string{"cluster"}},
		{[]string{"vm", "launch"}, "launch", []string{"params", "set", "wait"}},
		{[]string{"vm", "action"}, "action ACTION NAME", []string{"zone", "wait"}},
		{[]string{"vm", "list"}, "list", []string{"zone"}},
		{[]string{"network", "vpc"}, "vpc", []string{"params", "set", "wait"}},
		{[]string{"network", "subnet"}, "subnet", []string{"params", "set", "wait"}},
		{[]string{"network", "reserve-ip"}, "reserve-ip", []string{"params", "set", "wait"}},
		{[]string{"network", "firewall"}, "firewall", []string{"params", "set", "wait"}},
		{[]string{"network", "route"}, "route", []string{"params", "set", "wait"}},
		{[]string{"service-account", "create"}, "create", []string{"cluster", "key-file", "kubeconfig", "set"}},
		{[]string{"apply"}, "apply PLAN", nil},
	}

	for _, tt := range tests {
		cmd := find(t, root, tt.path...)
		assert.Equal(t, tt.use, cmd.Use, tt.path)
		assert.NotNil(t, cmd.RunE, tt.path)
		for _, name := range tt.flags {
			assert.NotNil(t, cmd.Flags().Lookup(name), "%v --%s", tt.path, name)
		}
	}
}

func TestAliases(t *testing.T) {
	root := Root()

	assert.Equal(t, "nodepool", find(t, root, "np", "list").Parent().Name())
	assert.Equal(t, "vm", find(t, root, "instance", "list").Parent().Name())
	assert.Equal(t, "service-account", find(t, root, "sa", "create").Parent().Name())
}

func TestArgValidation(t *testing.T) {
	tests := [][]string{
		{"cluster", "delete"},
		{"cluster", "describe", "a", "b"},
		{"vm", "action", "Start"},
		{"apply"},
		{"nodepool", "list"},
		{"vm", "list"},
		{"cluster", "list", "--region", "europe-west1", "--zone", "europe-west1-b"},
		{"cluster", "create", "--from-file", "c.json", "--set", "name=x"},
	}

	for _, args := range tests {
		root := Root()
		root.SetArgs(args)
		assert.Error(t, root.Execute(), args)
	}
}

func TestApply_LongListsKinds(t *testing.T) {
	cmd := find(t, Root(), "apply")
	for _, kind := range handlers.Kinds() {
		assert.Contains(t, cmd.Long, kind)
	}
}

func TestVMAction_ValidArgs(t *testing.T) {
	cmd := find(t, Root(), "vm", "action")
	assert.Equal(t, []string{"Start", "Stop", "Restart", "Delete", "Get", "Get-IP"}, cmd.ValidArgs)
}
