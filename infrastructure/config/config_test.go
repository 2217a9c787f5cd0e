package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/mergedag/domain/dagconfig"
)

func parseNetworkFlags(t *testing.T, args ...string) (*NetworkFlags, error) {
	networkFlags := &NetworkFlags{}
	parser := flags.NewParser(networkFlags, flags.HelpFlag)
	_, err := parser.ParseArgs(args)
	if err != nil {
		t.Fatalf("ParseArgs: %s", err)
	}
	return networkFlags, networkFlags.ResolveNetwork(parser)
}

func TestResolveNetwork(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		expectedName string
		expectError  bool
	}{
		{name: "default", args: nil, expectedName: "devnet"},
		{name: "devnet", args: []string{"--devnet"}, expectedName: "devnet"},
		{name: "simnet", args: []string{"--simnet"}, expectedName: "simnet"},
		{name: "both", args: []string{"--simnet", "--devnet"}, expectError: true},
	}

	for _, test := range tests {
		networkFlags, err := parseNetworkFlags(t, test.args...)
		if test.expectError {
			if err == nil {
				t.Fatalf("%s: expected ResolveNetwork to fail", test.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: ResolveNetwork: %+v", test.name, err)
		}
		if networkFlags.NetParams().Name != test.expectedName {
			t.Fatalf("%s: expected network %s, got %s", test.name, test.expectedName, networkFlags.NetParams().Name)
		}
	}
}

func writeOverrideFile(t *testing.T, content string) string {
	dir, err := os.MkdirTemp("", "TestOverrideDAGParams")
	if err != nil {
		t.Fatalf("MkdirTemp: %s", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "params.json")
	err = os.WriteFile(path, []byte(content), 0600)
	if err != nil {
		t.Fatalf("WriteFile: %s", err)
	}
	return path
}

func TestOverrideDAGParams(t *testing.T) {
	path := writeOverrideFile(t, `{"faultTolerance": 0.3, "maxExactMergeCandidates": 4, "conflictWorkers": 2}`)

	networkFlags, err := parseNetworkFlags(t, "--devnet", "--override-dag-params-file="+path)
	if err != nil {
		t.Fatalf("ResolveNetwork: %+v", err)
	}
	params := networkFlags.NetParams()
	if params.FaultTolerance != 0.3 || params.MaxExactMergeCandidates != 4 || params.ConflictWorkers != 2 {
		t.Fatalf("Overrides were not applied: %+v", params)
	}
	if params.MaxBlockParents != dagconfig.DevnetParams.MaxBlockParents {
		t.Fatalf("Expected MaxBlockParents to keep the devnet value %d, got %d",
			dagconfig.DevnetParams.MaxBlockParents, params.MaxBlockParents)
	}
	if dagconfig.DevnetParams.FaultTolerance == 0.3 || params == &dagconfig.DevnetParams {
		t.Fatalf("Overriding changed the registered devnet parameters")
	}
}

func TestOverrideDAGParamsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		network string
	}{
		{name: "simnet", content: `{}`, network: "--simnet"},
		{name: "unknown field", content: `{"blockRate": 3}`, network: "--devnet"},
		{name: "malformed", content: `{"faultTolerance":`, network: "--devnet"},
		{name: "invalid value", content: `{"faultTolerance": 2}`, network: "--devnet"},
		{name: "no workers", content: `{"conflictWorkers": 0}`, network: "--devnet"},
	}

	for _, test := range tests {
		path := writeOverrideFile(t, test.content)
		_, err := parseNetworkFlags(t, test.network, "--override-dag-params-file="+path)
		if err == nil {
			t.Fatalf("%s: expected ResolveNetwork to fail", test.name)
		}
	}

	_, err := parseNetworkFlags(t, "--override-dag-params-file=/nonexistent/params.json")
	if err == nil {
		t.Fatalf("Expected a missing override file to fail")
	}
}

func TestCleanAndExpandPath(t *testing.T) {
	t.Setenv("MERGEDAG_TEST_DIR", "/tmp/mergedag")

	expanded := CleanAndExpandPath("$MERGEDAG_TEST_DIR/./data/../logs")
	if expanded != "/tmp/mergedag/logs" {
		t.Fatalf("Expected /tmp/mergedag/logs, got %s", expanded)
	}
}
