package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/invite-agent/internal/browser/snapshot"
)

const (
	alice = "https://www.linkedin.com/in/alice/"
	bob   = "https://www.linkedin.com/in/bob/"
	carol = "https://www.linkedin.com/in/carol/"
)

const dialog = `<div role="dialog">
  <button aria-label="Add a note">Add a note</button>
  <button aria-label="Send without a note">Send without a note</button>
  <textarea name="message"></textarea>
  <button aria-label="Send invitation">Send</button>
</div>`

var snapshots = map[string]string{
	alice: `<html><body><main><h1>Alice</h1><span>1st</span></main></body></html>`,
	bob: `<html><body><main><h1>Bob</h1><span>2nd</span>
<button aria-label="Invite Bob to connect">Connect</button></main>` + dialog + `</body></html>`,
	carol: `<html><body><main><h1>Carol</h1><span>3rd</span>
<button aria-label="More actions">More</button>
<div aria-label="Invite Carol to connect">Connect</div></main>` + dialog + `</body></html>`,
}

type fixture struct {
	replayDir string
	storeDir  string
	input     string
	config    string
	metrics   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		replayDir: filepath.Join(root, "replay"),
		storeDir:  filepath.Join(root, "store"),
		input:     filepath.Join(root, "profiles.csv"),
		config:    filepath.Join(root, "invite_agent.yaml"),
		metrics:   filepath.Join(root, "metrics", "invite_agent.prom"),
	}

	require.NoError(t, os.MkdirAll(f.replayDir, 0o755))
	for url, html := range snapshots {
		require.NoError(t, os.WriteFile(filepath.Join(f.replayDir, snapshot.FileName(url)), []byte(html), 0o644))
	}
	csv := "url,name\n" + alice + ",Alice\n" + bob + ",Bob\n" + carol + ",Carol\n"
	require.NoError(t, os.WriteFile(f.input, []byte(csv), 0o644))
	require.NoError(t, os.WriteFile(f.config, []byte("wait:\n  timeout: 100ms\n  interval: 10ms\nlog:\n  level: warn\n"), 0o644))
	return f
}

func (f fixture) args(command string, extra ...string) []string {
	args := []string{command,
		"--config", f.config,
		"--account", "jane",
		"--store-dir", f.storeDir,
	}
	return append(args, extra...)
}

func (f fixture) records(t *testing.T) map[string]map[string]string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.storeDir, "processed_urls_jane.json"))
	require.NoError(t, err)
	var records map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))

	err := root.ExecuteContext(context.Background())
	t.Log(errOut.String())
	return out.String(), err
}

func TestRunCommand_Replay(t *testing.T) {
	f := newFixture(t)

	out, err := execute(t, "", f.args("run",
		"--input", f.input,
		"--replay-dir", f.replayDir,
		"--metrics-file", f.metrics,
		"--yes")...)
	require.NoError(t, err)

	assert.Contains(t, out, "PRE-SCAN COMPLETE")
	assert.Contains(t, out, "CONNECTION PROCESS COMPLETE")
	assert.Regexp(t, `Successful connections\s+2`, out)

	records := f.records(t)
	require.Len(t, records, 3)
	assert.Equal(t, "Already Connected", records[alice]["status"])
	assert.Equal(t, "Connection Sent", records[bob]["status"])
	assert.Equal(t, "Connection Sent", records[carol]["status"])

	metrics, err := os.ReadFile(f.metrics)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `invite_agent_profiles_total{account="jane",outcome="connection_sent",phase="connect"} 2`)
}

func TestRunCommand_DeclinedConfirmation(t *testing.T) {
	f := newFixture(t)

	out, err := execute(t, "n\n", f.args("run", "--input", f.input, "--replay-dir", f.replayDir)...)
	require.NoError(t, err)

	assert.Contains(t, out, "PRE-SCAN COMPLETE")
	assert.Contains(t, out, "Operation cancelled.")
	assert.NotContains(t, out, "CONNECTION PROCESS COMPLETE")

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "Already Connected", records[alice]["status"])
}

func TestRunCommand_NothingLeftToConnect(t *testing.T) {
	f := newFixture(t)
	input := filepath.Join(filepath.Dir(f.input), "connected.csv")
	require.NoError(t, os.WriteFile(input, []byte("url\n"+alice+"\n"), 0o644))

	out, err := execute(t, "", f.args("run", "--input", input, "--replay-dir", f.replayDir)...)
	require.NoError(t, err)

	assert.Contains(t, out, "PRE-SCAN COMPLETE")
	assert.Contains(t, out, "No new connections to make.")
	assert.NotContains(t, out, "Proceed with connecting")
	assert.NotContains(t, out, "CONNECTION PROCESS COMPLETE")

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "Already Connected", records[alice]["status"])
}

func TestPreScanThenConnect(t *testing.T) {
	f := newFixture(t)

	out, err := execute(t, "", f.args("prescan", "--input", f.input, "--replay-dir", f.replayDir)...)
	require.NoError(t, err)
	assert.Regexp(t, `Remaining to process\s+2`, out)
	assert.Len(t, f.records(t), 1)

	out, err = execute(t, "", f.args("connect", "--input", f.input, "--replay-dir", f.replayDir)...)
	require.NoError(t, err)
	assert.Regexp(t, `Total attempts\s+2`, out)
	assert.Regexp(t, `Skipped \(processed\)\s+1`, out)
	assert.Len(t, f.records(t), 3)

	// a second connect run has nothing left to do
	out, err = execute(t, "", f.args("connect", "--input", f.input, "--replay-dir", f.replayDir)...)
	require.NoError(t, err)
	assert.Regexp(t, `Total attempts\s+0`, out)
}

func TestStatusAndReset(t *testing.T) {
	f := newFixture(t)
	_, err := execute(t, "", f.args("run", "--input", f.input, "--replay-dir", f.replayDir, "--yes")...)
	require.NoError(t, err)

	out, err := execute(t, "", f.args("status")...)
	require.NoError(t, err)
	assert.Regexp(t, `Recorded profiles\s+3`, out)
	assert.Regexp(t, `Connection Sent\s+2`, out)

	out, err = execute(t, "", f.args("reset", "--outcome", "Connection Sent")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 record(s) for jane (Connection Sent)")
	assert.Len(t, f.records(t), 1)

	_, err = execute(t, "", f.args("reset", "--outcome", "Pending")...)
	assert.ErrorContains(t, err, `unknown outcome "Pending"`)
}

func TestCommandErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing input",
			args:    f.args("prescan", "--replay-dir", f.replayDir),
			wantErr: "'input' is required",
		},
		{
			name:    "unknown store backend",
			args:    f.args("status", "--store-backend", "redis"),
			wantErr: "'store.backend' must be one of [file postgres]",
		},
		{
			name:    "postgres without database url",
			args:    f.args("status", "--store-backend", "postgres"),
			wantErr: "'store.database_url' is required",
		},
		{
			name:    "missing config file",
			args:    []string{"status", "--config", filepath.Join(t.TempDir(), "missing.yaml")},
			wantErr: "failed to load config",
		},
		{
			name:    "note and note file",
			args:    f.args("connect", "--input", f.input, "--note", "hi", "--note-file", f.config),
			wantErr: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCaptureCommand_RequiresReplayDir(t *testing.T) {
	f := newFixture(t)

	_, err := execute(t, "", f.args("capture", "--input", f.input)...)
	assert.ErrorContains(t, err, "'replay_dir' is required")
}
