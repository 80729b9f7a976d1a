package hardware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateStateCreates(t *testing.T) {
	t.Setenv(envNodeName, "arc-box")
	t.Setenv(envClusterID, "dc-7")

	path := filepath.Join(t.TempDir(), "agent_state.json")

	state, err := LoadOrCreateState(path)
	require.NoError(t, err)
	assert.NotEmpty(t, state.NodeID)
	assert.Equal(t, "arc-box", state.NodeName)
	assert.Equal(t, "dc-7", state.ClusterID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var onDisk AgentState
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, state, onDisk)

	again, err := LoadOrCreateState(path)
	require.NoError(t, err)
	assert.Equal(t, state, again)
}

func TestLoadOrCreateStateGeneratesNodeName(t *testing.T) {
	t.Setenv(envNodeName, "")
	t.Setenv(envClusterID, "")

	state, err := LoadOrCreateState(filepath.Join(t.TempDir(), "agent_state.json"))
	require.NoError(t, err)
	assert.Regexp(t, `^node-[0-9a-f]{8}$`, state.NodeName)
	assert.Empty(t, state.ClusterID)
}

func TestLoadOrCreateStateRejectsMissingNodeID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"node_name":"x"}`), 0o600))

	_, err := LoadOrCreateState(path)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLoadOrCreateStateRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_state.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	_, err := LoadOrCreateState(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestGetTotalDiskUsageSkipsNonNetworkMounts(t *testing.T) {
	mounts := filepath.Join(t.TempDir(), "mounts")
	require.NoError(t, os.WriteFile(mounts, []byte(
		"/dev/sda1 / ext4 rw 0 0\n"+
			"short line\n"+
			"tmpfs /tmp tmpfs rw 0 0\n"), 0o600))

	total, used, err := GetTotalDiskUsage(mounts)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, used)
}

func TestGetTotalDiskUsageMissingFile(t *testing.T) {
	_, _, err := GetTotalDiskUsage(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCountNVMe(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"nvme0n1", "nvme1n1", "sda", "loop0"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0o755))
	}

	assert.Equal(t, 2, countNVMe(dir))
	assert.Equal(t, 0, countNVMe(filepath.Join(dir, "missing")))
}

func TestVerifyAndSyncHardware(t *testing.T) {
	var got VerificationRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/nodes/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	specs := HardwareSpecs{NodeName: "n1"}
	applyGpuInfo(&specs, SyclGpuInfo(), 1)

	err := VerifyAndSyncHardware(context.Background(), srv.Client(), srv.URL+"/api/v1/", "node-123",
		func() (HardwareSpecs, error) { return specs, nil })
	require.NoError(t, err)

	assert.Equal(t, "node-123", got.NodeID)
	assert.Equal(t, specs, got.HardwareSpecs)
}

func TestVerifyAndSyncHardwareRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unknown node", http.StatusForbidden)
	}))
	defer srv.Close()

	err := VerifyAndSyncHardware(context.Background(), srv.Client(), srv.URL, "node-123",
		func() (HardwareSpecs, error) { return HardwareSpecs{}, nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "unknown node")
}

func TestVerifyAndSyncHardwareSpecsError(t *testing.T) {
	boom := errors.New("boom")

	err := VerifyAndSyncHardware(context.Background(), http.DefaultClient, "http://127.0.0.1:0", "id",
		func() (HardwareSpecs, error) { return HardwareSpecs{}, boom })
	assert.ErrorIs(t, err, boom)
}
