package hardware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"gpuinfo-agent/logger"
)

const (
	envNodeName  = "GPUINFO_NODE_NAME"
	envClusterID = "GPUINFO_CLUSTER_ID"
)

var ErrInvalidState = errors.New("state file is invalid: missing node_id")

// sysBlockDir is where block devices are listed.
var sysBlockDir = "/sys/block"

type HardwareSpecs struct {
	NodeName        string `json:"node_name"`
	ClusterID       string `json:"cluster_id"`
	CPUModel        string `json:"cpu_model"`
	CPUCores        string `json:"cpucores"`
	CPUCount        string `json:"cpu_count"`
	GPUModel        string `json:"gpu_model"`
	GPUVendor       string `json:"gpu_vendor"`
	GPUCount        string `json:"gpu_count"`
	GPUVRAMGB       string `json:"gpu_vram_gb"`
	GPUIntegrated   string `json:"gpu_integrated"`
	GPUComputeUnits string `json:"gpu_compute_units"`
	TotalRAMGB      string `json:"total_ram_gb"`
	StorageType     string `json:"storage_type"`
	StorageTotalGB  string `json:"storage_total_gb"`
	TotalHarddiskGB string `json:"total_harddisk_gb"`
	NVMeCount       string `json:"nvme_count"`
}

type VerificationRequest struct {
	NodeID        string        `json:"node_id"`
	HardwareSpecs HardwareSpecs `json:"hardware_specs"`
}

type AgentState struct {
	NodeID    string `json:"node_id"`
	NodeName  string `json:"node_name"`
	ClusterID string `json:"cluster_id"`
}

// LoadOrCreateState reads the agent state from path, generating and writing
// a fresh one on first run.
func LoadOrCreateState(path string) (AgentState, error) {
	var state AgentState

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return state, fmt.Errorf("failed to read state file: %w", err)
		}

		logger.Info().Str("path", path).Msg("state file not found, generating new state")
		state = newAgentState()

		newStateData, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return state, fmt.Errorf("failed to marshal new state: %w", err)
		}
		if err := os.WriteFile(path, newStateData, 0o644); err != nil {
			return state, fmt.Errorf("failed to write state file: %w", err)
		}

		logger.Info().
			Str("node_id", state.NodeID).
			Str("node_name", state.NodeName).
			Str("cluster_id", state.ClusterID).
			Msg("new state file created")
		return state, nil
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("failed to unmarshal state file: %w", err)
	}
	if state.NodeID == "" {
		return state, ErrInvalidState
	}

	logger.Info().
		Str("node_id", state.NodeID).
		Str("node_name", state.NodeName).
		Str("cluster_id", state.ClusterID).
		Msg("agent state loaded")
	return state, nil
}

func newAgentState() AgentState {
	nodeName := os.Getenv(envNodeName)
	if nodeName == "" {
		nodeName = fmt.Sprintf("node-%s", uuid.New().String()[:8])
		logger.Warn().Str("node_name", nodeName).Msg(envNodeName + " not set, using generated name")
	}

	clusterID := os.Getenv(envClusterID)
	if clusterID == "" {
		logger.Warn().Msg(envClusterID + " not set, it will be blank")
	}

	return AgentState{
		NodeID:    uuid.New().String(),
		NodeName:  nodeName,
		ClusterID: clusterID,
	}
}

// GetTotalDiskUsage sums capacity of network mounts listed in mountsFile,
// counting each source device once.
func GetTotalDiskUsage(mountsFile string) (total uint64, used uint64, err error) {
	fsWhitelist := map[string]bool{"nfs": true, "nfs4": true}

	file, err := os.Open(mountsFile)
	if err != nil {
		return 0, 0, fmt.Errorf("could not open host mounts file at %s: %w", mountsFile, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	seenDevices := make(map[string]bool)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		sourceDevice, mountPoint, fsType := fields[0], fields[1], fields[2]
		if !fsWhitelist[fsType] || seenDevices[sourceDevice] {
			continue
		}

		usage, diskErr := disk.Usage(mountPoint)
		if diskErr != nil {
			logger.Warn().Err(diskErr).Str("mount_point", mountPoint).Msg("could not get mount usage")
			continue
		}
		total += usage.Total
		used += usage.Used
		seenDevices[sourceDevice] = true
	}

	return total, used, scanner.Err()
}

// GetHardwareSpecs collects the host's hardware description for state.
func GetHardwareSpecs(state AgentState, mountsFile string) (HardwareSpecs, error) {
	var specs HardwareSpecs
	specs.NodeName = state.NodeName
	specs.ClusterID = state.ClusterID

	if cpuInfo, err := cpu.Info(); err == nil && len(cpuInfo) > 0 {
		specs.CPUModel = cpuInfo[0].ModelName
		physicalIDs := make(map[string]bool)
		for _, info := range cpuInfo {
			physicalIDs[info.PhysicalID] = true
		}
		specs.CPUCount = strconv.Itoa(len(physicalIDs))
	}
	if coreCount, err := cpu.Counts(true); err == nil {
		specs.CPUCores = strconv.Itoa(coreCount)
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		specs.TotalRAMGB = strconv.FormatUint(vmStat.Total/1024/1024/1024, 10)
	}

	getGpuSpecs(&specs)

	if usage, err := disk.Usage("/"); err == nil {
		specs.StorageTotalGB = strconv.FormatUint(usage.Total/1024/1024/1024, 10)
	} else {
		logger.Warn().Err(err).Msg("could not get usage for root partition")
	}

	totalDiskSpace, _, err := GetTotalDiskUsage(mountsFile)
	if err != nil {
		logger.Warn().Err(err).Msg("could not calculate network disk space")
	}
	specs.TotalHarddiskGB = strconv.FormatUint(totalDiskSpace/1024/1024/1024, 10)

	specs.StorageType = "NVMe"
	specs.NVMeCount = strconv.Itoa(countNVMe(sysBlockDir))

	return specs, nil
}

// getGpuSpecs fills the GPU fields from the first listed device.
func getGpuSpecs(specs *HardwareSpecs) {
	gpus := ListGpus()
	applyGpuInfo(specs, gpus[0], len(gpus))
}

func countNVMe(dir string) int {
	files, err := os.ReadDir(dir)
	if err != nil {
		logger.Debug().Err(err).Str("dir", dir).Msg("could not list block devices")
		return 0
	}

	n := 0
	for _, file := range files {
		if strings.HasPrefix(file.Name(), "nvme") {
			n++
		}
	}
	return n
}

// VerifyAndSyncHardware registers nodeID and its specs with the backend.
func VerifyAndSyncHardware(ctx context.Context, client *http.Client, baseURL, nodeID string,
	getSpecs func() (HardwareSpecs, error)) error {
	specs, err := getSpecs()
	if err != nil {
		return fmt.Errorf("could not collect hardware specs: %w", err)
	}

	jsonData, err := json.Marshal(VerificationRequest{NodeID: nodeID, HardwareSpecs: specs})
	if err != nil {
		return err
	}
	logger.Debug().RawJSON("request", jsonData).Msg("sending verification request")

	url := fmt.Sprintf("%s/nodes/register", strings.TrimSuffix(baseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("verification failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
