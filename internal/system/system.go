package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open file limit; reels are loaded with one
// open frame file per worker.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read the open file limit: %v", err)
		return
	}

	if rLimit.Cur >= 2048 {
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise the open file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

var referenceExtensions = []string{".jpg", ".jpeg", ".png", ".pdf"}

// FindLatestReference returns the most recently modified image or PDF in
// dir. It is used as the backdrop of a new reel.
func FindLatestReference(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), referenceExtensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no reference images found in %s", dir)
	}

	return latestFile, nil
}

func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// GetBestH264Encoder picks a hardware H.264 encoder when ffmpeg offers one.
func GetBestH264Encoder() string {
	// Preference: VideoToolbox (macOS), NVENC, then software libx264.
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}

// HostStats describes the machine a reel is exported on.
type HostStats struct {
	LogicalCPUs     int
	TotalMemory     uint64
	AvailableMemory uint64
	UsedPercent     float64
}

// ReadHostStats queries CPU and memory figures.
func ReadHostStats() (HostStats, error) {
	var st HostStats
	n, err := cpu.Counts(true)
	if err != nil {
		return st, fmt.Errorf("cpu count: %w", err)
	}
	st.LogicalCPUs = n
	vm, err := mem.VirtualMemory()
	if err != nil {
		return st, fmt.Errorf("memory stats: %w", err)
	}
	st.TotalMemory = vm.Total
	st.AvailableMemory = vm.Available
	st.UsedPercent = vm.UsedPercent
	return st, nil
}

func (s HostStats) String() string {
	return fmt.Sprintf("CPUs: %d | RAM: %.1f/%.1f GiB free (%.0f%% used)",
		s.LogicalCPUs, gib(s.AvailableMemory), gib(s.TotalMemory), s.UsedPercent)
}

func gib(b uint64) float64 {
	return float64(b) / (1 << 30)
}
