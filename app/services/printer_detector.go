package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"DataPos/app/models"

	"github.com/grandcat/zeroconf"
)

// DetectSystemPrinters enumerates printers installed on the system.
func DetectSystemPrinters() ([]models.DetectedPrinter, error) {
	switch runtime.GOOS {
	case "windows":
		return detectWindowsPrinters()
	case "linux", "darwin":
		return detectCUPSPrinters()
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// windowsPrinterInfo matches the Get-Printer JSON projection.
type windowsPrinterInfo struct {
	Name     string `json:"Name"`
	PortName string `json:"PortName"`
	Default  bool   `json:"Default"`
}

// detectWindowsPrinters queries the spooler via PowerShell.
func detectWindowsPrinters() ([]models.DetectedPrinter, error) {
	cmd := exec.Command("powershell", "-NoProfile", "-Command",
		`Get-CimInstance Win32_Printer | Select-Object Name, PortName, Default | ConvertTo-Json`)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to query printers: %w", err)
	}

	// ConvertTo-Json emits a bare object for a single printer
	var infos []windowsPrinterInfo
	trimmed := strings.TrimSpace(string(output))
	if strings.HasPrefix(trimmed, "{") {
		var single windowsPrinterInfo
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return nil, fmt.Errorf("failed to parse printer list: %w", err)
		}
		infos = []windowsPrinterInfo{single}
	} else if err := json.Unmarshal([]byte(trimmed), &infos); err != nil {
		return nil, fmt.Errorf("failed to parse printer list: %w", err)
	}

	printers := make([]models.DetectedPrinter, 0, len(infos))
	for _, info := range infos {
		if info.Name == "" {
			continue
		}
		p := models.DetectedPrinter{
			Name:      info.Name,
			Address:   info.PortName,
			IsDefault: info.Default,
			Status:    "unknown",
		}
		classifyPort(&p, info.PortName)
		printers = append(printers, p)
	}
	return printers, nil
}

// classifyPort derives the connection type from a Windows port name.
func classifyPort(p *models.DetectedPrinter, portName string) {
	portUpper := strings.ToUpper(portName)
	switch {
	case strings.HasPrefix(portUpper, "COM"), strings.HasPrefix(portUpper, "LPT"):
		p.Type = models.PrinterSerial
		p.ConnectionType = "serial"
	case strings.HasPrefix(portUpper, "USB"):
		p.Type = models.PrinterUSB
		p.ConnectionType = "usb"
	case strings.HasPrefix(portName, `\\`):
		p.Type = models.PrinterWindows
		p.ConnectionType = "windows_share"
	case strings.Contains(portUpper, "IP_"), strings.Contains(portName, "."):
		p.Type = models.PrinterNetwork
		p.ConnectionType = "ethernet"
		p.Port = 9100
		if idx := strings.Index(portName, "_"); idx >= 0 && idx+1 < len(portName) {
			p.Address = portName[idx+1:]
		}
	default:
		p.Type = models.PrinterWindows
		p.ConnectionType = "driver"
	}
}

// detectCUPSPrinters parses lpstat output on Linux and macOS.
func detectCUPSPrinters() ([]models.DetectedPrinter, error) {
	cmd := exec.Command("lpstat", "-p", "-d")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to detect printers (is CUPS installed?): %w", err)
	}

	var printers []models.DetectedPrinter
	var defaultPrinter string

	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "system default destination:") {
			defaultPrinter = strings.TrimSpace(strings.TrimPrefix(line, "system default destination:"))
			continue
		}

		// "printer NAME is idle. enabled since ..."
		if strings.HasPrefix(line, "printer ") {
			parts := strings.Fields(line)
			if len(parts) < 2 {
				continue
			}
			name := parts[1]
			p := models.DetectedPrinter{
				Name:           name,
				Type:           models.PrinterUSB,
				ConnectionType: "usb",
				Address:        "/dev/usb/lp0",
				IsDefault:      name == defaultPrinter,
				Status:         "unknown",
			}
			if strings.Contains(line, "idle") {
				p.Status = "online"
			} else if strings.Contains(line, "disabled") {
				p.Status = "offline"
			}
			printers = append(printers, p)
		}
	}
	return printers, nil
}

// DetectSerialPorts lists serial/USB device nodes usable for thermal printers.
func DetectSerialPorts() ([]string, error) {
	switch runtime.GOOS {
	case "windows":
		return detectWindowsSerialPorts()
	case "linux":
		return globDevices("/dev/ttyUSB*", "/dev/ttyACM*", "/dev/ttyS*", "/dev/usb/lp*")
	case "darwin":
		return globDevices("/dev/tty.usb*", "/dev/cu.usb*")
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

func detectWindowsSerialPorts() ([]string, error) {
	cmd := exec.Command("powershell", "-NoProfile", "-Command",
		`[System.IO.Ports.SerialPort]::GetPortNames()`)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	var ports []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "COM") {
			ports = append(ports, line)
		}
	}
	return ports, nil
}

func globDevices(patterns ...string) ([]string, error) {
	var ports []string
	for _, pattern := range patterns {
		cmd := exec.Command("sh", "-c", fmt.Sprintf("ls %s 2>/dev/null", pattern))
		output, err := cmd.CombinedOutput()
		if err != nil || len(output) == 0 {
			continue
		}
		for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
			if line != "" {
				ports = append(ports, line)
			}
		}
	}
	return ports, nil
}

// DiscoverNetworkPrinters browses mDNS for JetDirect-style printers on
// the local network.
func DiscoverNetworkPrinters(timeout time.Duration) ([]models.DetectedPrinter, error) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var printers []models.DetectedPrinter
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			p := models.DetectedPrinter{
				Name:           entry.Instance,
				Type:           models.PrinterNetwork,
				ConnectionType: "ethernet",
				Port:           entry.Port,
				Status:         "online",
			}
			if len(entry.AddrIPv4) > 0 {
				p.Address = entry.AddrIPv4[0].String()
			}
			if p.Address != "" {
				printers = append(printers, p)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := resolver.Browse(ctx, "_pdl-datastream._tcp", "local.", entries); err != nil {
		return nil, fmt.Errorf("mDNS browse failed: %w", err)
	}

	<-ctx.Done()
	<-done
	return printers, nil
}
