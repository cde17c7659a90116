package models

// Printer connection types.
const (
	PrinterUSB     = "usb"
	PrinterNetwork = "network"
	PrinterSerial  = "serial"
	PrinterFile    = "file"
	PrinterWindows = "windows"
)

// PrinterConfig describes the receipt printer attached to the terminal.
// PaperWidth is in millimeters (58 or 80).
type PrinterConfig struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Address    string `json:"address"`
	Port       int    `json:"port"`
	PaperWidth int    `json:"paper_width"`
}

// DetectedPrinter is a printer discovered on the system or the network.
type DetectedPrinter struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	ConnectionType string `json:"connection_type"`
	Address        string `json:"address"`
	Port           int    `json:"port"`
	IsDefault      bool   `json:"is_default"`
	Status         string `json:"status"`
	Model          string `json:"model"`
}
