package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"DataPos/app/models"

	qrcode "github.com/skip2/go-qrcode"
)

// ESC/POS control bytes
const (
	escByte = 0x1B
	gsByte  = 0x1D
)

// PrinterService is the raw ESC/POS backend. It renders a composed
// receipt document straight to printer bytes and pushes them over the
// configured transport, bypassing any driver rendering.
type PrinterService struct {
	cfg    models.PrinterConfig
	logger *LoggerService
}

// NewPrinterService creates the raw backend for the configured printer.
func NewPrinterService(cfg models.PrinterConfig, logger *LoggerService) *PrinterService {
	if cfg.PaperWidth != 58 {
		cfg.PaperWidth = 80
	}
	if cfg.Port == 0 {
		cfg.Port = 9100
	}
	return &PrinterService{cfg: cfg, logger: logger}
}

// Configure replaces the printer settings at runtime.
func (s *PrinterService) Configure(cfg models.PrinterConfig) {
	if cfg.PaperWidth != 58 {
		cfg.PaperWidth = 80
	}
	if cfg.Port == 0 {
		cfg.Port = 9100
	}
	s.cfg = cfg
}

// Config returns the active printer settings.
func (s *PrinterService) Config() models.PrinterConfig {
	return s.cfg
}

// PrintDocument renders and sends a composed document. A4 documents are
// printed as plain text; thermal documents get full styling, QR code,
// cut and drawer kick.
func (s *PrinterService) PrintDocument(doc *models.ReceiptDocument) error {
	if s.cfg.Type == "" {
		return fmt.Errorf("no printer configured")
	}

	data, err := s.render(doc)
	if err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}

	if err := s.send(data); err != nil {
		return fmt.Errorf("failed to send to printer: %w", err)
	}

	if s.logger != nil {
		s.logger.LogInfo("Document printed", fmt.Sprintf("%s via %s", doc.ReceiptNumber, s.cfg.Type))
	}
	return nil
}

// OpenDrawer kicks the cash drawer without printing anything.
func (s *PrinterService) OpenDrawer() error {
	b := newEscposBuffer()
	b.initialize()
	b.kickDrawer()
	return s.send(b.bytes())
}

// TestPrint prints a short self-test slip.
func (s *PrinterService) TestPrint() error {
	b := newEscposBuffer()
	b.initialize()
	b.setAlign(models.AlignCenter)
	b.setEmphasize(true)
	b.writeLine("DataPos")
	b.setEmphasize(false)
	b.writeLine("Printer test")
	b.writeLine(time.Now().Format("02.01.2006 15:04:05"))
	b.feed(3)
	b.cut()
	return s.send(b.bytes())
}

// render turns the document lines into ESC/POS bytes.
func (s *PrinterService) render(doc *models.ReceiptDocument) ([]byte, error) {
	cols := thermalCols80
	if s.cfg.PaperWidth == 58 {
		cols = thermalCols58
	}

	b := newEscposBuffer()
	b.initialize()

	if doc.Logo != "" {
		if err := b.writeLogo(doc.Logo); err != nil && s.logger != nil {
			// The header falls back to the company name lines
			s.logger.LogWarning("Logo skipped", err.Error())
		}
	}

	for _, line := range doc.Lines {
		switch {
		case line.Cut:
			// Perforation between customer and cashier copy
			b.feed(2)
			b.cut()
		case line.Rule:
			b.setAlign(models.AlignLeft)
			b.setSize(models.SizeNormal)
			b.writeLine(strings.Repeat("-", cols))
		default:
			b.setAlign(line.Align)
			b.setEmphasize(line.Bold)
			b.setSize(line.Size)
			b.writeLine(line.Text)
			b.setEmphasize(false)
			b.setSize(models.SizeNormal)
		}
	}

	if doc.QRPayload != "" {
		if err := b.writeQR(doc.QRPayload); err != nil && s.logger != nil {
			// A receipt without its QR is still a receipt
			s.logger.LogWarning("QR code skipped", err.Error())
		}
	}

	b.feed(4)
	b.cut()

	if doc.OpenDrawer {
		b.kickDrawer()
	}

	return b.bytes(), nil
}

// send pushes raw bytes over the configured transport.
func (s *PrinterService) send(data []byte) error {
	switch s.cfg.Type {
	case models.PrinterNetwork:
		return s.sendNetwork(data)
	case models.PrinterUSB, models.PrinterSerial, models.PrinterFile:
		return s.sendDevice(data)
	case models.PrinterWindows:
		return s.sendWindowsRaw(data)
	default:
		return fmt.Errorf("unsupported printer type %q", s.cfg.Type)
	}
}

// sendNetwork streams to a JetDirect-style TCP port.
func (s *PrinterService) sendNetwork(data []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port)
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("could not reach printer at %s: %w", addr, err)
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write to %s failed: %w", addr, err)
	}
	return nil
}

// sendDevice writes to a device node or file (USB, serial, /dev/usb/lp0).
func (s *PrinterService) sendDevice(data []byte) error {
	address := s.cfg.Address
	if address == "" {
		return fmt.Errorf("no printer device configured")
	}

	f, err := os.OpenFile(address, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("could not open printer device %s: %w", address, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write to %s failed: %w", address, err)
	}
	return nil
}

// sendWindowsRaw sends raw bytes to a named Windows printer through the
// spooler in RAW mode, so the driver passes ESC/POS through untouched.
func (s *PrinterService) sendWindowsRaw(data []byte) error {
	if runtime.GOOS != "windows" {
		return fmt.Errorf("windows printer type is only available on windows")
	}
	if s.cfg.Name == "" {
		return fmt.Errorf("no printer name configured")
	}

	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("datapos-%d.prn", time.Now().UnixNano()))
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("could not stage print data: %w", err)
	}
	defer os.Remove(tmpFile)

	script := fmt.Sprintf(rawPrintScript, escapePSString(s.cfg.Name), escapePSString(tmpFile))
	cmd := exec.Command("powershell", "-NoProfile", "-Command", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("spooler rejected the job: %v (%s)", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// rawPrintScript writes a RAW datatype job via winspool.
const rawPrintScript = `
Add-Type @"
using System;
using System.IO;
using System.Runtime.InteropServices;
public class RawPrint {
  [StructLayout(LayoutKind.Sequential, CharSet=CharSet.Ansi)]
  public struct DOCINFO {
    [MarshalAs(UnmanagedType.LPStr)] public string pDocName;
    [MarshalAs(UnmanagedType.LPStr)] public string pOutputFile;
    [MarshalAs(UnmanagedType.LPStr)] public string pDataType;
  }
  [DllImport("winspool.drv", CharSet=CharSet.Ansi, SetLastError=true)]
  public static extern bool OpenPrinter(string name, out IntPtr h, IntPtr pd);
  [DllImport("winspool.drv", SetLastError=true)]
  public static extern bool ClosePrinter(IntPtr h);
  [DllImport("winspool.drv", CharSet=CharSet.Ansi, SetLastError=true)]
  public static extern bool StartDocPrinter(IntPtr h, int level, ref DOCINFO di);
  [DllImport("winspool.drv", SetLastError=true)]
  public static extern bool EndDocPrinter(IntPtr h);
  [DllImport("winspool.drv", SetLastError=true)]
  public static extern bool StartPagePrinter(IntPtr h);
  [DllImport("winspool.drv", SetLastError=true)]
  public static extern bool EndPagePrinter(IntPtr h);
  [DllImport("winspool.drv", SetLastError=true)]
  public static extern bool WritePrinter(IntPtr h, byte[] data, int count, out int written);
  public static void Send(string printer, string path) {
    IntPtr h;
    if (!OpenPrinter(printer, out h, IntPtr.Zero)) throw new Exception("OpenPrinter failed");
    var di = new DOCINFO { pDocName = "DataPos Receipt", pDataType = "RAW" };
    try {
      if (!StartDocPrinter(h, 1, ref di)) throw new Exception("StartDocPrinter failed");
      StartPagePrinter(h);
      byte[] data = File.ReadAllBytes(path);
      int written;
      if (!WritePrinter(h, data, data.Length, out written)) throw new Exception("WritePrinter failed");
      EndPagePrinter(h);
      EndDocPrinter(h);
    } finally { ClosePrinter(h); }
  }
}
"@
[RawPrint]::Send('%s', '%s')
`

func escapePSString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// escposBuffer builds an ESC/POS byte stream.
type escposBuffer struct {
	buf bytes.Buffer
}

func newEscposBuffer() *escposBuffer {
	return &escposBuffer{}
}

func (b *escposBuffer) bytes() []byte {
	return b.buf.Bytes()
}

// initialize resets the printer state (ESC @).
func (b *escposBuffer) initialize() {
	b.buf.Write([]byte{escByte, '@'})
}

// setAlign sets justification (ESC a n).
func (b *escposBuffer) setAlign(align string) {
	var n byte
	switch align {
	case models.AlignCenter:
		n = 1
	case models.AlignRight:
		n = 2
	default:
		n = 0
	}
	b.buf.Write([]byte{escByte, 'a', n})
}

// setEmphasize toggles bold (ESC E n).
func (b *escposBuffer) setEmphasize(on bool) {
	var n byte
	if on {
		n = 1
	}
	b.buf.Write([]byte{escByte, 'E', n})
}

// setSize selects character size (GS ! n).
func (b *escposBuffer) setSize(size string) {
	var n byte
	if size == models.SizeDouble {
		n = 0x11 // double width and height
	}
	b.buf.Write([]byte{gsByte, '!', n})
}

// writeLine prints one line of text. Diacritics are folded to ASCII
// because most thermal firmwares ship without the Albanian code page.
func (b *escposBuffer) writeLine(text string) {
	b.buf.WriteString(removeDiacritics(text))
	b.buf.WriteByte('\n')
}

// feed advances n lines (ESC d n).
func (b *escposBuffer) feed(n byte) {
	b.buf.Write([]byte{escByte, 'd', n})
}

// cut performs a partial cut (GS V 66 0).
func (b *escposBuffer) cut() {
	b.buf.Write([]byte{gsByte, 'V', 66, 0})
}

// kickDrawer pulses drawer pin 2 (ESC p 0 25 250).
func (b *escposBuffer) kickDrawer() {
	b.buf.Write([]byte{escByte, 'p', 0, 25, 250})
}

// maxLogoWidth is the dot width of 80mm paper at 203 dpi. Wider logos
// would be clipped by the head, so they are refused instead.
const maxLogoWidth = 576

// writeLogo decodes an inline logo payload (data URI or bare base64
// PNG/JPEG) and prints it as a centered raster. Plain URLs are left to
// the rendering surfaces, which fetch images themselves.
func (b *escposBuffer) writeLogo(payload string) error {
	if strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://") {
		return fmt.Errorf("logo is a remote URL, the raw backend prints inline images only")
	}
	if i := strings.Index(payload, "base64,"); i >= 0 {
		payload = payload[i+len("base64,"):]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("failed to decode logo payload: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to decode logo image: %w", err)
	}
	if w := img.Bounds().Dx(); w > maxLogoWidth {
		return fmt.Errorf("logo is %d dots wide, the print head fits %d", w, maxLogoWidth)
	}

	b.setAlign(models.AlignCenter)
	b.writeRaster(img)
	b.setAlign(models.AlignLeft)
	b.feed(1)
	return nil
}

// writeQR renders the payload as a QR code and prints it as a GS v 0
// raster image, centered.
func (b *escposBuffer) writeQR(payload string) error {
	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to build QR code: %w", err)
	}

	img := qr.Image(168)
	b.setAlign(models.AlignCenter)
	b.writeRaster(img)
	b.setAlign(models.AlignLeft)
	return nil
}

// writeRaster prints a monochrome image via GS v 0. Pixels darker than
// mid-gray print black.
func (b *escposBuffer) writeRaster(img image.Image) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	bytesPerRow := (width + 7) / 8

	b.buf.Write([]byte{gsByte, 'v', '0', 0})
	b.buf.Write([]byte{byte(bytesPerRow & 0xFF), byte(bytesPerRow >> 8)})
	b.buf.Write([]byte{byte(height & 0xFF), byte(height >> 8)})

	row := make([]byte, bytesPerRow)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for i := range row {
			row[i] = 0
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// 16-bit channels; average below half intensity is "ink"
			if (r+g+bl)/3 < 0x8000 {
				col := x - bounds.Min.X
				row[col/8] |= 0x80 >> uint(col%8)
			}
		}
		b.buf.Write(row)
	}
	b.buf.WriteByte('\n')
}

// removeDiacritics folds accented characters to their ASCII base.
func removeDiacritics(text string) string {
	replacements := map[rune]rune{
		'ë': 'e', 'Ë': 'E',
		'ç': 'c', 'Ç': 'C',
		'á': 'a', 'à': 'a', 'â': 'a', 'ä': 'a',
		'é': 'e', 'è': 'e', 'ê': 'e',
		'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
		'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o',
		'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
		'ñ': 'n',
		'Á': 'A', 'À': 'A', 'Â': 'A', 'Ä': 'A',
		'É': 'E', 'È': 'E', 'Ê': 'E',
		'Í': 'I', 'Ì': 'I', 'Î': 'I', 'Ï': 'I',
		'Ó': 'O', 'Ò': 'O', 'Ô': 'O', 'Ö': 'O',
		'Ú': 'U', 'Ù': 'U', 'Û': 'U', 'Ü': 'U',
		'Ñ': 'N',
	}

	var sb strings.Builder
	for _, r := range text {
		if mapped, ok := replacements[r]; ok {
			sb.WriteRune(mapped)
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
