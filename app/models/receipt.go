package models

// Receipt document formats.
const (
	FormatThermal80 = "thermal_80"
	FormatThermal58 = "thermal_58"
	FormatA4        = "a4"
)

// Line alignment and size hints understood by the print backends.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"

	SizeNormal = "normal"
	SizeDouble = "double"
)

// ReceiptLine is one styled line of a composed document.
type ReceiptLine struct {
	Text  string `json:"text"`
	Align string `json:"align"`
	Bold  bool   `json:"bold"`
	Size  string `json:"size"`
	// Rule renders a full-width separator instead of text.
	Rule bool `json:"rule,omitempty"`
	// Cut marks the perforation point between customer and cashier copy.
	Cut bool `json:"cut,omitempty"`
}

// ReceiptDocument is a fully composed, backend-agnostic print document.
// The raw ESC/POS backend consumes Lines directly; rendering surfaces
// consume the same lines as monospace HTML.
type ReceiptDocument struct {
	Format        string        `json:"format"`
	ReceiptNumber string        `json:"receipt_number"`
	Title         string        `json:"title"`
	Lines         []ReceiptLine `json:"lines"`
	// Logo carries the company logo as a data URI or raw base64 image.
	// The raw backend prints inline payloads as a raster; rendering
	// surfaces can also load plain URLs.
	Logo string `json:"logo,omitempty"`
	// QRPayload, when non-empty, is printed as a QR code before the footer.
	QRPayload  string `json:"qr_payload,omitempty"`
	OpenDrawer bool   `json:"open_drawer,omitempty"`
}

// PrintResult reports which backend handled a document and how it went.
type PrintResult struct {
	Backend string `json:"backend"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Print backends, in silent fallback order.
const (
	BackendRaw     = "raw"
	BackendSurface = "surface"
	BackendPreview = "preview"
)
