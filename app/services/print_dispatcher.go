package services

import (
	"fmt"
	"sync"
	"time"

	"DataPos/app/models"
)

// RenderSurface is a disposable rendering target for documents that the
// raw backend cannot handle. Implementations render the document in a
// webview (hidden for silent jobs, visible for previews), trigger the
// OS print path, and tear the view down again.
type RenderSurface interface {
	Render(doc *models.ReceiptDocument) error
	Print() error
	Dispose()
}

// SurfaceFactory produces a fresh surface per job.
type SurfaceFactory func(hidden bool) RenderSurface

// RawPrinter is the direct ESC/POS backend surface.
type RawPrinter interface {
	PrintDocument(doc *models.ReceiptDocument) error
}

// PrintOptions selects the dispatch mode.
type PrintOptions struct {
	// Silent prints without operator interaction: raw backend first,
	// hidden surface as fallback. Non-silent opens a preview instead.
	Silent bool
}

// PrintDispatcher routes composed documents to a backend. Every attempt
// is journaled; a failure never propagates into the sale that produced
// the document.
type PrintDispatcher struct {
	mu sync.Mutex

	raw      RawPrinter
	surfaces SurfaceFactory
	journal  *JournalService
	logger   *LoggerService

	// settleDelay gives the OS spooler time to pick the job up before
	// the surface is destroyed.
	settleDelay time.Duration

	preview    RenderSurface
	previewDoc *models.ReceiptDocument
}

// NewPrintDispatcher wires the dispatcher. raw may be nil when no
// printer is configured; journal and logger may be nil.
func NewPrintDispatcher(raw RawPrinter, surfaces SurfaceFactory, journal *JournalService, logger *LoggerService) *PrintDispatcher {
	return &PrintDispatcher{
		raw:         raw,
		surfaces:    surfaces,
		journal:     journal,
		logger:      logger,
		settleDelay: 2 * time.Second,
	}
}

// SetSurfaceFactory installs the surface backend. Called once the window
// context exists, since surfaces render inside the webview.
func (d *PrintDispatcher) SetSurfaceFactory(factory SurfaceFactory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.surfaces = factory
}

// SetSettleDelay overrides the surface teardown delay.
func (d *PrintDispatcher) SetSettleDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleDelay = delay
}

// Print dispatches a document. The returned result always says which
// backend ended up handling the job and whether it succeeded; the error
// inside is a PrintError and is informational for the caller.
func (d *PrintDispatcher) Print(doc *models.ReceiptDocument, opts PrintOptions) *models.PrintResult {
	if !opts.Silent {
		return d.openPreview(doc)
	}

	// Raw backend first: no rendering, no dialogs, fastest path.
	if d.raw != nil {
		if err := d.raw.PrintDocument(doc); err == nil {
			return d.finish(doc, models.BackendRaw, nil)
		} else if d.logger != nil {
			d.logger.LogWarning("Raw print failed, falling back to surface", err.Error())
		}
	}

	// Hidden surface fallback.
	err := d.printViaSurface(doc)
	return d.finish(doc, models.BackendSurface, err)
}

// printViaSurface runs one hidden render-print-dispose cycle. The
// surface is destroyed on every path, success or failure, after the
// settle delay.
func (d *PrintDispatcher) printViaSurface(doc *models.ReceiptDocument) error {
	if d.surfaces == nil {
		return fmt.Errorf("no rendering surface available")
	}

	surface := d.surfaces(true)
	defer func() {
		time.Sleep(d.settleDelay)
		surface.Dispose()
	}()

	if err := surface.Render(doc); err != nil {
		return fmt.Errorf("surface render failed: %w", err)
	}
	if err := surface.Print(); err != nil {
		return fmt.Errorf("surface print failed: %w", err)
	}
	return nil
}

// openPreview renders the document on a visible surface. Printing is a
// separate, explicit step via ConfirmPreview.
func (d *PrintDispatcher) openPreview(doc *models.ReceiptDocument) *models.PrintResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.surfaces == nil {
		return d.finishLocked(doc, models.BackendPreview, fmt.Errorf("no rendering surface available"))
	}

	// Replace a stale preview
	if d.preview != nil {
		d.preview.Dispose()
		d.preview = nil
		d.previewDoc = nil
	}

	surface := d.surfaces(false)
	if err := surface.Render(doc); err != nil {
		surface.Dispose()
		return d.finishLocked(doc, models.BackendPreview, fmt.Errorf("preview render failed: %w", err))
	}

	d.preview = surface
	d.previewDoc = doc
	return &models.PrintResult{Backend: models.BackendPreview, Success: true}
}

// ConfirmPreview prints the previewed document and tears the preview down.
func (d *PrintDispatcher) ConfirmPreview() *models.PrintResult {
	d.mu.Lock()
	surface := d.preview
	doc := d.previewDoc
	d.preview = nil
	d.previewDoc = nil
	d.mu.Unlock()

	if surface == nil {
		return &models.PrintResult{
			Backend: models.BackendPreview,
			Success: false,
			Error:   "no preview is open",
		}
	}

	err := surface.Print()
	time.Sleep(d.settleDelay)
	surface.Dispose()

	if err != nil {
		err = fmt.Errorf("preview print failed: %w", err)
	}
	return d.finish(doc, models.BackendPreview, err)
}

// CancelPreview discards an open preview without printing.
func (d *PrintDispatcher) CancelPreview() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.preview != nil {
		d.preview.Dispose()
		d.preview = nil
		d.previewDoc = nil
	}
}

func (d *PrintDispatcher) finish(doc *models.ReceiptDocument, backend string, err error) *models.PrintResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finishLocked(doc, backend, err)
}

func (d *PrintDispatcher) finishLocked(doc *models.ReceiptDocument, backend string, err error) *models.PrintResult {
	result := &models.PrintResult{Backend: backend, Success: err == nil}
	if err != nil {
		printErr := &PrintError{Backend: backend, Err: err}
		result.Error = printErr.Error()
		if d.logger != nil {
			d.logger.LogError("Print dispatch failed", printErr, doc.ReceiptNumber)
		}
	}

	if d.journal != nil {
		if jErr := d.journal.RecordPrintJob(doc.ReceiptNumber, doc.Format, backend, result.Success, result.Error); jErr != nil && d.logger != nil {
			d.logger.LogWarning("Print job not journaled", jErr.Error())
		}
	}
	return result
}
