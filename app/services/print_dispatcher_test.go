package services_test

import (
	"fmt"
	"testing"

	"DataPos/app/models"
	"DataPos/app/services"
)

type fakeRawPrinter struct {
	err   error
	calls int
}

func (f *fakeRawPrinter) PrintDocument(doc *models.ReceiptDocument) error {
	f.calls++
	return f.err
}

type fakeSurface struct {
	hidden    bool
	renderErr error
	printErr  error
	rendered  int
	printed   int
	disposed  int
}

func (f *fakeSurface) Render(doc *models.ReceiptDocument) error {
	f.rendered++
	return f.renderErr
}

func (f *fakeSurface) Print() error {
	f.printed++
	return f.printErr
}

func (f *fakeSurface) Dispose() {
	f.disposed++
}

// surfaceRecorder hands out fake surfaces and remembers them.
type surfaceRecorder struct {
	renderErr error
	printErr  error
	surfaces  []*fakeSurface
}

func (r *surfaceRecorder) factory(hidden bool) services.RenderSurface {
	s := &fakeSurface{hidden: hidden, renderErr: r.renderErr, printErr: r.printErr}
	r.surfaces = append(r.surfaces, s)
	return s
}

func testDoc() *models.ReceiptDocument {
	return &models.ReceiptDocument{Format: models.FormatThermal80, ReceiptNumber: "RCP-20260901-0001"}
}

func newDispatcher(raw *fakeRawPrinter, rec *surfaceRecorder) *services.PrintDispatcher {
	var rawIface services.RawPrinter
	if raw != nil {
		rawIface = raw
	}
	var factory services.SurfaceFactory
	if rec != nil {
		factory = rec.factory
	}
	d := services.NewPrintDispatcher(rawIface, factory, nil, nil)
	d.SetSettleDelay(0)
	return d
}

func TestSilentPrintPrefersRaw(t *testing.T) {
	raw := &fakeRawPrinter{}
	rec := &surfaceRecorder{}
	d := newDispatcher(raw, rec)

	result := d.Print(testDoc(), services.PrintOptions{Silent: true})

	if !result.Success || result.Backend != models.BackendRaw {
		t.Errorf("result = %+v, want raw success", result)
	}
	if raw.calls != 1 {
		t.Errorf("raw called %d times, want 1", raw.calls)
	}
	if len(rec.surfaces) != 0 {
		t.Errorf("%d surfaces created although raw succeeded", len(rec.surfaces))
	}
}

func TestSilentPrintFallsBackToSurface(t *testing.T) {
	raw := &fakeRawPrinter{err: fmt.Errorf("printer offline")}
	rec := &surfaceRecorder{}
	d := newDispatcher(raw, rec)

	result := d.Print(testDoc(), services.PrintOptions{Silent: true})

	if !result.Success || result.Backend != models.BackendSurface {
		t.Errorf("result = %+v, want surface success", result)
	}
	if len(rec.surfaces) != 1 {
		t.Fatalf("%d surfaces created, want 1", len(rec.surfaces))
	}
	s := rec.surfaces[0]
	if !s.hidden {
		t.Error("silent fallback used a visible surface")
	}
	if s.rendered != 1 || s.printed != 1 || s.disposed != 1 {
		t.Errorf("surface lifecycle = render %d / print %d / dispose %d, want 1 each", s.rendered, s.printed, s.disposed)
	}
}

func TestSilentPrintDisposesOnFailure(t *testing.T) {
	rec := &surfaceRecorder{printErr: fmt.Errorf("spooler rejected the job")}
	d := newDispatcher(nil, rec)

	result := d.Print(testDoc(), services.PrintOptions{Silent: true})

	if result.Success {
		t.Error("result reports success although the surface print failed")
	}
	if result.Error == "" {
		t.Error("failed result carries no error message")
	}
	if rec.surfaces[0].disposed != 1 {
		t.Error("surface leaked after a failed print")
	}
}

func TestSilentPrintWithNoBackends(t *testing.T) {
	d := newDispatcher(nil, nil)

	result := d.Print(testDoc(), services.PrintOptions{Silent: true})
	if result.Success {
		t.Error("result reports success with no backends at all")
	}
}

func TestPreviewFlow(t *testing.T) {
	rec := &surfaceRecorder{}
	d := newDispatcher(nil, rec)

	result := d.Print(testDoc(), services.PrintOptions{Silent: false})
	if !result.Success || result.Backend != models.BackendPreview {
		t.Fatalf("result = %+v, want preview success", result)
	}

	s := rec.surfaces[0]
	if s.hidden {
		t.Error("preview surface is hidden")
	}
	if s.printed != 0 {
		t.Error("preview printed before confirmation")
	}

	confirm := d.ConfirmPreview()
	if !confirm.Success {
		t.Errorf("ConfirmPreview = %+v, want success", confirm)
	}
	if s.printed != 1 || s.disposed != 1 {
		t.Errorf("surface lifecycle after confirm = print %d / dispose %d, want 1 each", s.printed, s.disposed)
	}

	again := d.ConfirmPreview()
	if again.Success {
		t.Error("second ConfirmPreview reported success with no preview open")
	}
}

func TestPreviewCancel(t *testing.T) {
	rec := &surfaceRecorder{}
	d := newDispatcher(nil, rec)

	d.Print(testDoc(), services.PrintOptions{Silent: false})
	d.CancelPreview()

	s := rec.surfaces[0]
	if s.printed != 0 {
		t.Error("cancelled preview still printed")
	}
	if s.disposed != 1 {
		t.Error("cancelled preview surface leaked")
	}
}

func TestPreviewReplacesStaleSurface(t *testing.T) {
	rec := &surfaceRecorder{}
	d := newDispatcher(nil, rec)

	d.Print(testDoc(), services.PrintOptions{Silent: false})
	d.Print(testDoc(), services.PrintOptions{Silent: false})

	if len(rec.surfaces) != 2 {
		t.Fatalf("%d surfaces created, want 2", len(rec.surfaces))
	}
	if rec.surfaces[0].disposed != 1 {
		t.Error("stale preview surface not disposed")
	}
	if rec.surfaces[1].disposed != 0 {
		t.Error("fresh preview surface disposed prematurely")
	}
}
