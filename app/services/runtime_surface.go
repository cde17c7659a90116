package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"DataPos/app/models"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Event names understood by the frontend print host. The host mounts a
// hidden (or visible, for previews) iframe per surface id, fills it
// with the rendered document and drives window.print on it.
const (
	eventSurfaceRender  = "print:render"
	eventSurfaceExecute = "print:execute"
	eventSurfaceDispose = "print:dispose"
)

var surfaceSeq uint64

// runtimeSurface is a RenderSurface backed by the webview frontend.
type runtimeSurface struct {
	ctx    context.Context
	id     string
	hidden bool
}

// NewRuntimeSurfaceFactory builds surfaces that render inside the
// application webview via runtime events.
func NewRuntimeSurfaceFactory(ctx context.Context) SurfaceFactory {
	return func(hidden bool) RenderSurface {
		return &runtimeSurface{
			ctx:    ctx,
			id:     fmt.Sprintf("surface-%d", atomic.AddUint64(&surfaceSeq, 1)),
			hidden: hidden,
		}
	}
}

func (s *runtimeSurface) Render(doc *models.ReceiptDocument) error {
	if s.ctx == nil {
		return fmt.Errorf("surface has no window context")
	}
	wailsRuntime.EventsEmit(s.ctx, eventSurfaceRender, map[string]interface{}{
		"id":       s.id,
		"hidden":   s.hidden,
		"document": doc,
	})
	return nil
}

func (s *runtimeSurface) Print() error {
	if s.ctx == nil {
		return fmt.Errorf("surface has no window context")
	}
	wailsRuntime.EventsEmit(s.ctx, eventSurfaceExecute, s.id)
	return nil
}

func (s *runtimeSurface) Dispose() {
	if s.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(s.ctx, eventSurfaceDispose, s.id)
}
