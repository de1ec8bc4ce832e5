package report

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
)

// RenderableData is implemented by values that render a different shape
// per format. Its result becomes the job data.
type RenderableData interface {
	RenderableData(f Format) (any, error)
}

type binding struct {
	controller *Controller
	defaults   Values
}

var (
	bindingsMu sync.RWMutex
	bindings   = map[reflect.Type]binding{}
)

// Renderable declares that values of type T render through c, with
// defaults applied below the options passed to [As].
func Renderable[T any](c *Controller, defaults Values) {
	bindingsMu.Lock()
	defer bindingsMu.Unlock()
	bindings[reflect.TypeFor[T]()] = binding{controller: c, defaults: deepCopyMap(defaults)}
}

// Unregister removes the declaration made by [Renderable] for T.
func Unregister[T any]() {
	bindingsMu.Lock()
	defer bindingsMu.Unlock()
	delete(bindings, reflect.TypeFor[T]())
}

// ControllerFor returns the controller declared for the dynamic type of v.
func ControllerFor(v any) (*Controller, error) {
	b, err := lookupBinding(v)
	if err != nil {
		return nil, err
	}
	return b.controller, nil
}

func lookupBinding(v any) (binding, error) {
	bindingsMu.RLock()
	defer bindingsMu.RUnlock()
	b, ok := bindings[reflect.TypeOf(v)]
	if !ok || b.controller == nil {
		return binding{}, fmt.Errorf("%w: %T", ErrControllerNotSet, v)
	}
	return b, nil
}

// As renders v in format f through the controller declared for its type.
// The data is v.RenderableData(f) when v implements [RenderableData], v
// itself otherwise. An error from RenderableData is returned unchanged.
func As(v any, f Format, opts Values, fns ...func(*Job) error) (string, error) {
	b, err := lookupBinding(v)
	if err != nil {
		return "", err
	}
	if !b.controller.Supports(f) {
		return "", fmt.Errorf("%w: %q for controller %q (available: %s)", ErrUnknownFormat, f, b.controller.Name(), b.controller.available())
	}
	var data any = v
	if rd, ok := v.(RenderableData); ok {
		data, err = rd.RenderableData(f)
		if err != nil {
			return "", err
		}
	}
	call := Merge(b.defaults, opts)
	call["data"] = data
	return b.controller.Render(f, call, fns...)
}

// SaveAs renders v to path. The format is the file extension.
func SaveAs(v any, path string, opts Values) error {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return fmt.Errorf("%w: no extension on %q", ErrUnknownFormat, path)
	}
	call := Merge(opts)
	call["file"] = path
	_, err := As(v, Format(strings.ToLower(ext)), call)
	return err
}
