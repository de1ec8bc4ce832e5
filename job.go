package report

import "maps"

// Job is one render in progress. It is handed to the functions passed to
// [Controller.Render] and to the controller's setup function.
type Job struct {
	controller *Controller
	formatter  Formatter
}

// Controller returns the controller that created the job.
func (j *Job) Controller() *Controller { return j.controller }

// Formatter returns the formatter bound to the job.
func (j *Job) Formatter() Formatter { return j.formatter }

// Format returns the format being produced.
func (j *Job) Format() Format { return j.formatter.base().format }

// Options returns the options shared with the formatter.
func (j *Job) Options() *Options { return j.formatter.base().opts }

// Data returns the data being rendered.
func (j *Job) Data() any { return j.formatter.base().data }

// SetData replaces the data being rendered.
func (j *Job) SetData(v any) { j.formatter.base().data = v }

// RenderFunc renders one format of a controller. When data is itself a
// [Values] or map[string]any and opts is nil, data is taken as the options.
type RenderFunc func(data any, opts Values, fns ...func(*Job) error) (string, error)

func (c *Controller) shortcut(f Format) RenderFunc {
	return func(data any, opts Values, fns ...func(*Job) error) (string, error) {
		if m, ok := data.(map[string]any); ok && opts == nil {
			return c.Render(f, m, fns...)
		}
		call := maps.Clone(opts)
		if call == nil {
			call = Values{}
		}
		if data != nil {
			call["data"] = data
		}
		return c.Render(f, call, fns...)
	}
}

// Shortcut returns the render function for f, built when f was registered.
func (c *Controller) Shortcut(f Format) (RenderFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.shortcuts[f]
	return fn, ok
}

// Shortcuts returns every registered format's render function.
func (c *Controller) Shortcuts() map[Format]RenderFunc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.shortcuts)
}
