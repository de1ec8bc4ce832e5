// Package report renders in-memory data to several output formats through
// controllers and pluggable formatters.
//
// A [Controller] declares the stages of a report and the formatters
// registered for each [Format]. A formatter embeds [Base] and implements
// any subset of the optional hooks; hooks it does not implement are
// skipped.
//
// # Render lifecycle
//
// [Controller.Render] runs, in order:
//
//  1. option resolution: controller defaults, then call-site options (see
//     [Merge]);
//  2. the caller's job functions, then the controller's setup function;
//  3. template application: the template selected by the options as they
//     stand after setup ranks above the defaults and below everything the
//     call site, the job functions and setup supplied;
//  4. the required option check;
//  5. the prepare hook;
//  6. the body stage hooks, wrapped by [Layouter] when implemented;
//  7. the finalize hook.
//
// The formatter output is returned, or written to the "file" option path.
// Setting both "io" and "file" fails before any hook runs.
//
// # Hooks
//
// Stage hooks are registered by name through [HookProvider]:
//
//	func (f *myFormatter) Hooks(h *report.Hooks) {
//	    h.Prepare("document", f.prepareDocument)
//	    h.Build("body", f.buildBody)
//	    h.Finalize("document", f.finalizeDocument)
//	}
//
// Fixed-name hooks are optional interfaces: [TemplateApplier] and
// [Layouter].
//
// # Multi-format formatters
//
// One factory may be registered for several formats. Inside a hook,
// [Base.When] runs a block only for the active format:
//
//	f.When(report.HTML, func() { f.Printf("<b>%s</b>\n", v) })
//	f.When(report.Text, func() { f.Println(v) })
//
// # Options
//
// [Options] is shared by pointer between the [Job] and the formatter. Keys
// are plain strings; Get, the typed accessors and Bind all read the same
// slot.
//
// # Templates
//
// A [Template] holds named bundles of defaults. Templates live in a
// [TemplateRegistry] for the life of the process; the "default" template
// applies to every render unless the render passes "template": false.
//
// # Rendering arbitrary values
//
// [Renderable] binds a type to a controller; [As] and [SaveAs] then render
// values of that type:
//
//	report.Renderable[*Inventory](inventoryController, report.Values{"title": "Stock"})
//	out, err := report.As(inv, report.CSV, nil)
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrUnknownFormat]: format not registered
//   - [ErrRequiredOptionNotSet]: a required option is nil after setup
//   - [ErrStageAlreadyDefined]: second prepare or finalize declaration
//   - [ErrControllerNotSet]: [As] on a type never bound
//   - [ErrTemplateNotDefined]: unknown template label
//   - [ErrMissingInterface]: data lacks the interface a formatter needs
//   - [ErrInvalidTemplate]: "go_template" does not parse
//   - [ErrConflictingOptions]: both "io" and "file" are set
//
// Errors returned by hooks, setup functions and RenderableData are passed
// through unchanged.
package report
