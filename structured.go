package report

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// structuredFormatter serves JSON, JSONL and YAML. Records are emitted as
// objects keyed by column name; data without column names is encoded as is.
type structuredFormatter struct {
	Base
}

func newStructuredFormatter() Formatter { return &structuredFormatter{} }

func (f *structuredFormatter) Hooks(h *Hooks) {
	h.Build(StageTableBody, f.buildTableBody)
}

func (f *structuredFormatter) ApplyTemplate(_ *Template, layer *Options) {
	applyTableTemplate(layer)
}

func (f *structuredFormatter) items() []any {
	if _, ok := f.Data().(ColumnNamer); !ok {
		return []any{f.Data()}
	}
	_, recs, err := tableOf(&f.Base)
	if err != nil {
		return []any{f.Data()}
	}
	items := make([]any, len(recs))
	for i, r := range recs {
		items[i] = r.Map()
	}
	return items
}

func (f *structuredFormatter) buildTableBody() error {
	items := f.items()
	indent := f.Options().String("indent")
	var err error
	f.When(JSON, func() {
		enc := json.NewEncoder(f.Output())
		enc.SetIndent("", indent)
		if _, tabular := f.Data().(ColumnNamer); tabular {
			err = enc.Encode(items)
		} else {
			err = enc.Encode(f.Data())
		}
	})
	f.When(JSONL, func() {
		for _, item := range items {
			enc := json.NewEncoder(f.Output())
			if err = enc.Encode(item); err != nil {
				return
			}
		}
	})
	f.When(YAML, func() {
		enc := yaml.NewEncoder(f.Output())
		if indent != "" {
			enc.SetIndent(len(indent))
		}
		if _, tabular := f.Data().(ColumnNamer); tabular {
			err = enc.Encode(items)
		} else {
			err = enc.Encode(f.Data())
		}
		if err == nil {
			err = enc.Close()
		}
	})
	return err
}
