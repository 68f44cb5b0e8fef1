package hostproc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mixlayer/graph/mxl"
)

// StageSpec is one node in a declarative graph description. Unlike a
// yaegi-scripted loader, which could load an arbitrary compiled function by
// symbol name out of an interpreted script, a YAML document has no way to
// name a Go generic instantiation, so every stage here operates on
// mxl.JSON: the one type this package can construct an operator over
// without a code-generation step. Anything needing a narrower static type
// is built with the typed builder directly in Go, not through this loader.
type StageSpec struct {
	// ID is this stage's identifier, referenced by other stages' From.
	ID string `yaml:"id"`
	// Op selects the operator: "vec_source", "fs_line_source", "filter",
	// "batch", "collect", "debug_sink", "fs_line_sink".
	Op string `yaml:"op"`
	// From names the upstream stage's ID. Required for every op except
	// vec_source and fs_line_source.
	From string `yaml:"from,omitempty"`
	// Path is the filesystem path fs_line_source/fs_line_sink read or
	// write.
	Path string `yaml:"path,omitempty"`
	// Items seeds a vec_source with literal JSON objects.
	Items []map[string]any `yaml:"items,omitempty"`
	// BatchSize configures a batch stage.
	BatchSize int `yaml:"batch_size,omitempty"`
	// FilterField and FilterEquals configure a filter stage: keep records
	// where record[FilterField] == FilterEquals. This is deliberately the
	// only filter predicate YAML can express; anything more expressive is
	// a reason to drop to the Go builder instead.
	FilterField  string `yaml:"filter_field,omitempty"`
	FilterEquals any    `yaml:"filter_equals,omitempty"`
}

// GraphSpec is a full declarative graph: an ordered list of stages, wired
// by From reference rather than by YAML nesting, so fan-out (two stages
// naming the same From) is expressible directly.
type GraphSpec struct {
	Stages []StageSpec `yaml:"stages"`
}

// wrapAsItems folds a batch or a full collection of JSON records into a
// single JSON record, since every stage in this loader must produce a
// single mxl.JSON value -- there is no way to name "a sequence of JSON" as
// its own stage type in a YAML document the way the typed Go builder can.
func wrapAsItems(items []mxl.JSON) mxl.JSON {
	arr := make([]any, len(items))
	for i, v := range items {
		arr[i] = map[string]any(v)
	}
	return mxl.JSON{"items": arr}
}

// LoadGraphSpec reads and parses a YAML graph description from path.
func LoadGraphSpec(path string) (GraphSpec, error) {
	var spec GraphSpec

	b, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}

	if err := yaml.Unmarshal(b, &spec); err != nil {
		return spec, fmt.Errorf("hostproc: parsing graph spec: %w", err)
	}

	return spec, nil
}

// Build assembles spec into the given Builder, returning the handle of
// every non-sink stage keyed by its ID (debug_sink and fs_line_sink stages
// have no output handle and are not in the map), so a caller can attach
// additional wiring
// (e.g. a typed sink the YAML format has no syntax for) after loading.
func (spec GraphSpec) Build(b *mxl.Builder) (map[string]mxl.Handle[mxl.JSON], error) {
	jsonCodec := mxl.JSONCodec[mxl.JSON]()
	stringCodec := mxl.StringCodec()

	handles := map[string]mxl.Handle[mxl.JSON]{}

	for _, st := range spec.Stages {
		switch st.Op {
		case "vec_source":
			items := make([]mxl.JSON, 0, len(st.Items))
			for _, it := range st.Items {
				items = append(items, mxl.JSON(it))
			}
			handles[st.ID] = mxl.NewVecSource(b, items, jsonCodec).Label(st.ID)

		case "fs_line_source":
			lines := mxl.NewFsLineSource(b, st.Path)
			handles[st.ID] = mxl.Map(b, lines, stringCodec, jsonCodec, func(line string) mxl.JSON {
				return mxl.JSON{"line": line}
			}).Label(st.ID)

		case "filter":
			upstream, ok := handles[st.From]
			if !ok {
				return nil, fmt.Errorf("hostproc: stage %q: unknown upstream %q", st.ID, st.From)
			}
			field, want := st.FilterField, st.FilterEquals
			handles[st.ID] = upstream.Filter(jsonCodec, func(v mxl.JSON) bool {
				got, ok := v[field]
				return ok && got == want
			}).Label(st.ID)

		case "batch":
			upstream, ok := handles[st.From]
			if !ok {
				return nil, fmt.Errorf("hostproc: stage %q: unknown upstream %q", st.ID, st.From)
			}
			n := st.BatchSize
			if n <= 0 {
				n = 1
			}
			batched := upstream.Batch(n, jsonCodec, mxl.SequenceCodec(jsonCodec))
			handles[st.ID] = mxl.Map(b, batched, mxl.SequenceCodec(jsonCodec), jsonCodec, wrapAsItems).Label(st.ID)

		case "collect":
			upstream, ok := handles[st.From]
			if !ok {
				return nil, fmt.Errorf("hostproc: stage %q: unknown upstream %q", st.ID, st.From)
			}
			collected := upstream.Collect(jsonCodec, mxl.SequenceCodec(jsonCodec))
			handles[st.ID] = mxl.Map(b, collected, mxl.SequenceCodec(jsonCodec), jsonCodec, wrapAsItems).Label(st.ID)

		case "debug_sink":
			upstream, ok := handles[st.From]
			if !ok {
				return nil, fmt.Errorf("hostproc: stage %q: unknown upstream %q", st.ID, st.From)
			}
			mxl.NewDebugSink(b, upstream, jsonCodec)

		case "fs_line_sink":
			upstream, ok := handles[st.From]
			if !ok {
				return nil, fmt.Errorf("hostproc: stage %q: unknown upstream %q", st.ID, st.From)
			}
			lines := mxl.Map(b, upstream, jsonCodec, stringCodec, func(v mxl.JSON) string {
				return fmt.Sprintf("%v", map[string]any(v))
			})
			mxl.NewFsLineSink(b, lines, st.Path)

		default:
			return nil, fmt.Errorf("hostproc: stage %q: unknown op %q", st.ID, st.Op)
		}
	}

	return handles, nil
}
