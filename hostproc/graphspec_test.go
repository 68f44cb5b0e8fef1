package hostproc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mixlayer/graph/mxl"
)

func writeSpec(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing spec fixture: %v", err)
	}
	return path
}

func TestLoadGraphSpecParsesStages(t *testing.T) {
	path := writeSpec(t, `
stages:
  - id: src
    op: vec_source
    items:
      - kind: even
        n: 1
      - kind: even
        n: 2
  - id: kept
    op: filter
    from: src
    filter_field: kind
    filter_equals: even
  - id: out
    op: debug_sink
    from: kept
`)

	spec, err := LoadGraphSpec(path)
	if err != nil {
		t.Fatalf("LoadGraphSpec: %v", err)
	}
	if len(spec.Stages) != 3 {
		t.Fatalf("got %d stages, want 3", len(spec.Stages))
	}
	if spec.Stages[0].Op != "vec_source" || spec.Stages[1].Op != "filter" || spec.Stages[2].Op != "debug_sink" {
		t.Fatalf("unexpected stage ops: %+v", spec.Stages)
	}
}

func TestGraphSpecBuildRejectsUnknownUpstream(t *testing.T) {
	spec := GraphSpec{Stages: []StageSpec{
		{ID: "out", Op: "debug_sink", From: "missing"},
	}}

	b := mxl.NewBuilder()
	if _, err := spec.Build(b); err == nil {
		t.Fatal("expected an error referencing an unknown upstream stage")
	}
}

func TestGraphSpecBuildRejectsUnknownOp(t *testing.T) {
	spec := GraphSpec{Stages: []StageSpec{
		{ID: "src", Op: "not_a_real_op"},
	}}

	b := mxl.NewBuilder()
	if _, err := spec.Build(b); err == nil {
		t.Fatal("expected an error for an unrecognized op")
	}
}

// TestGraphSpecBuildFilterAndDebugSink assembles vec_source -> filter ->
// debug_sink from a declarative spec and drives it to quiescence, confirming
// the predicate keeps only the matching record.
func TestGraphSpecBuildFilterAndDebugSink(t *testing.T) {
	spec := GraphSpec{Stages: []StageSpec{
		{ID: "src", Op: "vec_source", Items: []map[string]any{
			{"kind": "even", "n": 1.0},
			{"kind": "odd", "n": 2.0},
		}},
		{ID: "kept", Op: "filter", From: "src", FilterField: "kind", FilterEquals: "even"},
		{ID: "out", Op: "debug_sink", From: "kept"},
	}}

	b := mxl.NewBuilder()
	if _, err := spec.Build(b); err != nil {
		t.Fatalf("Build: %v", err)
	}

	d := mxl.NewDriver(b.Graph())
	var logged []string
	d.SetLogger(func(msg []byte) { logged = append(logged, string(msg)) })

	if err := d.RunToQuiescence(); err != nil {
		t.Fatalf("RunToQuiescence: %v", err)
	}

	if len(logged) != 2 {
		t.Fatalf("got %d log lines %v, want 2 (one matching record, then End)", len(logged), logged)
	}
	if logged[len(logged)-1] != "End" {
		t.Fatalf("got last log line %q, want End", logged[len(logged)-1])
	}
}

// TestGraphSpecBuildBatchWrapsItems exercises the batch stage's wrapAsItems
// folding: every item in a full batch lands under a single "items" key.
func TestGraphSpecBuildBatchWrapsItems(t *testing.T) {
	spec := GraphSpec{Stages: []StageSpec{
		{ID: "src", Op: "vec_source", Items: []map[string]any{
			{"n": 1.0},
			{"n": 2.0},
		}},
		{ID: "batched", Op: "batch", From: "src", BatchSize: 2},
		{ID: "out", Op: "debug_sink", From: "batched"},
	}}

	b := mxl.NewBuilder()
	if _, err := spec.Build(b); err != nil {
		t.Fatalf("Build: %v", err)
	}

	d := mxl.NewDriver(b.Graph())
	var logged []string
	d.SetLogger(func(msg []byte) { logged = append(logged, string(msg)) })

	if err := d.RunToQuiescence(); err != nil {
		t.Fatalf("RunToQuiescence: %v", err)
	}

	if len(logged) != 2 {
		t.Fatalf("got %d log lines %v, want 2 (one wrapped batch, then End)", len(logged), logged)
	}
	if logged[0] == "End" {
		t.Fatal("expected the wrapped batch record before End")
	}
}
