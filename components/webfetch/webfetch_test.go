package webfetch

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mixlayer/graph/mxl"
)

type recordingSink struct {
	got  []Page
	done bool
}

func (n *recordingSink) Tick(ctx *mxl.NodeContext) error {
	codec := Codec()
	if n.done {
		return nil
	}
	f, ok := mxl.RecvTyped(ctx, 0, codec)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
		}
		return nil
	}
	if f.IsEnd() {
		n.done = true
		return nil
	}
	if v, isData := f.Value(); isData {
		n.got = append(n.got, v)
	}
	return nil
}

// TestSourceEmitsEndWithNoURLs confirms an empty url list goes straight to
// the terminal End frame on the first tick, matching VecSource's empty-input
// behavior.
func TestSourceEmitsEndWithNoURLs(t *testing.T) {
	b := mxl.NewBuilder()
	src := Source(b, nil)
	rec := &recordingSink{}
	mxl.Sink[Page](b, src, rec, "")

	d := mxl.NewDriver(b.Graph())
	if err := d.RunToQuiescence(); err != nil {
		t.Fatalf("RunToQuiescence: %v", err)
	}
	if len(rec.got) != 0 {
		t.Fatalf("got %d pages, want 0", len(rec.got))
	}
	if !rec.done {
		t.Fatal("expected the sink to observe stream end")
	}
}

// TestSourceFetchesAndConvertsMarkdown drives a real loopback HTTP server
// through the node's Tick, exercising the HTML-to-Markdown conversion path
// without reaching the network.
func TestSourceFetchesAndConvertsMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<h1>Hello</h1><p>World</p>"))
	}))
	defer srv.Close()

	b := mxl.NewBuilder()
	src := Source(b, []string{srv.URL})
	rec := &recordingSink{}
	mxl.Sink[Page](b, src, rec, "")

	d := mxl.NewDriver(b.Graph())
	if err := d.RunToQuiescence(); err != nil {
		t.Fatalf("RunToQuiescence: %v", err)
	}

	if len(rec.got) != 1 {
		t.Fatalf("got %d pages, want 1", len(rec.got))
	}
	if rec.got[0].Markdown == "" {
		t.Fatal("expected non-empty markdown conversion")
	}
}

// TestSourceReportsFetchErrorsAsNonTerminal confirms a fetch failure for one
// url doesn't halt the node: it logs and moves on to End.
func TestSourceReportsFetchErrorsAsNonTerminal(t *testing.T) {
	b := mxl.NewBuilder()
	src := Source(b, []string{"http://127.0.0.1:1"})
	rec := &recordingSink{}
	mxl.Sink[Page](b, src, rec, "")

	d := mxl.NewDriver(b.Graph())
	var logged []string
	d.SetLogger(func(msg []byte) { logged = append(logged, string(msg)) })

	if err := d.RunToQuiescence(); err != nil {
		t.Fatalf("RunToQuiescence: %v", err)
	}

	if len(rec.got) != 0 {
		t.Fatalf("got %d pages, want 0 for an unreachable host", len(rec.got))
	}
	if len(logged) == 0 {
		t.Fatal("expected the fetch failure to be logged")
	}
}

func TestFetchRejectsEmptyURL(t *testing.T) {
	n := &source{client: newClient()}
	if _, err := n.fetch("   "); err == nil {
		t.Fatal("expected an error fetching a blank url")
	}
}
