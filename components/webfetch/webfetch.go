// Package webfetch provides a source node that fetches a fixed list of URLs and
// converts each page's HTML body to Markdown, emitting one page per tick
// instead of answering a single request/response call.
package webfetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/mixlayer/graph/mxl"
)

const (
	// DefaultTimeout bounds a single fetch, matching the reference tool's
	// default.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent on every request.
	DefaultUserAgent = "mxl-webfetch/1.0"
	// MaxBodySize caps the response body this source will read.
	MaxBodySize = 10 * 1024 * 1024
)

// Page is the emitted record: the final URL after redirects, paired with
// its Markdown-converted body.
type Page struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

// Codec encodes/decodes Page as JSON for use on a Handle[Page] edge.
func Codec() mxl.Codec[Page] {
	return mxl.JSONCodec[Page]()
}

// source emits one fetched-and-converted Page per tick, in reverse order of
// urls (matching VecSource's emission contract), then End. A fetch error
// is reported as Frame::Error for that URL rather than halting the node,
// the same non-terminal treatment op_source.go gives FsLineSource's I/O
// errors.
type source struct {
	client *http.Client
	urls   []string
	idx    int
	done   bool
}

func newClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			ForceAttemptHTTP2:     true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects (>10)")
			}
			return nil
		},
	}
}

// Source registers a source node emitting one Page per url in urls.
func Source(b *mxl.Builder, urls []string) mxl.Handle[Page] {
	node := &source{client: newClient(), urls: urls, idx: len(urls) - 1}
	return mxl.AddSource[Page](b, node)
}

func (n *source) Tick(ctx *mxl.NodeContext) error {
	codec := Codec()

	if n.done {
		return nil
	}

	if n.idx < 0 {
		n.done = true
		return mxl.SendTyped(ctx, 0, codec, mxl.EndFrame[Page]())
	}

	url := n.urls[n.idx]
	n.idx--

	page, err := n.fetch(url)
	if err != nil {
		ctx.Log([]byte("webfetch: " + url + ": " + err.Error()))
		return mxl.SendTyped(ctx, 0, codec, mxl.ErrorFrame[Page]())
	}

	return mxl.SendTyped(ctx, 0, codec, mxl.DataFrame(page))
}

func (n *source) fetch(rawURL string) (Page, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return Page{}, fmt.Errorf("empty url")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return Page{}, fmt.Errorf("reading body: %w", err)
	}
	if len(body) > MaxBodySize {
		return Page{}, fmt.Errorf("response exceeds %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return Page{}, fmt.Errorf("converting html: %w", err)
	}

	return Page{URL: resp.Request.URL.String(), Markdown: markdown}, nil
}
