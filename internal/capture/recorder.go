package capture

import (
	"encoding/base64"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
)

// Entry is one request from the browser's network log, reduced to the fields
// the capturer needs.
type Entry struct {
	RequestID    string
	ResourceType string
	URL          string
	Method       string

	RequestHeaders map[string]string
	HasPostData    bool
	PostData       []byte

	StatusCode      int
	StatusText      string
	MimeType        string
	ResponseHeaders map[string]string
	ResponseBody    []byte

	Finished    bool
	Failed      bool
	FailureText string
	StartedAt   time.Time
}

// recorder collects network events for one page. handle runs on chromedp's
// event goroutine and must not block.
type recorder struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []string
	idle    *idleWatcher
	now     func() time.Time
}

func newRecorder(idleAfter time.Duration) *recorder {
	return &recorder{
		entries: make(map[string]*Entry),
		idle:    newIdleWatcher(idleAfter),
		now:     time.Now,
	}
}

func (r *recorder) handle(ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		r.requestWillBeSent(e)
	case *network.EventResponseReceived:
		r.responseReceived(e)
	case *network.EventLoadingFinished:
		r.finish(string(e.RequestID), false, "")
	case *network.EventLoadingFailed:
		r.finish(string(e.RequestID), true, e.ErrorText)
	}
}

func (r *recorder) requestWillBeSent(e *network.EventRequestWillBeSent) {
	if e.Request == nil {
		return
	}
	id := string(e.RequestID)

	r.mu.Lock()
	entry, redirected := r.entries[id]
	if !redirected {
		entry = &Entry{RequestID: id, StartedAt: r.now()}
		r.entries[id] = entry
		r.order = append(r.order, id)
	}
	// A redirect reuses the request id; the entry keeps its position and
	// ends up describing the final hop.
	entry.ResourceType = string(e.Type)
	entry.URL = e.Request.URL
	entry.Method = e.Request.Method
	entry.RequestHeaders = flattenHeaders(e.Request.Headers)
	entry.HasPostData = e.Request.HasPostData
	entry.PostData = decodePostData(e.Request.PostDataEntries)
	r.mu.Unlock()

	if !redirected {
		r.idle.started()
	}
}

func (r *recorder) responseReceived(e *network.EventResponseReceived) {
	if e.Response == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[string(e.RequestID)]
	if !ok {
		return
	}
	if e.Type != "" {
		entry.ResourceType = string(e.Type)
	}
	entry.StatusCode = int(e.Response.Status)
	entry.StatusText = e.Response.StatusText
	entry.MimeType = e.Response.MimeType
	entry.ResponseHeaders = flattenHeaders(e.Response.Headers)
}

func (r *recorder) finish(id string, failed bool, reason string) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok && !entry.Finished && !entry.Failed {
		entry.Finished = !failed
		entry.Failed = failed
		entry.FailureText = reason
	} else {
		ok = false
	}
	r.mu.Unlock()

	if ok {
		r.idle.done()
	}
}

// snapshot returns copies of the entries in request order.
func (r *recorder) snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		e := *r.entries[id]
		e.RequestHeaders = maps.Clone(e.RequestHeaders)
		e.ResponseHeaders = maps.Clone(e.ResponseHeaders)
		e.PostData = slices.Clone(e.PostData)
		out = append(out, e)
	}
	return out
}

func flattenHeaders(h network.Headers) map[string]string {
	if len(h) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// decodePostData joins post data entries, which Chrome sends base64-encoded.
func decodePostData(entries []*network.PostDataEntry) []byte {
	if len(entries) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, pe := range entries {
		if pe == nil {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(pe.Bytes)
		if err != nil {
			sb.WriteString(pe.Bytes)
			continue
		}
		sb.Write(raw)
	}
	return []byte(sb.String())
}
