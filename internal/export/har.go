package export

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/raysh454/web2api/internal/model"
	"github.com/raysh454/web2api/internal/utils"
)

// HAR is the HAR 1.2 document.
type HAR struct {
	Log HARLog `json:"log"`
}

type HARLog struct {
	Version string     `json:"version"`
	Creator HARCreator `json:"creator"`
	Entries []HAREntry `json:"entries"`
}

type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HAREntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Time            float64     `json:"time"`
	Request         HARRequest  `json:"request"`
	Response        HARResponse `json:"response"`
	Cache           struct{}    `json:"cache"`
	Timings         HARTimings  `json:"timings"`
	ResourceType    string      `json:"_resourceType,omitempty"`
}

type HARRequest struct {
	Method      string       `json:"method"`
	URL         string       `json:"url"`
	HTTPVersion string       `json:"httpVersion"`
	Cookies     []HARNameVal `json:"cookies"`
	Headers     []HARNameVal `json:"headers"`
	QueryString []HARNameVal `json:"queryString"`
	PostData    *HARPostData `json:"postData,omitempty"`
	HeadersSize int          `json:"headersSize"`
	BodySize    int          `json:"bodySize"`
}

type HARResponse struct {
	Status      int          `json:"status"`
	StatusText  string       `json:"statusText"`
	HTTPVersion string       `json:"httpVersion"`
	Cookies     []HARNameVal `json:"cookies"`
	Headers     []HARNameVal `json:"headers"`
	Content     HARContent   `json:"content"`
	RedirectURL string       `json:"redirectURL"`
	HeadersSize int          `json:"headersSize"`
	BodySize    int          `json:"bodySize"`
}

type HARNameVal struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type HARContent struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

type HARTimings struct {
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
}

// Creator identifies web2api in exported logs.
var Creator = HARCreator{Name: "web2api", Version: "0.1.0"}

// BuildHAR converts exchanges to a HAR document, keeping their order.
func BuildHAR(exchanges []model.Exchange) HAR {
	entries := make([]HAREntry, 0, len(exchanges))
	for _, ex := range exchanges {
		entries = append(entries, buildEntry(ex))
	}
	return HAR{Log: HARLog{Version: "1.2", Creator: Creator, Entries: entries}}
}

// WriteHAR writes exchanges as an indented HAR 1.2 file.
func WriteHAR(path string, exchanges []model.Exchange) error {
	data, err := json.MarshalIndent(BuildHAR(exchanges), "", "  ")
	if err != nil {
		return fmt.Errorf("encode har: %w", err)
	}
	if err := utils.AtomicWriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write har: %w", err)
	}
	return nil
}

func buildEntry(ex model.Exchange) HAREntry {
	started := ex.CapturedAt
	if started.IsZero() {
		started = time.Unix(0, 0)
	}

	req := HARRequest{
		Method:      ex.Method,
		URL:         ex.URL,
		HTTPVersion: "HTTP/1.1",
		Cookies:     []HARNameVal{},
		Headers:     sortedPairs(ex.RequestHeaders),
		QueryString: queryPairs(ex.URL),
		HeadersSize: -1,
		BodySize:    -1,
	}
	if ex.HasRequestBody() {
		req.BodySize = len(ex.RequestBody)
		mime := headerLookup(ex.RequestHeaders, "Content-Type")
		if mime == "" {
			mime = "text/plain"
		}
		req.PostData = &HARPostData{MimeType: mime, Text: string(ex.RequestBody)}
	}

	resp := HARResponse{
		Status:      ex.StatusCode,
		StatusText:  http.StatusText(ex.StatusCode),
		HTTPVersion: "HTTP/1.1",
		Cookies:     []HARNameVal{},
		Headers:     sortedPairs(ex.ResponseHeaders),
		Content:     HARContent{Size: len(ex.ResponseBody), MimeType: ex.MimeType},
		HeadersSize: -1,
		BodySize:    -1,
	}
	if ex.ResponseBody != nil {
		resp.BodySize = len(ex.ResponseBody)
		if utf8.Valid(ex.ResponseBody) {
			resp.Content.Text = string(ex.ResponseBody)
		} else {
			resp.Content.Text = base64.StdEncoding.EncodeToString(ex.ResponseBody)
			resp.Content.Encoding = "base64"
		}
	}

	return HAREntry{
		StartedDateTime: started.UTC().Format(time.RFC3339Nano),
		Time:            -1,
		Request:         req,
		Response:        resp,
		Timings:         HARTimings{Send: -1, Wait: -1, Receive: -1},
		ResourceType:    ex.ResourceType,
	}
}

func sortedPairs(h map[string]string) []HARNameVal {
	out := make([]HARNameVal, 0, len(h))
	for _, k := range model.HeaderNames(h) {
		out = append(out, HARNameVal{Name: k, Value: h[k]})
	}
	return out
}

func queryPairs(raw string) []HARNameVal {
	out := []HARNameVal{}
	u, err := url.Parse(raw)
	if err != nil {
		return out
	}
	q := u.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range q[k] {
			out = append(out, HARNameVal{Name: k, Value: v})
		}
	}
	return out
}

func headerLookup(h map[string]string, name string) string {
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
