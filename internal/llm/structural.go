package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/synth"
)

// Structural renders Go models from the inferred shape of the captured bodies
// without calling a model. Output depends only on the exchange.
type Structural struct {
	inferrer synth.SchemaInferrer
}

func newStructural(context.Context, Config, logging.Logger) (synth.Generator, error) {
	return NewStructural(synth.StructuralInferrer{}), nil
}

// NewStructural returns a structural backend using inferrer.
func NewStructural(inferrer synth.SchemaInferrer) *Structural {
	return &Structural{inferrer: inferrer}
}

func (s *Structural) Generate(ctx context.Context, req synth.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if lang := strings.ToLower(req.Language); lang != "" && lang != "go" && lang != "golang" {
		return "", fmt.Errorf("structural backend generates Go only, not %s", req.Language)
	}

	ex := req.Exchange
	base := req.Name
	if base == "" {
		base = synth.EndpointName(ex.Method, ex.URL)
	}
	r := &goRenderer{}

	var reqType, respType string
	if ex.HasRequestBody() {
		td, err := s.inferrer.Infer(ex.RequestBody)
		switch {
		case errors.Is(err, synth.ErrNoSamples):
		case err == nil:
			reqType = r.named(base+"Request", td)
		case errors.Is(err, synth.ErrNotJSON):
			r.comment("%s request body is not JSON; sent as raw bytes.", base)
		default:
			return "", fmt.Errorf("infer request body: %w", err)
		}
	}
	if ex.HasResponseBody() {
		td, err := s.inferrer.Infer(ex.ResponseBody)
		switch {
		case errors.Is(err, synth.ErrNoSamples):
		case err == nil:
			respType = r.named(base+"Response", td)
		case errors.Is(err, synth.ErrNotJSON):
			r.comment("%s response body is not JSON.", base)
		default:
			return "", fmt.Errorf("infer response body: %w", err)
		}
	}

	r.example(base, ex.Method, ex.URL, ex.RequestHeaders, reqType, respType)
	return r.String(), nil
}

type goRenderer struct {
	blocks []string
}

func (r *goRenderer) String() string {
	return strings.Join(r.blocks, "\n\n") + "\n"
}

func (r *goRenderer) comment(format string, args ...any) {
	r.blocks = append(r.blocks, "// "+fmt.Sprintf(format, args...))
}

// named declares a type called name for td and returns the name. Non-object
// shapes become a defined type over the mapped Go type.
func (r *goRenderer) named(name string, td *synth.TypeDesc) string {
	if td.Kind != synth.KindObject || len(td.Fields) == 0 {
		r.blocks = append(r.blocks, fmt.Sprintf("type %s %s", name, r.goType(name, td)))
		return name
	}

	// Reserve the slot so the parent precedes its nested types.
	slot := len(r.blocks)
	r.blocks = append(r.blocks, "")

	var sb strings.Builder
	fmt.Fprintf(&sb, "type %s struct {\n", name)
	seen := map[string]int{}
	for _, f := range td.Fields {
		field := synth.ExportedName(f.Name)
		if n := seen[field]; n > 0 {
			field += strconv.Itoa(n + 1)
		}
		seen[synth.ExportedName(f.Name)]++

		tag := f.Name
		if f.Optional {
			tag += ",omitempty"
		}
		typ := r.goType(name+synth.ExportedName(f.Name), f.Type)
		fmt.Fprintf(&sb, "\t%s %s `json:%q`", field, typ, tag)
		if f.Type != nil && f.Type.Format != "" {
			fmt.Fprintf(&sb, " // %s", f.Type.Format)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	r.blocks[slot] = sb.String()
	return name
}

func (r *goRenderer) goType(hint string, td *synth.TypeDesc) string {
	if td == nil {
		return "any"
	}
	var t string
	switch td.Kind {
	case synth.KindString:
		t = "string"
	case synth.KindInteger:
		t = "int64"
	case synth.KindNumber:
		t = "float64"
	case synth.KindBoolean:
		t = "bool"
	case synth.KindArray:
		return "[]" + r.goType(singular(hint), td.Elem)
	case synth.KindObject:
		if len(td.Fields) == 0 {
			return "map[string]any"
		}
		t = r.named(hint, td)
	default:
		return "any"
	}
	if td.Nullable {
		return "*" + t
	}
	return t
}

func (r *goRenderer) example(base, method, rawURL string, headers map[string]string, reqType, respType string) {
	var sb strings.Builder
	ret := "error"
	if respType != "" {
		ret = fmt.Sprintf("(*%s, error)", respType)
	}
	params := "ctx context.Context, client *http.Client"
	if reqType != "" {
		params += ", in " + reqType
	}
	fail := "return err"
	if respType != "" {
		fail = "return nil, err"
	}

	fmt.Fprintf(&sb, "// Call%s invokes %s %s.\n", base, method, rawURL)
	fmt.Fprintf(&sb, "func Call%s(%s) %s {\n", base, params, ret)
	body := "nil"
	if reqType != "" {
		sb.WriteString("\tpayload, err := json.Marshal(in)\n")
		fmt.Fprintf(&sb, "\tif err != nil {\n\t\t%s\n\t}\n", fail)
		body = "bytes.NewReader(payload)"
	}
	fmt.Fprintf(&sb, "\treq, err := http.NewRequestWithContext(ctx, %q, %q, %s)\n", method, rawURL, body)
	fmt.Fprintf(&sb, "\tif err != nil {\n\t\t%s\n\t}\n", fail)
	if ct := headerValue(headers, "Content-Type"); ct != "" {
		fmt.Fprintf(&sb, "\treq.Header.Set(\"Content-Type\", %q)\n", ct)
	} else if reqType != "" {
		sb.WriteString("\treq.Header.Set(\"Content-Type\", \"application/json\")\n")
	}
	sb.WriteString("\tresp, err := client.Do(req)\n")
	fmt.Fprintf(&sb, "\tif err != nil {\n\t\t%s\n\t}\n", fail)
	sb.WriteString("\tdefer resp.Body.Close()\n")
	sb.WriteString("\tif resp.StatusCode >= 300 {\n")
	if respType != "" {
		sb.WriteString("\t\treturn nil, fmt.Errorf(\"unexpected status %s\", resp.Status)\n\t}\n")
		fmt.Fprintf(&sb, "\tvar out %s\n", respType)
		sb.WriteString("\tif err := json.NewDecoder(resp.Body).Decode(&out); err != nil {\n\t\treturn nil, err\n\t}\n")
		sb.WriteString("\treturn &out, nil\n")
	} else {
		sb.WriteString("\t\treturn fmt.Errorf(\"unexpected status %s\", resp.Status)\n\t}\n")
		sb.WriteString("\treturn nil\n")
	}
	sb.WriteString("}")
	r.blocks = append(r.blocks, sb.String())
}

func headerValue(h map[string]string, name string) string {
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func singular(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss"):
		return strings.TrimSuffix(name, "s")
	}
	return name + "Item"
}
