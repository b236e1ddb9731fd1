package synth

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/raysh454/web2api/internal/model"
)

// EndpointName derives an identifier from the method and path of an
// exchange: POST /api/items -> PostApiItems, GET /api/items/7 ->
// GetApiItemsByID. Query strings and hosts are ignored.
func EndpointName(method, rawURL string) string {
	name := ExportedName(strings.ToLower(method))
	if u, err := url.Parse(rawURL); err == nil {
		for _, seg := range strings.Split(u.Path, "/") {
			switch {
			case seg == "":
			case isIdentifierSegment(seg):
				name += "ByID"
			default:
				name += ExportedName(seg)
			}
		}
	}
	if name == "" || name == "Field" {
		return "Endpoint"
	}
	return name
}

// endpointNames assigns every exchange a name that no other exchange in the
// run shares. Later duplicates get a numeric suffix in exchange order.
func endpointNames(exchanges []model.Exchange) []string {
	names := make([]string, len(exchanges))
	used := make(map[string]bool, len(exchanges))
	for i, ex := range exchanges {
		base := EndpointName(ex.Method, ex.URL)
		name := base
		for n := 2; used[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func isIdentifierSegment(seg string) bool {
	if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
		return true
	}
	return len(seg) == 36 && strings.Count(seg, "-") == 4
}

var initialisms = map[string]string{
	"id": "ID", "url": "URL", "uri": "URI", "http": "HTTP", "json": "JSON", "uuid": "UUID", "ip": "IP",
}

// ExportedName turns a wire name like "created_at" into "CreatedAt".
func ExportedName(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var sb strings.Builder
	for _, w := range words {
		if up, ok := initialisms[strings.ToLower(w)]; ok {
			sb.WriteString(up)
			continue
		}
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		sb.WriteString(string(rs))
	}
	out := sb.String()
	if out == "" {
		return "Field"
	}
	if unicode.IsDigit([]rune(out)[0]) {
		out = "F" + out
	}
	return out
}
