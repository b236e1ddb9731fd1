package demoserver

import "html/template"

// PageDefinition is one HTML page served by the demo server. Scripts call
// back into the server through absolute URLs built from the request's host,
// so the page keeps working after it is saved and reopened from disk.
type PageDefinition struct {
	Path        string
	Description string
	Template    *template.Template
}

type pageData struct {
	Origin string
	Pages  []PageDefinition
}

// GetAllPages returns all demo page definitions.
func GetAllPages() []PageDefinition {
	return []PageDefinition{
		{Path: "/page", Description: "POSTs {\"q\":\"x\"} to /api/items on load", Template: postPage},
		{Path: "/page/get", Description: "GETs /api/items/1 on load", Template: getPage},
		{Path: "/page/multi", Description: "three sequential XHRs: list, create, read", Template: multiPage},
		{Path: "/page/fetch", Description: "uses fetch() instead of XMLHttpRequest", Template: fetchPage},
		{Path: "/static", Description: "no scripts, no traffic", Template: staticPage},
		{Path: "/page/hang", Description: "never finishes loading", Template: hangPage},
	}
}

const xhrHelper = `
function xhr(method, url, body, done) {
  var r = new XMLHttpRequest();
  r.open(method, url);
  if (body !== null) { r.setRequestHeader("Content-Type", "application/json"); }
  r.onloadend = function () { if (done) { done(r); } };
  r.send(body);
}`

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>web2api demo</title></head>
<body>
<h1>web2api demo server</h1>
<ul>
{{range .Pages}}  <li><a href="{{.Path}}">{{.Path}}</a>: {{.Description}}</li>
{{end}}</ul>
</body>
</html>
`))

var postPage = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html>
<head><title>Items</title></head>
<body>
<div id="out"></div>
<script>` + xhrHelper + `
var api = {{.Origin}};
xhr("POST", api + "/api/items", JSON.stringify({q: "x"}), function (r) {
  document.getElementById("out").textContent = r.responseText;
});
</script>
</body>
</html>
`))

var getPage = template.Must(template.New("get").Parse(`<!DOCTYPE html>
<html>
<head><title>Item</title></head>
<body>
<script>` + xhrHelper + `
var api = {{.Origin}};
xhr("GET", api + "/api/items/1", null, null);
</script>
</body>
</html>
`))

var multiPage = template.Must(template.New("multi").Parse(`<!DOCTYPE html>
<html>
<head><title>Items (multi)</title></head>
<body>
<script>` + xhrHelper + `
var api = {{.Origin}};
xhr("GET", api + "/api/items", null, function () {
  xhr("POST", api + "/api/items", JSON.stringify({q: "x"}), function () {
    xhr("GET", api + "/api/items/1", null, null);
  });
});
</script>
</body>
</html>
`))

var fetchPage = template.Must(template.New("fetch").Parse(`<!DOCTYPE html>
<html>
<head><title>Items (fetch)</title></head>
<body>
<script>
var api = {{.Origin}};
fetch(api + "/api/items/1").then(function (r) { return r.text(); });
</script>
</body>
</html>
`))

var staticPage = template.Must(template.New("static").Parse(`<!DOCTYPE html>
<html>
<head><title>Static</title></head>
<body><p>Nothing to see here.</p></body>
</html>
`))

var hangPage = template.Must(template.New("hang").Parse(`<!DOCTYPE html>
<html>
<head><title>Hang</title></head>
<body><img src="{{.Origin}}/slow" alt=""></body>
</html>
`))
