package render

// pageTemplates holds both page layouts. They share a head block and stay
// dependency-free: plain HTML plus the generated stylesheet.
const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.Rel}}style.css">
</head>
<body>
<header>
<nav class="crumbs">
{{- range $i, $c := .Breadcrumbs}}{{if $i}} / {{end}}<a href="{{$c.Href}}">{{$c.Name}}</a>{{end}}
</nav>
</header>
<main>
{{end}}

{{define "foot"}}</main>
</body>
</html>
{{end}}

{{define "namespace"}}{{template "head" .}}<h1>{{.Name}}</h1>
{{.DocHTML}}
{{- if .Children}}
<section class="namespaces">
<h2>Namespaces</h2>
<table>
{{- range .Children}}
<tr><td><a href="{{.Href}}">{{.Name}}</a></td><td>{{.Summary}}</td></tr>
{{- end}}
</table>
</section>
{{- end}}
{{- if .Groups}}
<section class="symbols">
<h2>Symbols</h2>
<table>
{{- range .Groups}}
<tr><td><a href="{{.Href}}">{{.Name}}</a>{{if .Deprecated}} <span class="deprecated">deprecated</span>{{end}}</td><td class="kind">{{.Kinds}}</td><td>{{.Summary}}</td></tr>
{{- end}}
</table>
</section>
{{- end}}
{{- if .Diagnostics}}
<section class="diagnostics">
<h2>Diagnostics</h2>
<table>
{{- range .Diagnostics}}
<tr><td class="kind">{{.Kind}}</td><td>{{.Location}}</td><td>{{.Message}}</td></tr>
{{- end}}
</table>
</section>
{{- end}}
{{template "foot" .}}{{end}}

{{define "symbol"}}{{template "head" .}}<h1>{{.Name}}</h1>
{{- range .Decls}}
<article id="{{.Anchor}}" class="decl">
<div class="decl-head">
<span class="kind">{{.Kind}}</span>
{{- if .Deprecated}} <span class="deprecated">deprecated</span>{{end}}
{{- if .Default}} <span class="kind">default export</span>{{end}}
</div>
<pre class="signature"><code>{{.Signature}}</code></pre>
{{- if .DeprecatedNote}}
<p class="deprecated-note">Deprecated: {{.DeprecatedNote}}</p>
{{- end}}
{{.DocHTML}}
{{- if .Params}}
<h3>Parameters</h3>
<table>
{{- range .Params}}
<tr><td><code>{{.Name}}</code></td><td>{{.Doc}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- if .Returns}}
<h3>Returns</h3>
<p>{{.Returns}}</p>
{{- end}}
{{- if .Members}}
<h3>Members</h3>
{{- range .Members}}
<div class="member{{if .Deprecated}} member-deprecated{{end}}">
<pre class="signature"><code>{{.Signature}}</code></pre>
{{.DocHTML}}
</div>
{{- end}}
{{- end}}
{{- if .EnumMembers}}
<h3>Members</h3>
{{- range .EnumMembers}}
<div class="member">
<pre class="signature"><code>{{.Signature}}</code></pre>
{{.DocHTML}}
</div>
{{- end}}
{{- end}}
{{- if .Examples}}
<h3>Examples</h3>
{{- range .Examples}}
{{- if .Title}}
<h4>{{.Title}}</h4>
{{- end}}
<pre><code>{{.Code}}</code></pre>
{{- end}}
{{- end}}
{{- if .SeeAlso}}
<h3>See also</h3>
<ul>
{{- range .SeeAlso}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
<p class="source">Defined in {{.Source}}</p>
</article>
{{- end}}
{{template "foot" .}}{{end}}
`

const styleSheet = `body {
  font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
  max-width: 56rem;
  margin: 0 auto;
  padding: 0 1rem 4rem;
  color: #1a1a1a;
  line-height: 1.5;
}
header { padding: 0.75rem 0; border-bottom: 1px solid #e2e2e2; }
.crumbs a { color: #555; text-decoration: none; }
.crumbs a:hover { text-decoration: underline; }
h1 { font-size: 1.6rem; }
table { border-collapse: collapse; width: 100%; }
td { padding: 0.3rem 0.75rem 0.3rem 0; vertical-align: top; border-bottom: 1px solid #f0f0f0; }
.kind { color: #7a5ea6; font-size: 0.85em; }
.deprecated {
  background: #fde8e8;
  color: #9b1c1c;
  font-size: 0.75em;
  padding: 0.1rem 0.4rem;
  border-radius: 3px;
}
.deprecated-note { color: #9b1c1c; }
pre {
  background: #f6f8fa;
  padding: 0.75rem;
  border-radius: 4px;
  overflow-x: auto;
}
pre.signature { border-left: 3px solid #7a5ea6; }
.member { margin: 0.75rem 0 0.75rem 1rem; }
.member-deprecated { opacity: 0.7; }
.source { color: #888; font-size: 0.8em; }
a { color: #0b63ce; }
`
