package preview

import (
	"html/template"
	"io"
)

var frameTemplate = template.Must(template.New("frame").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Name}} · Preview</title>
<style>
html, body { margin: 0; height: 100%; background: #0e1525; color: #c2c8cc; font-family: system-ui, sans-serif; }
iframe { border: 0; width: 100%; height: 100%; background: #fff; }
.empty { display: flex; align-items: center; justify-content: center; height: 100%; }
</style>
</head>
<body>
{{- if .HasCode}}
<iframe title="{{.Name}}" sandbox="allow-scripts allow-forms allow-modals allow-popups" srcdoc="{{.Code}}"></iframe>
{{- else}}
<div class="empty">No preview found for {{.Name}}</div>
{{- end}}
</body>
</html>
`))

type frameData struct {
	Name    string
	Code    string
	HasCode bool
}

// RenderFrame writes a page that shows the preview inside a sandboxed iframe.
func RenderFrame(w io.Writer, v View) error {
	data := frameData{Name: v.Name}
	if v.PreviewCode != nil && *v.PreviewCode != "" {
		data.Code = *v.PreviewCode
		data.HasCode = true
	}
	return frameTemplate.Execute(w, data)
}
