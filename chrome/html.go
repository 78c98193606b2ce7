package chrome

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"regexp"

	"github.com/porticus-lab/go-planner/canvas"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  html, body { margin: 0; padding: 0; }
  body { position: relative; overflow: hidden; {{.Body}} }
  .text { position: absolute; margin: 0; white-space: pre-wrap; overflow-wrap: break-word;
          font-family: "Go", "Helvetica Neue", Helvetica, Arial, sans-serif; line-height: 1.16; }
  .sticker { position: absolute; display: block; }
</style>
</head>
<body>
{{- range .Items}}
{{- if .Sticker}}
<img class="sticker" src="{{.Src}}" style="{{.Style}}" alt="">
{{- else}}
<div class="text" style="{{.Style}}">{{.Text}}</div>
{{- end}}
{{- end}}
</body>
</html>
`))

type pageData struct {
	Body  template.CSS
	Items []pageItem
}

type pageItem struct {
	Sticker bool
	Src     template.URL
	Style   template.CSS
	Text    string
}

// pageHTML lays scene out as a standalone HTML document whose body is
// exactly the page, one CSS pixel per point.
func pageHTML(scene canvas.Scene) ([]byte, error) {
	if !hexColor.MatchString(scene.Background) {
		return nil, fmt.Errorf("chrome: invalid background %q", scene.Background)
	}
	data := pageData{
		Body: template.CSS(fmt.Sprintf("width: %dpx; height: %dpx; background: %s;",
			scene.Width, scene.Height, scene.Background)),
	}

	for _, o := range scene.Objects {
		switch v := o.(type) {
		case *canvas.Textbox:
			if !hexColor.MatchString(v.Fill) {
				return nil, fmt.Errorf("chrome: textbox %s: invalid fill %q", v.ID(), v.Fill)
			}
			style := fmt.Sprintf("left: %gpx; top: %gpx; font-size: %gpx; color: %s;",
				v.Left, v.Top, v.FontSize, v.Fill)
			if v.Width > 0 {
				style += fmt.Sprintf(" width: %gpx;", v.Width)
			}
			data.Items = append(data.Items, pageItem{Style: template.CSS(style), Text: v.Text})
		case *canvas.Image:
			raw, mime := v.Data()
			if len(raw) == 0 {
				continue
			}
			w, h := v.Size()
			data.Items = append(data.Items, pageItem{
				Sticker: true,
				Src:     template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)),
				Style: template.CSS(fmt.Sprintf("left: %gpx; top: %gpx; width: %gpx; height: %gpx;",
					v.Left, v.Top, float64(w)*v.ScaleX, float64(h)*v.ScaleY)),
			})
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("chrome: building page: %w", err)
	}
	return buf.Bytes(), nil
}
