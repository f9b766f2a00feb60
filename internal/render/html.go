package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"

	"github.com/hitboard/hitboard/internal/scene"
)

// Templates are parsed at init time to fail fast on template errors.
var compiledTemplate, errorPage *template.Template

func init() {
	compiledTemplate = template.Must(template.New("page").Parse(htmlTemplate))
	errorPage = template.Must(template.New("error").Parse(errorTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	// Interactive makes clicks on entities reload the page with the
	// matching selection query parameter. Only useful when served.
	Interactive bool
	// Nav lists links to other charts, shown above the chart.
	Nav []NavLink
}

// NavLink is one entry of the chart navigation bar.
type NavLink struct {
	Name string
	Href string
}

// templateData holds data for the HTML template.
type templateData struct {
	Title       string
	SVG         template.HTML
	SceneJSON   template.JS
	Interactive template.JS
	Nav         []NavLink
	Message     string
}

// GenerateHTML renders sc into a self-contained HTML page with hover
// tooltips. An empty-result scene renders its message.
func GenerateHTML(sc *scene.Scene, opts HTMLOptions) (string, error) {
	if sc == nil {
		return "", fmt.Errorf("scene cannot be nil")
	}

	svgText, err := SVGString(sc)
	if err != nil {
		return "", err
	}
	// Tooltips only; the SVG already carries the geometry.
	tips := make([]map[string]any, len(sc.Shapes))
	for i, sh := range sc.Shapes {
		tips[i] = sh.Tooltip
	}
	sceneJSON, err := json.Marshal(map[string]any{
		"chart":    sc.Chart,
		"state":    sc.State,
		"tooltips": tips,
	})
	if err != nil {
		return "", fmt.Errorf("encoding scene: %w", err)
	}

	title := sc.Title
	if title == "" {
		title = sc.Chart
	}
	data := templateData{
		Title:       title,
		SVG:         template.HTML(svgText),
		SceneJSON:   template.JS(sceneJSON),
		Interactive: template.JS(strconv.FormatBool(opts.Interactive)),
		Nav:         opts.Nav,
		Message:     sc.Message,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// GenerateErrorHTML returns a page explaining that data could not be
// loaded or a chart could not be built.
func GenerateErrorHTML(err error) string {
	var buf bytes.Buffer
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if err := errorPage.Execute(&buf, msg); err != nil {
		return msg
	}
	return buf.String()
}

const errorTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>hitboard - Error</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .error-state {
      text-align: center;
      color: #666;
      max-width: 40em;
    }
    .error-state h2 {
      margin-bottom: 0.5em;
      color: #b00020;
    }
  </style>
</head>
<body>
  <div class="error-state">
    <h2>Chart unavailable</h2>
    <p>{{.}}</p>
  </div>
</body>
</html>`

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 16px;
      background: #f5f5f5;
    }
    nav a {
      margin-right: 1em;
      color: #337ab7;
    }
    #chart svg {
      background: white;
      max-width: 100%;
      height: auto;
    }
    .message {
      color: #666;
      font-style: italic;
    }
    /* Tooltip container */
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 300px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .detail {
      color: #555;
      margin: 2px 0;
    }
  </style>
</head>
<body>
  {{if .Nav}}<nav>{{range .Nav}}<a href="{{.Href}}">{{.Name}}</a>{{end}}</nav>{{end}}
  {{if .Message}}<p class="message">{{.Message}}</p>{{end}}
  <div id="chart">{{.SVG}}</div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const scene = {{.SceneJSON}};
      const interactive = {{.Interactive}};
      const tooltip = document.getElementById('tooltip');

      function escapeHtml(str) {
        return String(str).replace(/&/g, '&amp;')
                          .replace(/</g, '&lt;')
                          .replace(/>/g, '&gt;')
                          .replace(/"/g, '&quot;');
      }

      function format(v) {
        return typeof v === 'number' && !Number.isInteger(v) ? v.toFixed(3) : v;
      }

      document.querySelectorAll('#chart [data-i]').forEach(function(el) {
        const tip = scene.tooltips[+el.getAttribute('data-i')];
        if (!tip) return;
        el.addEventListener('mousemove', function(evt) {
          let html = '';
          Object.keys(tip).sort().forEach(function(k) {
            html += '<div class="detail"><b>' + escapeHtml(k) + '</b>: ' + escapeHtml(format(tip[k])) + '</div>';
          });
          tooltip.innerHTML = html;
          tooltip.style.display = 'block';
          tooltip.style.left = (evt.pageX + 15) + 'px';
          tooltip.style.top = (evt.pageY + 15) + 'px';
        });
        el.addEventListener('mouseout', function() {
          tooltip.style.display = 'none';
        });
      });

      if (!interactive) return;

      // Clicking an entity toggles it as the selection.
      const params = {platform: 'source', genre: 'target', bar: 'selected'};
      document.querySelectorAll('#chart [data-id]').forEach(function(el) {
        const kind = (el.getAttribute('class') || '').split(' ')[0];
        const param = params[kind];
        if (!param) return;
        el.style.cursor = 'pointer';
        el.addEventListener('click', function() {
          const url = new URL(window.location.href);
          const id = el.getAttribute('data-id');
          if (url.searchParams.get(param) === id) {
            url.searchParams.delete(param);
          } else {
            url.searchParams.set(param, id);
          }
          window.location.href = url.toString();
        });
      });
    })();
  </script>
</body>
</html>`
