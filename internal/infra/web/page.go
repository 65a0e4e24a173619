package web

import (
	"html/template"
	"net/http"

	"invoice-qa-review/internal/domain/model"
)

type pageData struct {
	Mode  model.ResolveMode
	Input string
	View  *model.ReviewView
}

func (p pageData) IsInvoice() bool { return p.Mode == model.ModeInvoice }

var page = template.Must(template.New("review").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>Invoice QA Assistant for ServiceTrade</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:760px;border:1px solid #ddd;border-radius:12px;padding:24px;margin-bottom:16px;}
.ok{color:#057a55} .fail{color:#b00020} .warn{color:#8a6d00}
.alert{background:#fff8e1;border-left:4px solid #f5b400;padding:8px 12px;margin:6px 0;}
.info{background:#e8f1fb;border-left:4px solid #2a7bd3;padding:8px 12px;}
textarea,pre{width:100%;box-sizing:border-box;white-space:pre-wrap;font-family:ui-monospace,monospace;}
.btn{display:inline-block;margin-top:16px;padding:10px 16px;border-radius:8px;border:1px solid #888;background:#fff;cursor:pointer}
.small{font-size:12px;color:#666}
</style>
</head>
<body>
<div class="card">
  <h2>🧾 Invoice QA Assistant for ServiceTrade</h2>
  <form method="post" action="/review">
    <label>Enter ServiceTrade ID: <input name="identifier" value="{{.Input}}" autofocus /></label>
    <div>
      <label><input type="radio" name="mode" value="job" {{if not .IsInvoice}}checked{{end}} /> Job ID</label>
      <label><input type="radio" name="mode" value="invoice" {{if .IsInvoice}}checked{{end}} /> Invoice ID</label>
    </div>
    <button class="btn" type="submit">🔍 Analyze Invoice</button>
  </form>
</div>
{{with .View}}
<div class="card">
  {{if eq .Status "ok"}}
    <h3 class="ok">✅ Analysis Complete</h3>
    {{if .JobID}}<div class="small">Job {{.JobID}}{{if .ReviewID}} · review {{.ReviewID}}{{end}}</div>{{end}}
    <h4>Corrected Invoice Text</h4>
    <textarea rows="10" readonly>{{.Corrected}}</textarea>
    <h4>Alerts</h4>
    {{range .Alerts}}<div class="alert">{{.}}</div>{{else}}<div class="small">No alerts.</div>{{end}}
    <h4>Suggestions</h4>
    <div class="info">{{.Suggestions}}</div>
  {{else if eq .Status "decode_error"}}
    <h3 class="fail">❌ {{.Error}}</h3>
    <pre>{{.Raw}}</pre>
  {{else if eq .Status "warning"}}
    <h3 class="warn">⚠️ {{.Error}}</h3>
  {{else}}
    <h3 class="fail">❌ {{.Error}}</h3>
  {{end}}
</div>
{{end}}
</body>
</html>`))

func (s *Server) renderHTML(w http.ResponseWriter, code int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := page.Execute(w, data); err != nil {
		s.log.Error().Err(err).Msg("render page")
	}
}
