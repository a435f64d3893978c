// Package web serves the embedded monitoring dashboard.
package web

import "net/http"

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>listing-sentinel</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; margin: 2em; }
h1 { color: #6cf; }
.event { border-left: 3px solid #6cf; padding: 0.3em 0.8em; margin: 0.4em 0; }
.event.high { border-color: #f66; }
</style>
</head>
<body>
<h1>listing-sentinel</h1>
<div id="events"></div>
<script>
const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
ws.onmessage = (msg) => {
  const event = JSON.parse(msg.data);
  if (event.type !== 'evaluation') return;
  const div = document.createElement('div');
  div.className = 'event' + (event.data.risk_score >= 60 ? ' high' : '');
  div.textContent = new Date(event.timestamp).toLocaleTimeString() +
    '  risk=' + event.data.risk_score +
    '  findings=' + event.data.findings.length +
    (event.data.duplicate ? '  DUPLICATE' : '');
  const container = document.getElementById('events');
  container.insertBefore(div, container.firstChild);
  while (container.children.length > 100) container.removeChild(container.lastChild);
};
</script>
</body>
</html>`

// ServeDashboard serves the embedded dashboard page.
func ServeDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(dashboardHTML))
}
