package generator

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/Zachdehooge/energy-dashboard/internal/mapsync"
	"github.com/Zachdehooge/energy-dashboard/internal/panel"
	"github.com/Zachdehooge/energy-dashboard/internal/scenario"
)

// PageData is everything the comparison page template needs
type PageData struct {
	Title       string
	Panels      []panel.Panel
	SyncControl *mapsync.SyncControl
	LastUpdated string
	// Static pages embed the styled features and never open a websocket
	Static   bool
	Features map[string]*geojson.FeatureCollection
}

// NewPageData snapshots a controller into template data
func NewPageData(title string, c *panel.Controller, static bool) (PageData, error) {
	data := PageData{
		Title:       title,
		Panels:      c.Panels(),
		SyncControl: mapsync.NewSyncControl(c.Sync(), nil),
		LastUpdated: time.Now().UTC().Format("Jan 2, 2006 at 03:04:05 UTC"),
		Static:      static,
	}
	if static {
		data.Features = make(map[string]*geojson.FeatureCollection, len(data.Panels))
		for _, p := range data.Panels {
			styled, err := c.Styled(p.Scenario.MapID)
			if err != nil {
				return PageData{}, err
			}
			data.Features[p.Scenario.MapID] = styled
		}
	}
	return data, nil
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"toJSON":    toJSON,
	"carriers":  func() []string { return scenario.Carriers },
	"variables": func() []string { return scenario.Variables },
	"years":     func() []string { return scenario.Years },
}).Parse(pageHTML))

// RenderPage writes the dual map comparison page
func RenderPage(w io.Writer, data PageData) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func toJSON(v interface{}) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
   <meta charset="UTF-8"/>
   <title>{{ .Title }}</title>
   <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
   <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
   <style>
      :root {
         --bg-color: #121212;
         --text-color: #e0e0e0;
         --card-bg: #1e1e1e;
         --card-border: #333;
         --header-bg: #2d2d45;
         --header-border: #444466;
         --tab-active-bg: #3d3d5c;
      }
      body {
         font-family: Arial, sans-serif;
         margin: 0 auto;
         padding: 20px;
         background-color: var(--bg-color);
         color: var(--text-color);
      }
      html { background-color: #121212; }
      h1, h2, h4 { color: var(--text-color); }
      .dashboard-container { display: grid; grid-template-columns: 1fr 1fr; gap: 15px; }
      .scenario-panel {
         border: 1px solid var(--card-border); padding: 10px;
         border-radius: 5px; background-color: var(--card-bg);
      }
      .scenario-map {
         height: 480px; width: 100%;
         border: 2px solid var(--card-border); border-radius: 5px;
      }
      .map-select-container { display: flex; gap: 8px; margin-bottom: 8px; }
      .map-select-container select {
         background-color: var(--header-bg); color: var(--text-color);
         border: 1px solid var(--header-border); border-radius: 4px; padding: 4px;
      }
      .map-legend {
         background-color: var(--card-bg); padding: 10px;
         border-radius: 5px; margin-top: 10px;
         border: 1px solid var(--card-border);
      }
      .legend-item { display: flex; align-items: center; margin: 5px 0; }
      .legend-color { width: 20px; height: 20px; margin-right: 5px; border: 1px solid #fff; }
      .sync-control {
         background-color: var(--header-bg); color: var(--text-color);
         padding: 6px 12px; border-radius: 4px; border: 1px solid var(--header-border);
         cursor: pointer; font-size: 16px;
      }
      .sync-control.sync-enabled { background-color: var(--tab-active-bg); border-color: #add8e6; }
      .panel-error { color: #ff4444; font-size: 0.85em; }
      .economic-charts { width: 100%; height: 820px; border: 0; margin-top: 10px; }
      .next-refresh { font-size: 0.8em; margin-top: 10px; color: #888; }
      @media (max-width: 900px) { .dashboard-container { grid-template-columns: 1fr; } }
   </style>
</head>
<body>
   <h1>{{ .Title }}</h1>
   <div>
      <button id="sync-control" class="{{ .SyncControl.CSSClass }}" title="{{ .SyncControl.Title }}">{{ .SyncControl.Label }}</button>
      <span class="next-refresh">Last updated: {{ .LastUpdated }}</span>
   </div>

   <div class="dashboard-container">
   {{ range .Panels }}
      {{ $s := .Scenario }}
      <div class="scenario-panel" id="panel-{{ $s.MapID }}">
         <div class="map-select-container">
            <select id="carrierSelector-{{ $s.MapID }}" class="map-carrier-selector" data-map="{{ $s.MapID }}"{{ if $.Static }} disabled{{ end }}>
               {{ range carriers }}<option value="{{ . }}" {{ if eq . $s.Carrier }}selected{{ end }}>{{ . }}</option>{{ end }}
            </select>
            <select id="variableSelector-{{ $s.MapID }}" class="map-variable-selector" data-map="{{ $s.MapID }}"{{ if $.Static }} disabled{{ end }}>
               {{ range variables }}<option value="{{ . }}" {{ if eq . $s.Variable }}selected{{ end }}>{{ . }}</option>{{ end }}
            </select>
            <select id="scenarioSelector-{{ $s.MapID }}" class="map-scenario-selector" data-map="{{ $s.MapID }}"{{ if $.Static }} disabled{{ end }}>
               {{ range years }}<option value="{{ . }}" {{ if eq . $s.Year }}selected{{ end }}>{{ . }}</option>{{ end }}
            </select>
         </div>
         <div id="{{ $s.MapID }}" class="scenario-map"></div>
         <div id="map-legend-{{ $s.MapID }}" class="map-legend">
         {{ if .Legend.NoData }}
            <div><b>No data available</b></div>
         {{ else }}
            <div><b>{{ .Legend.Title }}</b></div>
            {{ range .Legend.Swatches }}
            <div class="legend-item"><div class="legend-color" style="background-color:{{ .Color }};"></div><span>{{ .Label }}</span></div>
            {{ end }}
         {{ end }}
         </div>
         {{ if .Error }}<div class="panel-error">{{ .Error }}</div>{{ end }}
         {{ if not $.Static }}
         <iframe class="economic-charts" id="charts-{{ $s.MapID }}" src="/api/panels/{{ $s.MapID }}/charts"></iframe>
         {{ end }}
      </div>
   {{ end }}
   </div>

   <script>
      const panels = {{ toJSON .Panels }};
      const staticFeatures = {{ toJSON .Features }};
      const isStatic = {{ .Static }};
      const maps = {};
      const layers = {};
      let socket = null;
      let applyingRemote = false;
      let syncEnabled = {{ .SyncControl.Enabled }};

      function featureStyle(feature) {
          const p = feature.properties || {};
          return { fillColor: p.fill, fillOpacity: 1, color: p.stroke, weight: p['stroke-width'] };
      }

      function drawFeatures(mapId, collection) {
          if (layers[mapId]) {
              maps[mapId].removeLayer(layers[mapId]);
          }
          layers[mapId] = L.geoJSON(collection, {
              style: featureStyle,
              pointToLayer: function (feature, latlng) {
                  return L.circleMarker(latlng, Object.assign({ radius: 6 }, featureStyle(feature)));
              },
              onEachFeature: function (feature, layer) {
                  const p = feature.properties || {};
                  const fmt = function (v) { return typeof v === 'number' ? v.toFixed(4) : 'N/A'; };
                  layer.bindTooltip('<b>' + (p.name || 'N/A') + '</b><br>Carrier: ' + (p.carrier || 'N/A') +
                      '<br>CF: ' + fmt(p.cf) + '<br>CRT: ' + fmt(p.crt) + '<br>USDPT: ' + fmt(p.usdpt));
              }
          }).addTo(maps[mapId]);
      }

      function drawLegend(mapId, legend) {
          const el = document.getElementById('map-legend-' + mapId);
          if (!el) return;
          if (!legend || legend.noData) {
              el.innerHTML = '<div><b>No data available</b></div>';
              return;
          }
          let html = '<div><b>' + legend.title + '</b></div>';
          legend.swatches.forEach(function (s) {
              html += '<div class="legend-item"><div class="legend-color" style="background-color:' + s.color +
                  ';"></div><span>' + s.label + '</span></div>';
          });
          el.innerHTML = html;
      }

      async function refreshPanel(mapId) {
          try {
              const [featuresResp, panelResp] = await Promise.all([
                  fetch('/api/panels/' + mapId + '/features'),
                  fetch('/api/panels/' + mapId)
              ]);
              if (!featuresResp.ok || !panelResp.ok) throw new Error('panel request failed');
              drawFeatures(mapId, await featuresResp.json());
              const p = await panelResp.json();
              drawLegend(mapId, p.legend);
              const frame = document.getElementById('charts-' + mapId);
              if (frame) frame.src = '/api/panels/' + mapId + '/charts?_=' + Date.now();
          } catch (error) {
              console.error('[panel] refresh failed for ' + mapId + ':', error);
              drawLegend(mapId, null);
          }
      }

      function sendCamera(mapId, kind) {
          if (applyingRemote || !socket || socket.readyState !== WebSocket.OPEN) return;
          const c = maps[mapId].getCenter();
          socket.send(JSON.stringify({
              type: 'camera', mapId: mapId, kind: kind,
              center: [c.lng, c.lat], zoom: maps[mapId].getZoom()
          }));
      }

      function applyCamera(mapId, camera) {
          const map = maps[mapId];
          if (!map) return;
          applyingRemote = true;
          map.setView([camera.center[1], camera.center[0]], camera.zoom, { animate: false });
          applyingRemote = false;
      }

      // mirrorCamera copies the origin's view onto every other map
      function mirrorCamera(originId) {
          if (applyingRemote || !syncEnabled) return;
          const c = maps[originId].getCenter();
          const camera = { center: [c.lng, c.lat], zoom: maps[originId].getZoom() };
          Object.keys(maps).forEach(function (id) {
              if (id !== originId) applyCamera(id, camera);
          });
      }

      function onCameraChange(mapId, kind) {
          if (isStatic) {
              mirrorCamera(mapId);
          } else {
              sendCamera(mapId, kind);
          }
      }

      function setSyncState(enabled) {
          syncEnabled = enabled;
          const btn = document.getElementById('sync-control');
          btn.classList.toggle('sync-enabled', enabled);
          btn.title = enabled ? 'Disable synchronization' : 'Enable synchronization';
      }

      function connect() {
          const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
          socket = new WebSocket(proto + location.host + '/ws');
          socket.onmessage = function (evt) {
              const msg = JSON.parse(evt.data);
              if (msg.type === 'camera') applyCamera(msg.mapId, msg.camera);
              if (msg.type === 'panel') refreshPanel(msg.mapId);
              if (msg.type === 'sync') setSyncState(msg.enabled);
          };
          socket.onclose = function () { setTimeout(connect, 3000); };
      }

      window.onload = function () {
          panels.forEach(function (p) {
              const mapId = p.scenario.mapId;
              const map = L.map(mapId).setView([p.camera.center[1], p.camera.center[0]], p.camera.zoom);
              L.tileLayer('https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png', {
                  attribution: '&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>',
                  maxZoom: 19
              }).addTo(map);
              maps[mapId] = map;

              map.on('moveend', function () { onCameraChange(mapId, 'center'); });
              map.on('zoomend', function () { onCameraChange(mapId, 'zoom'); });
              if (isStatic) {
                  drawFeatures(mapId, staticFeatures[mapId]);
              } else {
                  refreshPanel(mapId);
              }
          });

          document.getElementById('sync-control').addEventListener('click', async function () {
              if (isStatic) {
                  setSyncState(!syncEnabled);
                  return;
              }
              const resp = await fetch('/api/sync/toggle', { method: 'POST' });
              if (resp.ok) setSyncState((await resp.json()).enabled);
          });

          if (isStatic) return;

          document.querySelectorAll('.map-select-container select').forEach(function (select) {
              select.addEventListener('change', async function () {
                  const mapId = select.dataset.map;
                  const body = {
                      carrier: document.getElementById('carrierSelector-' + mapId).value,
                      variable: document.getElementById('variableSelector-' + mapId).value,
                      year: document.getElementById('scenarioSelector-' + mapId).value
                  };
                  const resp = await fetch('/api/panels/' + mapId + '/scenario', {
                      method: 'PUT', headers: { 'Content-Type': 'application/json' }, body: JSON.stringify(body)
                  });
                  if (!resp.ok) console.error('[panel] scenario update rejected for ' + mapId);
              });
          });

          connect();
      };
   </script>
</body>
</html>
`
