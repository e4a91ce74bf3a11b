package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log"
	"net/http"
	"time"

	"github.com/vadiminshakov/libra/internal/domain"
	"github.com/vadiminshakov/libra/internal/events"
)

type historyReader interface {
	All() iter.Seq[domain.BalanceSample]
	Len() int
}

type feedbackFeed interface {
	Subscribe() chan events.FeedbackEvent
	Unsubscribe(ch chan events.FeedbackEvent)
}

// Server exposes HTTP endpoints serving the HTML UI, an SSE feedback stream
// and JSON views over the session history.
type Server struct {
	Addr       string
	History    historyReader
	Feed       feedbackFeed
	Thresholds domain.FeedbackThresholds
}

// NewServer creates a new web server instance. Zero thresholds fall back to
// the default tiers.
func NewServer(addr string, history historyReader, feed feedbackFeed, thresholds domain.FeedbackThresholds) *Server {
	if thresholds.Slight.IsZero() && thresholds.Significant.IsZero() {
		thresholds = domain.DefaultFeedbackThresholds()
	}
	return &Server{Addr: addr, History: history, Feed: feed, Thresholds: thresholds}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/feedback/stream", s.handleFeedbackStream)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/stats", s.handleStats)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleFeedbackStream(w http.ResponseWriter, r *http.Request) {
	if s.Feed == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "feedback feed not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	sub := s.Feed.Subscribe()
	defer s.Feed.Unsubscribe(sub)

	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case event, open := <-sub:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("feedback stream marshal: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: feedback\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

type historyEntry struct {
	Timestamp  time.Time `json:"ts"`
	Exercise   string    `json:"exercise"`
	Left       string    `json:"left"`
	Right      string    `json:"right"`
	Difference string    `json:"difference"`
	Tier       string    `json:"tier"`
	Message    string    `json:"message"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "history store not available")
		return
	}

	entries := make([]historyEntry, 0, s.History.Len())
	for sample := range s.History.All() {
		feedback, err := domain.AssessBalance(sample.Left, sample.Right, s.Thresholds)
		if err != nil {
			log.Printf("history classify: %v", err)
			continue
		}
		entries = append(entries, historyEntry{
			Timestamp:  sample.Timestamp,
			Exercise:   sample.Exercise,
			Left:       sample.Left.String(),
			Right:      sample.Right.String(),
			Difference: feedback.Difference.String(),
			Tier:       feedback.Tier.String(),
			Message:    feedback.Message,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		log.Printf("history encode: %v", err)
	}
}

// statsPayload mirrors the statistics screen of the mobile product, which
// renders fixed strings; aggregation over history is a separate feature.
type statsPayload struct {
	AverageBalance string `json:"average_balance"`
	BestSession    string `json:"best_session"`
	TotalWorkouts  string `json:"total_workouts"`
	Streak         string `json:"streak"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	payload := statsPayload{
		AverageBalance: "92%",
		BestSession:    "Upper Body - Tuesday",
		TotalWorkouts:  "24",
		Streak:         "6 days",
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("stats encode: %v", err)
	}
}

// Live balance dashboard: per-side bars, tier-colored feedback, history + stats.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Libra</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
  <link href="https://fonts.googleapis.com/css2?family=Press+Start+2P&family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --ink-soft:#9c9c9c;
      --panel:#f6f6f6;
      --balanced:#1b9aaa;
      --slight:#ff7f11;
      --significant:#d7263d;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      align-items:center;
      justify-content:center;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    body::before {
      content:'';
      position:fixed;
      inset:0;
      background:
        linear-gradient(90deg, rgba(0,0,0,.02) 1px, transparent 1px),
        linear-gradient(rgba(0,0,0,.02) 1px, transparent 1px);
      background-size:12px 12px;
      pointer-events:none;
    }
    #app {
      width:min(1100px, 96vw);
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      position:relative;
      image-rendering:pixelated;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:flex;
      flex-direction:column;
      gap:2rem;
    }
    #app::after {
      content:'';
      position:absolute;
      inset:8px;
      border:1px dashed rgba(0,0,0,.15);
      pointer-events:none;
    }
    header { display:flex; justify-content:space-between; align-items:flex-start; gap:1rem; }
    .eyebrow {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.55rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      margin:0;
    }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#ffffff;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    .live {
      border:3px solid var(--ink);
      padding:1.5rem;
      background:#fff;
      box-shadow:8px 8px 0 rgba(0,0,0,.15);
      display:flex;
      flex-direction:column;
      gap:1rem;
    }
    .side-row { display:flex; align-items:center; gap:1rem; }
    .side-label {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.6rem;
      width:4.5rem;
      text-transform:uppercase;
    }
    .bar-track {
      flex:1;
      height:1.6rem;
      border:2px solid var(--ink);
      background:#fefefe;
      position:relative;
    }
    .bar-fill {
      position:absolute;
      inset:0;
      width:0%;
      background:var(--ink);
      transition:width .2s steps(8);
    }
    .side-value {
      width:5rem;
      text-align:right;
      font-weight:700;
    }
    #feedback-message {
      border:3px solid var(--ink-soft);
      padding:1rem;
      font-size:.8rem;
      letter-spacing:.08em;
      text-transform:uppercase;
      text-align:center;
      color:var(--ink-mid);
    }
    #feedback-message.balanced { border-color:var(--balanced); color:var(--balanced); }
    #feedback-message.slight_imbalance { border-color:var(--slight); color:var(--slight); }
    #feedback-message.significant_imbalance { border-color:var(--significant); color:var(--significant); }
    .chart-panel {
      border:2px solid var(--ink);
      background:#fff;
      padding:1rem;
      image-rendering:pixelated;
    }
    .stats-grid {
      display:grid;
      grid-template-columns:repeat(auto-fit, minmax(180px, 1fr));
      gap:1rem;
    }
    .stat-card {
      border:3px solid var(--ink);
      padding:1.2rem;
      background:#fff;
      box-shadow:6px 6px 0 rgba(0,0,0,.12);
    }
    .stat-card .label {
      font-size:.62rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      color:var(--ink-mid);
    }
    .stat-card .value {
      margin-top:.8rem;
      font-size:1.3rem;
      font-weight:700;
      letter-spacing:.08em;
    }
    table {
      width:100%;
      border-collapse:collapse;
      background:#fff;
      border:3px solid var(--ink);
      font-size:.7rem;
    }
    th, td {
      border-bottom:1px dashed var(--ink-soft);
      padding:.6rem .8rem;
      text-align:left;
    }
    th {
      font-size:.55rem;
      text-transform:uppercase;
      letter-spacing:.15em;
      border-bottom:2px solid var(--ink);
    }
    td.tier { font-weight:700; text-transform:uppercase; font-size:.6rem; letter-spacing:.08em; }
    td.tier.balanced { color:var(--balanced); }
    td.tier.slight_imbalance { color:var(--slight); }
    td.tier.significant_imbalance { color:var(--significant); }
    .empty-state {
      border:2px dashed var(--ink-soft);
      padding:2rem;
      text-align:center;
      font-size:.8rem;
      letter-spacing:.12em;
      text-transform:uppercase;
      color:var(--ink-mid);
    }
    @media (max-width:640px) {
      body { padding:1rem; }
      #app { padding:1.2rem; }
      header { flex-direction:column; align-items:flex-start; }
    }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <div>
        <p class="eyebrow">libra balance feedback</p>
      </div>
      <div id="sse-status" class="status">Connecting…</div>
    </header>
    <section class="live">
      <div class="side-row">
        <span class="side-label">Left</span>
        <div class="bar-track"><div id="leftBar" class="bar-fill"></div></div>
        <span id="leftValue" class="side-value">—</span>
      </div>
      <div class="side-row">
        <span class="side-label">Right</span>
        <div class="bar-track"><div id="rightBar" class="bar-fill"></div></div>
        <span id="rightValue" class="side-value">—</span>
      </div>
      <div id="feedback-message">Waiting for readings…</div>
    </section>
    <section class="chart-panel">
      <canvas id="diffChart" height="180"></canvas>
    </section>
    <section id="stats" class="stats-grid"></section>
    <section>
      <table>
        <thead>
          <tr><th>Time</th><th>Exercise</th><th>Left</th><th>Right</th><th>Diff</th><th>Tier</th></tr>
        </thead>
        <tbody id="historyRows">
          <tr><td colspan="6"><div class="empty-state">Waiting for balance samples…</div></td></tr>
        </tbody>
      </table>
    </section>
  </div>
<script>
const statusEl = document.getElementById('sse-status');
const leftBar = document.getElementById('leftBar');
const rightBar = document.getElementById('rightBar');
const leftValue = document.getElementById('leftValue');
const rightValue = document.getElementById('rightValue');
const messageEl = document.getElementById('feedback-message');
const historyRows = document.getElementById('historyRows');
const statsGrid = document.getElementById('stats');
const MAX_ROWS = 100;
let hasRows = false;

Chart.defaults.font.family = "'Space Mono', 'JetBrains Mono', monospace";
Chart.defaults.font.size = 11;
Chart.defaults.color = '#111111';

const diffChart = new Chart(document.getElementById('diffChart').getContext('2d'), {
  type: 'line',
  data: {
    labels: [],
    datasets: [
      { label:'Left', data:[], borderColor:'#1b9aaa', backgroundColor:'rgba(27,154,170,0.15)', borderWidth:2, pointRadius:0, tension:0.15 },
      { label:'Right', data:[], borderColor:'#d7263d', backgroundColor:'rgba(215,38,61,0.15)', borderWidth:2, pointRadius:0, tension:0.15 }
    ]
  },
  options: {
    animation: false,
    responsive: true,
    interaction: { intersect:false, mode:'index' },
    scales: {
      x:{ ticks:{ maxRotation:0, autoSkip:true }, grid:{ color:'rgba(0,0,0,0.08)' } },
      y:{ suggestedMin:0, suggestedMax:100, grid:{ color:'rgba(0,0,0,0.08)' } }
    },
    plugins:{ legend:{ display:true, labels:{ usePointStyle:true, boxWidth:12 } } }
  }
});

const parseNum = (value) => {
  const num = parseFloat(value);
  return Number.isFinite(num) ? num : 0;
};

const formatTs = (ts) => {
  const date = new Date(ts);
  if(Number.isNaN(date.getTime())){ return '—'; }
  return date.toLocaleTimeString([], { hour12:false });
};

function pushChartPoint(event){
  diffChart.data.labels.push(formatTs(event.ts));
  diffChart.data.datasets[0].data.push(parseNum(event.left));
  diffChart.data.datasets[1].data.push(parseNum(event.right));
  if(diffChart.data.labels.length > 300){
    diffChart.data.labels.shift();
    diffChart.data.datasets.forEach((dataset) => dataset.data.shift());
  }
  diffChart.update('none');
}

function renderLive(event){
  const left = parseNum(event.left);
  const right = parseNum(event.right);
  leftBar.style.width = Math.min(left, 100) + '%';
  rightBar.style.width = Math.min(right, 100) + '%';
  leftValue.textContent = left.toFixed(1) + '%';
  rightValue.textContent = right.toFixed(1) + '%';
  messageEl.textContent = event.message || '';
  messageEl.className = event.tier || '';
}

function appendRow(entry){
  if(!hasRows){
    historyRows.innerHTML = '';
    hasRows = true;
  }
  const row = document.createElement('tr');
  const cells = [
    formatTs(entry.ts),
    entry.exercise || '—',
    entry.left,
    entry.right,
    entry.difference || '',
    entry.tier || ''
  ];
  cells.forEach((text, i) => {
    const td = document.createElement('td');
    td.textContent = text;
    if(i === 5){
      td.className = 'tier ' + (entry.tier || '');
    }
    row.appendChild(td);
  });
  historyRows.insertBefore(row, historyRows.firstChild);
  while(historyRows.children.length > MAX_ROWS){
    historyRows.removeChild(historyRows.lastChild);
  }
}

function statCard(label, value){
  const card = document.createElement('div');
  card.className = 'stat-card';
  const labelEl = document.createElement('div');
  labelEl.className = 'label';
  labelEl.textContent = label;
  const valueEl = document.createElement('div');
  valueEl.className = 'value';
  valueEl.textContent = value;
  card.append(labelEl, valueEl);
  return card;
}

function loadStats(){
  fetch('/api/stats')
    .then((resp) => resp.json())
    .then((stats) => {
      statsGrid.innerHTML = '';
      statsGrid.append(
        statCard('Average balance', stats.average_balance),
        statCard('Best session', stats.best_session),
        statCard('Total workouts', stats.total_workouts),
        statCard('Streak', stats.streak)
      );
    })
    .catch((err) => console.error('stats load', err));
}

function loadHistory(){
  fetch('/api/history')
    .then((resp) => resp.json())
    .then((entries) => {
      (entries || []).forEach(appendRow);
    })
    .catch((err) => console.error('history load', err));
}

function connectSSE(){
  const source = new EventSource('/feedback/stream');
  statusEl.textContent = 'Status: receiving data';
  source.addEventListener('feedback', (event) => {
    try{
      const payload = JSON.parse(event.data);
      renderLive(payload);
      pushChartPoint(payload);
      appendRow(payload);
    }catch(err){
      console.error('payload parse', err);
    }
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

loadStats();
loadHistory();
connectSSE();
</script>
</body>
</html>`
