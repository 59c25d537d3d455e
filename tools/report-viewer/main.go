// Report Viewer - live privacy run report display
// Consumes run reports from Kafka and displays them via WebSocket in a browser
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
)

// RunReport mirrors the event published when a pipeline run finishes.
type RunReport struct {
	EventType    string   `json:"eventType"`
	RunID        string   `json:"runId"`
	SourceFile   string   `json:"sourceFile"`
	Language     string   `json:"language,omitempty"`
	State        string   `json:"state"`
	Topics       []string `json:"topics"`
	SegmentCount int      `json:"segmentCount"`
	Tally        struct {
		Safe     int `json:"safe"`
		Warning  int `json:"warning"`
		Critical int `json:"critical"`
	} `json:"tally"`
	Timestamp int64 `json:"timestamp"`
}

// Hub manages WebSocket connections
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan RunReport
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan RunReport, 100),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
			log.Printf("Client connected. Total: %d", len(h.clients))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			log.Printf("Client disconnected. Total: %d", len(h.clients))

		case report := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				err := conn.WriteJSON(report)
				if err != nil {
					log.Printf("Write error: %v", err)
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev
	},
}

func wsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}
		hub.register <- conn

		// Keep connection alive, handle disconnects
		go func() {
			defer func() {
				hub.unregister <- conn
			}()
			for {
				_, _, err := conn.ReadMessage()
				if err != nil {
					break
				}
			}
		}()
	}
}

func consumeKafka(ctx context.Context, hub *Hub, brokers, topic string) {
	// Use partition reader without consumer group (works better through port-forward)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   strings.Split(brokers, ","),
		Topic:     topic,
		Partition: 0, // Read from partition 0 only (simplest for demo)
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	// Start from the last hour of messages
	reader.SetOffsetAt(ctx, time.Now().Add(-1*time.Hour))

	log.Printf("Consuming from Kafka topic: %s partition 0 (last hour)", topic)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Kafka read error on %s: %v", topic, err)
				time.Sleep(time.Second)
				continue
			}

			var report RunReport
			if err := json.Unmarshal(msg.Value, &report); err != nil {
				log.Printf("JSON unmarshal error: %v", err)
				continue
			}

			log.Printf("Received %s: run %s (%d segments, %d critical)",
				report.EventType, report.RunID, report.SegmentCount, report.Tally.Critical)
			hub.broadcast <- report
		}
	}
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Privacy Run Reports</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #444; padding: 6px 10px; text-align: left; }
.critical { color: #f66; } .warning { color: #fc6; } .safe { color: #6f6; }
</style>
</head>
<body>
<h2>Privacy Run Reports</h2>
<table id="runs"><tr><th>Run</th><th>File</th><th>Segments</th>
<th class="safe">Safe</th><th class="warning">Warning</th><th class="critical">Critical</th><th>Topics</th></tr></table>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (e) => {
  const r = JSON.parse(e.data);
  const row = document.getElementById("runs").insertRow(1);
  row.innerHTML = "<td>" + r.runId + "</td><td>" + (r.sourceFile || "") + "</td><td>" + r.segmentCount +
    "</td><td>" + r.tally.safe + "</td><td>" + r.tally.warning + "</td><td>" + r.tally.critical +
    "</td><td>" + (r.topics || []).join(", ") + "</td>";
};
</script>
</body>
</html>`

func main() {
	port := flag.String("port", "8081", "HTTP server port")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "privacy.run-reports", "Run report topic")
	flag.Parse()

	hub := newHub()
	go hub.run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumeKafka(ctx, hub, *brokers, *topic)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(indexPage))
	})
	http.HandleFunc("/ws", wsHandler(hub))

	log.Printf("Report Viewer starting on http://localhost:%s", *port)
	log.Printf("   Kafka brokers: %s", *brokers)
	log.Printf("   Topic: %s", *topic)

	if err := http.ListenAndServe(":"+*port, nil); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
