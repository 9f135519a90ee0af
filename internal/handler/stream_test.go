package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-pulse/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func dialStream(t *testing.T, handler *Handler) (*websocket.Conn, func()) {
	t.Helper()

	router := gin.New()
	router.GET("/ws/analyses", handler.StreamAnalyses)
	server := httptest.NewServer(router)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/analyses"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("websocket dial failed: %v", err)
	}

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func waitForClients(t *testing.T, hub *StreamHub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", want, hub.ClientCount())
}

func TestStreamBroadcastsActionableAnalyses(t *testing.T) {
	handler := newTestHandler(nil, nil, testBundle())
	conn, cleanup := dialStream(t, handler)
	defer cleanup()

	waitForClients(t, handler.stream, 1)

	actionable := &domain.Analysis{
		ID:     9,
		Ticker: "AAPL",
		Assessment: &domain.RiskAssessment{
			OverallRisk:  domain.RiskLow,
			IsActionable: true,
		},
	}
	handler.stream.AnalysisCompleted(actionable)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.Analysis
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read broadcast failed: %v", err)
	}
	if got.ID != 9 || got.Ticker != "AAPL" {
		t.Fatalf("unexpected broadcast: %+v", got)
	}
}

func TestStreamSkipsNonActionableAnalyses(t *testing.T) {
	handler := newTestHandler(nil, nil, testBundle())
	conn, cleanup := dialStream(t, handler)
	defer cleanup()

	waitForClients(t, handler.stream, 1)

	handler.stream.AnalysisCompleted(&domain.Analysis{
		ID:     10,
		Ticker: "MSFT",
		Assessment: &domain.RiskAssessment{
			OverallRisk:  domain.RiskHigh,
			IsActionable: false,
		},
	})
	handler.stream.AnalysisCompleted(nil)

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected no broadcast for non-actionable analysis")
	}
}

func TestStreamDropsDeadClients(t *testing.T) {
	handler := newTestHandler(nil, nil, testBundle())
	conn, cleanup := dialStream(t, handler)
	defer cleanup()

	waitForClients(t, handler.stream, 1)
	conn.Close()

	for i := 0; i < 10 && handler.stream.ClientCount() > 0; i++ {
		handler.stream.AnalysisCompleted(&domain.Analysis{
			Ticker:     "AAPL",
			Assessment: &domain.RiskAssessment{IsActionable: true},
		})
		time.Sleep(20 * time.Millisecond)
	}
	if handler.stream.ClientCount() != 0 {
		t.Fatal("expected dead client to be dropped")
	}
}
