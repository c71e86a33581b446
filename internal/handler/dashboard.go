package handler

import (
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"roadlines/internal/domain"
	"roadlines/internal/service"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 50 * time.Second
)

// DashboardHandler serves the live dashboard KPIs.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	upgrader         websocket.Upgrader
}

// NewDashboardHandler creates a new DashboardHandler. Websocket upgrades are
// accepted from allowedOrigins, or from any origin when the list is empty.
func NewDashboardHandler(dashboardService *service.DashboardService, allowedOrigins []string) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// DashboardResponse is the HTTP response for the dashboard KPIs.
type DashboardResponse struct {
	TotalTrips      int             `json:"total_trips"`
	TotalFreight    decimal.Decimal `json:"total_freight"`
	TotalBhada      decimal.Decimal `json:"total_bhada"`
	PendingPOD      int             `json:"pending_pod"`
	PendingPayments int             `json:"pending_payments"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	Payable         decimal.Decimal `json:"payable"`
	MonthlyProfit   decimal.Decimal `json:"monthly_profit"`
	ComputedAt      string          `json:"computed_at"`
}

// GetDashboard handles GET /v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	snapshot, err := h.dashboardService.Current()
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDashboardResponse(snapshot))
}

// Stream handles GET /v1/dashboard/stream
// It upgrades to a websocket, sends the current snapshot if there is one and
// then every newer snapshot until the client goes away.
func (h *DashboardHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("failed to upgrade dashboard stream: %v", err)
		return
	}
	defer conn.Close()

	snapshots, cancel := h.dashboardService.Subscribe()
	defer cancel()

	// The read loop only handles control frames; it ends when the client closes.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if current, err := h.dashboardService.Current(); err == nil {
		if err := writeSnapshot(conn, current); err != nil {
			return
		}
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			if err := writeSnapshot(conn, snapshot); err != nil {
				log.Printf("dashboard stream write failed: %v", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snapshot *domain.DashboardSnapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(toDashboardResponse(snapshot))
}

func toDashboardResponse(s *domain.DashboardSnapshot) DashboardResponse {
	return DashboardResponse{
		TotalTrips:      s.TotalTrips,
		TotalFreight:    s.TotalFreight,
		TotalBhada:      s.TotalBhada,
		PendingPOD:      s.PendingPOD,
		PendingPayments: s.PendingPayments,
		BalanceDue:      s.BalanceDue,
		Payable:         s.Payable,
		MonthlyProfit:   s.MonthlyProfit,
		ComputedAt:      s.ComputedAt.Format(time.RFC3339),
	}
}
