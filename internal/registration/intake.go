package registration

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	frameReadLimit  = 4 << 10
	frameReadWait   = 120 * time.Second
	ackWriteWait    = 10 * time.Second
	scanHandleLimit = 10 * time.Second
)

// Intake accepts websocket connections from scanner bridge devices. Each
// connection carries a stream of ScanFrame messages; every frame is
// acknowledged in place with a ScanResult.
type Intake struct {
	service  *Service
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewIntake(service *Service, logger *zap.Logger) *Intake {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Intake{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Bridges are headless devices, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve upgrades the request and pumps frames until the device hangs up.
func (i *Intake) Serve(w http.ResponseWriter, r *http.Request, eventID uuid.UUID) {
	conn, err := i.upgrader.Upgrade(w, r, nil)
	if err != nil {
		i.logger.Error("Scanner upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := i.logger.With(
		zap.String("event_id", eventID.String()),
		zap.String("remote", conn.RemoteAddr().String()),
	)
	log.Info("Scanner connected")

	conn.SetReadLimit(frameReadLimit)
	conn.SetReadDeadline(time.Now().Add(frameReadWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(frameReadWait))
		return nil
	})

	for {
		var frame ScanFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Scanner connection dropped", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(frameReadWait))

		ctx, cancel := context.WithTimeout(r.Context(), scanHandleLimit)
		result, err := i.service.HandleScan(ctx, eventID, frame)
		cancel()
		if err != nil {
			log.Error("Scan handling failed", zap.String("tag", frame.Tag), zap.Error(err))
			result = ScanResult{Tag: frame.Tag, Status: StatusRejected}
		}

		conn.SetWriteDeadline(time.Now().Add(ackWriteWait))
		if err := conn.WriteJSON(result); err != nil {
			log.Warn("Failed to acknowledge scan", zap.Error(err))
			return
		}
	}
}
