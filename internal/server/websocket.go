package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/processor"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/session"
)

const maxMessageSize = 64 << 10

// handleAudioWS accepts one client session and reads its commands until the
// connection drops.
func (s *Server) handleAudioWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("client_id")
	ctx := r.Context()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(ctx, "Upgrade failed for %s: %v", clientID, err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	ch := newWSChannel(conn, s.cfg.WriteTimeout)
	if err := s.registry.Connect(clientID, ch); err != nil {
		if errors.Is(err, session.ErrSessionExists) {
			_ = ch.Send(ctx, models.Error(fmt.Sprintf("Client %s is already connected", clientID)))
		}
		ch.Close()
		return
	}
	defer s.registry.DisconnectChannel(clientID, ch)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug(ctx, "Read loop for %s ended: %v", clientID, err)
			return
		}
		s.handleMessage(ctx, clientID, data)
	}
}

func (s *Server) handleMessage(ctx context.Context, clientID string, data []byte) {
	var msg models.InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.reply(ctx, clientID, models.Error(fmt.Sprintf("Invalid message: %v", err)))
		return
	}

	switch msg.Type {
	case models.MessageStartProcessing:
		s.startProcessing(ctx, clientID, msg.Data)
	default:
		s.reply(ctx, clientID, models.Error(fmt.Sprintf("Unknown message type: %s", msg.Type)))
	}
}

func (s *Server) startProcessing(ctx context.Context, clientID string, data json.RawMessage) {
	var req models.ProcessingRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			s.reply(ctx, clientID, models.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}
	}
	if err := req.Validate(); err != nil {
		s.reply(ctx, clientID, models.Error(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	if _, err := s.processor.Start(s.baseCtx, clientID, req); err != nil {
		if errors.Is(err, processor.ErrAlreadyProcessing) {
			s.reply(ctx, clientID, models.Error(processor.MessageAlreadyProcessing))
			return
		}
		s.logger.Error(ctx, "Start failed for %s: %v", clientID, err)
		s.reply(ctx, clientID, models.Error(err.Error()))
	}
}

func (s *Server) reply(ctx context.Context, clientID string, event models.StatusEvent) {
	s.registry.Publish(ctx, clientID, event)
}
