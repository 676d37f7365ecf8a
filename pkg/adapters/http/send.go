package http

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/aretw0/shopkeep/pkg/render"
	"github.com/aretw0/shopkeep/pkg/turn"
	"github.com/shopspring/decimal"
)

type sendRequest struct {
	Msg       string `json:"msg"`
	SessionID string `json:"session_id"`
}

// sendResponse carries projections only when the turn changed state.
type sendResponse struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Reply     string           `json:"reply"`
	Error     string           `json:"error,omitempty"`
	Degraded  bool             `json:"degraded,omitempty"`
	Changed   bool             `json:"changed"`
	Outcomes  []turn.Outcome   `json:"outcomes"`
	Inventory *[]render.Record `json:"inventory,omitempty"`
	Cart      *[]render.Record `json:"cart,omitempty"`
	CartTotal *decimal.Decimal `json:"cart_total,omitempty"`
}

func newSendResponse(res *turn.Result) sendResponse {
	resp := sendResponse{
		ID:        res.ID,
		SessionID: res.SessionID,
		Reply:     res.Reply,
		Error:     res.Error,
		Degraded:  res.Degraded,
		Changed:   res.Changed,
		Outcomes:  res.Outcomes,
	}
	if resp.Outcomes == nil {
		resp.Outcomes = []turn.Outcome{}
	}
	if p := res.Projection; p != nil {
		// Pointers keep an emptied cart in the document.
		inventory, cart, total := p.Inventory, p.Cart, p.CartTotal
		resp.Inventory = &inventory
		resp.Cart = &cart
		resp.CartTotal = &total
	}
	return resp
}

func decodeSend(r *http.Request) (sendRequest, error) {
	var req sendRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Msg = r.PostForm.Get("msg")
	req.SessionID = r.PostForm.Get("session_id")
	if req.SessionID == "" {
		req.SessionID = r.URL.Query().Get("session_id")
	}
	return req, nil
}

// send handles POST /send.
func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := decodeSend(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Send: Invalid request body", "err", err)
		return
	}
	sessionID, ok := s.sessionParam(w, req.SessionID)
	if !ok {
		return
	}

	res, err := s.turns.Handle(r.Context(), sessionID, req.Msg)
	if err != nil {
		status := statusFor(err)
		http.Error(w, err.Error(), status)
		if status >= http.StatusInternalServerError {
			s.logger.Error("Send: Turn failed", "session_id", sessionID, "err", err)
		} else {
			s.logger.Warn("Send: Turn rejected", "session_id", sessionID, "err", err)
		}
		return
	}

	if s.publish {
		s.streams.Publish(res)
	}

	if r.Header.Get("HX-Request") == "true" {
		s.renderExchange(w, req.Msg, res)
		return
	}
	writeJSON(w, http.StatusOK, newSendResponse(res), s.logger)
}

// state handles GET /state.
func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionParam(w, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	p, err := s.turns.View(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		s.logger.Error("State: Load failed", "session_id", sessionID, "err", err)
		return
	}
	writeJSON(w, http.StatusOK, p, s.logger)
}
