package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/lox/pokerescrow/internal/escrow"
	"github.com/lox/pokerescrow/internal/ledger"
	"github.com/lox/pokerescrow/internal/protocol"
	"github.com/lox/pokerescrow/internal/reputation"
)

const maxIntentBody = 16 << 10

type errorBody struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type foldedBody struct {
	Room   uint64 `json:"room"`
	Actor  string `json:"actor"`
	Folded bool   `json:"folded"`
}

type ledgerBody struct {
	Entries  []ledger.Entry `json:"entries"`
	Verified bool           `json:"verified"`
	Error    string         `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps a result code to an HTTP status.
func statusOf(code string) int {
	switch code {
	case "":
		return http.StatusOK
	case string(escrow.CodeNotFound):
		return http.StatusNotFound
	case CodeBadRequest, string(escrow.CodeInvalidConfig), string(escrow.CodeInvalidActor):
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	res := s.failFromError(protocol.Result{}, err)
	writeJSON(w, statusOf(res.Code), errorBody{Code: res.Code, Reason: res.Reason})
}

func roomParam(w http.ResponseWriter, r *http.Request) (escrow.RoomID, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: CodeBadRequest, Reason: "invalid room id"})
		return 0, false
	}
	return escrow.RoomID(id), true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	var rooms []escrow.RoomView
	err := s.seq.Do(r.Context(), func(e *escrow.Engine) error {
		rooms = e.Rooms()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rooms == nil {
		rooms = []escrow.RoomView{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := roomParam(w, r)
	if !ok {
		return
	}
	var view escrow.RoomView
	err := s.seq.Do(r.Context(), func(e *escrow.Engine) (err error) {
		view, err = e.Room(id)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	id, ok := roomParam(w, r)
	if !ok {
		return
	}
	var players []escrow.Actor
	err := s.seq.Do(r.Context(), func(e *escrow.Engine) (err error) {
		players, err = e.Players(id)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if players == nil {
		players = []escrow.Actor{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	id, ok := roomParam(w, r)
	if !ok {
		return
	}
	var actions []escrow.Action
	err := s.seq.Do(r.Context(), func(e *escrow.Engine) (err error) {
		actions, err = e.Actions(id)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if actions == nil {
		actions = []escrow.Action{}
	}
	writeJSON(w, http.StatusOK, actions)
}

func (s *Server) handleBallots(w http.ResponseWriter, r *http.Request) {
	id, ok := roomParam(w, r)
	if !ok {
		return
	}
	var ballots []escrow.Ballot
	err := s.seq.Do(r.Context(), func(e *escrow.Engine) (err error) {
		ballots, err = e.Ballots(id)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ballots == nil {
		ballots = []escrow.Ballot{}
	}
	writeJSON(w, http.StatusOK, ballots)
}

func (s *Server) handleFolded(w http.ResponseWriter, r *http.Request) {
	id, ok := roomParam(w, r)
	if !ok {
		return
	}
	actor := strings.ToLower(r.PathValue("actor"))
	var folded bool
	err := s.seq.Do(r.Context(), func(e *escrow.Engine) (err error) {
		folded, err = e.HasFolded(id, escrow.Actor(actor))
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, foldedBody{Room: uint64(id), Actor: actor, Folded: folded})
}

func (s *Server) handleReputationList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []reputation.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleReputation(w http.ResponseWriter, r *http.Request) {
	actor := strings.ToLower(r.PathValue("actor"))
	score, err := s.store.Get(r.Context(), actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reputation.Entry{Actor: actor, Score: score})
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	body := ledgerBody{Entries: s.book.Entries(), Verified: true}
	if err := s.book.Verify(); err != nil {
		body.Verified = false
		body.Error = err.Error()
	}
	if body.Entries == nil {
		body.Entries = []ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, body)
}

// handleIntent applies a JSON intent. The response body is the protocol Result.
func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxIntentBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: CodeBadRequest, Reason: "unreadable body"})
		return
	}
	intent, err := s.validator.Decode(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.Result{Type: protocol.TypeResult, Code: CodeBadRequest, Reason: err.Error()})
		return
	}
	res := s.execute(r.Context(), intent)
	writeJSON(w, statusOf(res.Code), res)
}
