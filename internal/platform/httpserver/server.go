package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	keypadimport "quorum/contexts/assembly-voting/keypad-import"
	importdomainerrors "quorum/contexts/assembly-voting/keypad-import/domain/errors"
	importhttp "quorum/contexts/assembly-voting/keypad-import/transport/http"
	votingservice "quorum/contexts/assembly-voting/voting-service"
	votingdomainerrors "quorum/contexts/assembly-voting/voting-service/domain/errors"
	votinghttp "quorum/contexts/assembly-voting/voting-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "quorum/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	voting  votingservice.Module
	imports keypadimport.Module
}

func New(
	voting votingservice.Module,
	imports keypadimport.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		voting:  voting,
		imports: imports,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/voting/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/voting/start", s.handleStart)
	s.mux.HandleFunc("POST /api/voting/stop", s.handleStop)
	s.mux.HandleFunc("GET /api/voting/device", s.handleDeviceCheck)
	s.mux.HandleFunc("GET /api/voting/votes/{target}", s.handleLiveView)
	s.mux.HandleFunc("POST /api/voting/result/{target}", s.handleFinalize)
	s.mux.HandleFunc("GET /api/voting/device-result/{target}", s.handleDeviceResult)
	s.mux.HandleFunc("POST /api/voting/anonymize/{target}", s.handleAnonymize)

	s.mux.HandleFunc("POST /api/keypads/import/validate", s.handleImportValidate)
	s.mux.HandleFunc("POST /api/keypads/import", s.handleImportCommit)

	// Callbacks posted by the polling hardware controller.
	s.mux.HandleFunc("POST /votecollector/vote/{target}/{keypad_id}", s.handleVoteCallback)
	s.mux.HandleFunc("POST /votecollector/candidate/{target}/{keypad_id}", s.handleCandidateCallback)
	s.mux.HandleFunc("POST /votecollector/speaker/{item_id}/{keypad_id}", s.handleSpeakerCallback)
	s.mux.HandleFunc("POST /votecollector/keypad/{keypad_id}", s.handleKeypadCallback)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.voting.Handler.StatusHandler(r.Context()))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req votinghttp.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.voting.Handler.StartSessionHandler(r.Context(), req)
	if err != nil {
		s.writeVotingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.voting.Handler.StopSessionHandler(r.Context()); err != nil {
		s.writeVotingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.voting.Handler.StatusHandler(r.Context()))
}

func (s *Server) handleDeviceCheck(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.DeviceCheckHandler(r.Context())
	if err != nil {
		s.writeVotingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLiveView(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.LiveViewHandler(r.Context(), r.PathValue("target"))
	if err != nil {
		s.writeVotingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.FinalizeHandler(r.Context(), r.PathValue("target"))
	if err != nil {
		s.writeVotingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeviceResult(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.DeviceResultHandler(r.Context(), r.PathValue("target"))
	if err != nil {
		s.writeVotingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	if err := s.voting.Handler.AnonymizeHandler(r.Context(), r.PathValue("target")); err != nil {
		s.writeVotingError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportValidate(w http.ResponseWriter, r *http.Request) {
	var req importhttp.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.imports.Handler.ValidateHandler(r.Context(), req)
	if err != nil {
		s.writeImportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImportCommit(w http.ResponseWriter, r *http.Request) {
	var req importhttp.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.imports.Handler.CommitHandler(r.Context(), req)
	if err != nil {
		s.writeImportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteCallback(w http.ResponseWriter, r *http.Request) {
	keypadID, ok := pathKeypadID(w, r)
	if !ok {
		return
	}
	var req votinghttp.VoteCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.voting.Handler.VoteCallbackHandler(r.Context(), r.PathValue("target"), keypadID, req); err != nil {
		s.writeVotingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleCandidateCallback(w http.ResponseWriter, r *http.Request) {
	keypadID, ok := pathKeypadID(w, r)
	if !ok {
		return
	}
	var req votinghttp.CandidateCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.voting.Handler.CandidateCallbackHandler(r.Context(), r.PathValue("target"), keypadID, req); err != nil {
		s.writeVotingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSpeakerCallback(w http.ResponseWriter, r *http.Request) {
	keypadID, ok := pathKeypadID(w, r)
	if !ok {
		return
	}
	var req votinghttp.SpeakerCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.voting.Handler.SpeakerCallbackHandler(r.Context(), r.PathValue("item_id"), keypadID, req); err != nil {
		s.writeVotingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleKeypadCallback(w http.ResponseWriter, r *http.Request) {
	keypadID, ok := pathKeypadID(w, r)
	if !ok {
		return
	}
	var req votinghttp.KeypadCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.voting.Handler.KeypadCallbackHandler(r.Context(), keypadID, req); err != nil {
		s.writeVotingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func pathKeypadID(w http.ResponseWriter, r *http.Request) (int, bool) {
	keypadID, err := strconv.Atoi(r.PathValue("keypad_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_keypad_id", "keypad_id must be an integer")
		return 0, false
	}
	return keypadID, true
}

func (s *Server) writeVotingError(w http.ResponseWriter, err error) {
	var alreadyActive *votingdomainerrors.AlreadyActiveError
	if errors.As(err, &alreadyActive) {
		writeJSON(w, http.StatusConflict, struct {
			Code         string `json:"code"`
			Message      string `json:"message"`
			ActiveMode   string `json:"active_mode"`
			ActiveTarget string `json:"active_target,omitempty"`
		}{
			Code:         "already_active",
			Message:      alreadyActive.Error(),
			ActiveMode:   string(alreadyActive.Mode),
			ActiveTarget: alreadyActive.Target,
		})
		return
	}

	var deviceErr *votingdomainerrors.DeviceError
	if errors.As(err, &deviceErr) {
		writeError(w, http.StatusBadGateway, "device_"+string(deviceErr.Failure), deviceErr.Error())
		return
	}

	switch {
	case errors.Is(err, votingdomainerrors.ErrInvalidStartInput):
		writeError(w, http.StatusBadRequest, "invalid_start", err.Error())
	case errors.Is(err, votingdomainerrors.ErrAlreadyActive):
		writeError(w, http.StatusConflict, "already_active", err.Error())
	case errors.Is(err, votingdomainerrors.ErrDevice):
		writeError(w, http.StatusBadGateway, "device_error", err.Error())
	case errors.Is(err, votingdomainerrors.ErrNoActiveSession):
		writeError(w, http.StatusConflict, "no_active_session", err.Error())
	case errors.Is(err, votingdomainerrors.ErrSessionActive):
		writeError(w, http.StatusConflict, "session_active", err.Error())
	case errors.Is(err, votingdomainerrors.ErrInvalidVoteValue):
		writeError(w, http.StatusBadRequest, "invalid_vote_value", err.Error())
	case errors.Is(err, votingdomainerrors.ErrKeypadUnknown):
		writeError(w, http.StatusNotFound, "keypad_unknown", err.Error())
	case errors.Is(err, votingdomainerrors.ErrUserUnknown):
		writeError(w, http.StatusUnprocessableEntity, "keypad_anonymous", err.Error())
	case errors.Is(err, votingdomainerrors.ErrUnknownPollKind):
		writeError(w, http.StatusNotFound, "unknown_poll", err.Error())
	default:
		s.logger.Error("unhandled voting error",
			"event", "http_voting_unhandled_error",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}

func (s *Server) writeImportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, importdomainerrors.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.logger.Error("unhandled import error",
			"event", "http_import_unhandled_error",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votinghttp.ErrorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
