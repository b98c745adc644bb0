package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmylchreest/narrate/internal/inbox"
	"github.com/jmylchreest/narrate/internal/logger"
	"github.com/jmylchreest/narrate/internal/speaker"
	"github.com/jmylchreest/narrate/internal/version"
	"github.com/jmylchreest/narrate/pkg/cleaner/speech"
	"github.com/jmylchreest/narrate/pkg/synth"
)

// Source values reported in speak responses.
const (
	sourceInbox = "inbox"
	sourceBody  = "body"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type speakResponse struct {
	Status    string `json:"status"`
	FileSaved string `json:"file_saved"`
	Spoken    string `json:"spoken"`
	Source    string `json:"source"`
	Played    bool   `json:"played"`
}

type cleanResponse struct {
	Status string              `json:"status"`
	Text   string              `json:"text"`
	Stages []speech.StageStats `json:"stages"`
}

// errRequest carries a client error message and status.
type errRequest struct {
	status  int
	message string
}

func (e *errRequest) Error() string { return e.message }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Debug("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: "error", Message: message})
}

// readText decodes {"text": ...} from the body. A non-string text value
// becomes "" through speech.AsText, so it is rejected as unspeakable rather
// than malformed.
func (s *Server) readText(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", &errRequest{http.StatusRequestEntityTooLarge, "request body too large"}
		}
		return "", &errRequest{http.StatusBadRequest, "invalid JSON body"}
	}

	v, ok := body["text"]
	if !ok {
		return "", &errRequest{http.StatusBadRequest, "no text provided"}
	}
	return speech.AsText(v), nil
}

// nextText returns staged inbox text when present, otherwise the body text.
func (s *Server) nextText(w http.ResponseWriter, r *http.Request) (text, source string, err error) {
	if s.opts.Inbox != nil {
		text, err := s.opts.Inbox.Take()
		switch {
		case err == nil:
			return text, sourceInbox, nil
		case !errors.Is(err, inbox.ErrEmpty):
			logger.Warn("inbox unreadable, using request body", "path", s.opts.Inbox.Path(), "error", err)
		}
	}
	text, err = s.readText(w, r)
	return text, sourceBody, err
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	text, source, err := s.nextText(w, r)
	if err != nil {
		var reqErr *errRequest
		if errors.As(err, &reqErr) {
			writeError(w, reqErr.status, reqErr.message)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Info("speak request", "source", source, "chars", len(text))

	ctx := r.Context()
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	res, err := s.speaker.Speak(ctx, text)
	switch {
	case errors.Is(err, speaker.ErrNothingToSay):
		writeError(w, http.StatusBadRequest, "no speakable text")
		return
	case errors.Is(err, synth.ErrEmptyAudio):
		logger.Error("synthesizer produced no audio")
		writeError(w, http.StatusInternalServerError, "empty audio output")
		return
	case err != nil:
		logger.Error("speak failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, speakResponse{
		Status:    "success",
		FileSaved: res.AudioPath,
		Spoken:    res.Spoken,
		Source:    source,
		Played:    res.Played,
	})
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	text, err := s.readText(w, r)
	if err != nil {
		var reqErr *errRequest
		if errors.As(err, &reqErr) {
			writeError(w, reqErr.status, reqErr.message)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.opts.Pipeline.CleanWithStats(text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cleanResponse{
		Status: "success",
		Text:   result.Content,
		Stages: result.Stages,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Get())
}
