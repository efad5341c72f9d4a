package mcpadapter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cideldill/cideldill/internal/logger"
)

// Routes mounts the SSE transport, grounded on genai-toolbox's
// mcpRouter: GET /sse opens a long-lived event stream and hands back the
// URL to post messages against; POST /message carries one JSON-RPC
// message, optionally tied to an SSE session via ?sessionId=; DELETE
// /message closes a session early.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/sse", s.sseHandler)
	r.Post("/message", s.messageHandler)
	r.Delete("/message", s.closeSessionHandler)
	return r
}

func (s *Server) sseHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	session := newSSESession()
	s.sessions.add(session)
	defer s.sessions.remove(session.id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	prefix := strings.TrimSuffix(r.URL.Path, "/sse")
	fmt.Fprintf(w, "event: endpoint\ndata: %s/message?sessionId=%s\n\n", prefix, session.id)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-session.done:
			return
		case data := <-session.events:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) messageHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	resp := s.HandleMessage(r.Context(), body)

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		w.Header().Set("Content-Type", "application/json")
		if resp == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(resp)
		return
	}

	session, ok := s.sessions.get(sessionID)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	s.sessions.touch(sessionID)
	if resp != nil {
		select {
		case session.events <- resp:
		default:
			logger.Warn("mcpadapter: session event queue full, dropping response", "session_id", sessionID)
		}
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) closeSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}
	s.sessions.remove(sessionID)
	w.WriteHeader(http.StatusOK)
}

// ServeStdio runs the stdio transport: one JSON-RPC message per line,
// read from r and responded to on w, until ctx is cancelled or r hits
// EOF. This is the transport an MCP client launches as a subprocess,
// grounded on genai-toolbox's stdioSession read loop.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			errs <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}
			if line == "" {
				continue
			}
			resp := s.HandleMessage(ctx, []byte(line))
			if resp == nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s\n", resp); err != nil {
				return err
			}
		}
	}
}
