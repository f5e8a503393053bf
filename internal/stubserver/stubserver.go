// Package stubserver runs a fake smrs backend on an httptest server.
// It keeps sessions and links in memory, records every call it receives and
// can be told to answer a route with an arbitrary body.
package stubserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/patric-chuzhbe/smrs/internal/models"
)

const (
	SessionCookieName   = "smrs_session_id"
	SessionCookieMaxAge = 60 * 60 * 24 * 365
	VersionHeader       = "SMRS-Version"
	Version             = "0.0.1"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// Call is one request received by the server.
type Call struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type rawResponse struct {
	status int
	body   string
}

type link struct {
	Token     models.Token `json:"token"`
	URL       string       `json:"url"`
	CreatedAt time.Time    `json:"created_at"`
	session   string
	deleted   bool
}

type saveRequest struct {
	URL   string        `json:"url" validate:"required,url"`
	Token *models.Token `json:"token"`
}

type sessionRequest struct {
	Session string `json:"session" validate:"required"`
}

// Server is the fake backend. The embedded httptest.Server exposes URL and Close.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []Call
	overrides map[string]rawResponse
	links     []*link
	validate  *validator.Validate
}

type Option func(*Server)

// WithRawResponse makes the route answer with the given status and body
// instead of running its handler.
func WithRawResponse(method, path string, status int, body string) Option {
	return func(s *Server) {
		s.overrides[routeKey(method, path)] = rawResponse{status: status, body: body}
	}
}

// New starts the server. Callers must Close it.
func New(optionsProto ...Option) *Server {
	s := &Server{
		overrides: map[string]rawResponse{},
		validate:  validator.New(),
	}
	for _, protoOption := range optionsProto {
		protoOption(s)
	}

	router := chi.NewRouter()
	router.Use(s.recordCall, s.withSession)
	router.Get(`/session`, s.getSession)
	router.Post(`/session`, s.postSession)
	router.Get(`/list`, s.getList)
	router.Post(`/save`, s.postSave)
	router.Post(`/forget`, s.postForget)

	s.Server = httptest.NewServer(router)

	return s
}

// Calls returns the recorded requests for method and path.
func (s *Server) Calls(method, path string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Call
	for _, call := range s.calls {
		if call.Method == method && call.Path == path {
			result = append(result, call)
		}
	}

	return result
}

// TotalCalls returns the number of requests received on any route.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

func routeKey(method, path string) string {
	return method + " " + path
}

func (s *Server) recordCall(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		if err != nil {
			response.WriteHeader(http.StatusBadRequest)
			return
		}
		request.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: request.Method,
			Path:   request.URL.Path,
			Header: request.Header.Clone(),
			Body:   body,
		})
		override, overridden := s.overrides[routeKey(request.Method, request.URL.Path)]
		s.mu.Unlock()

		response.Header().Set(VersionHeader, Version)

		if overridden {
			response.WriteHeader(override.status)
			_, _ = response.Write([]byte(override.body))
			return
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}

// withSession reuses the session cookie or issues a new one.
func (s *Server) withSession(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		sessionID := ""
		if cookie, err := request.Cookie(SessionCookieName); err == nil {
			sessionID = cookie.Value
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			setSessionCookie(response, sessionID)
		}

		ctx := context.WithValue(request.Context(), sessionIDKey, sessionID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// httptest serves plain http, so the cookie is not marked Secure.
func setSessionCookie(response http.ResponseWriter, sessionID string) {
	http.SetCookie(response, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   SessionCookieMaxAge,
		SameSite: http.SameSiteStrictMode,
	})
}

func sessionID(request *http.Request) string {
	id, _ := request.Context().Value(sessionIDKey).(string)
	return id
}

func writeJSON(response http.ResponseWriter, status int, body interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	_ = json.NewEncoder(response).Encode(body)
}

func writeError(response http.ResponseWriter, status int, err error) {
	writeJSON(response, status, map[string]string{"error": err.Error()})
}

func (s *Server) getSession(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusOK, map[string]string{"session": sessionID(request)})
}

func (s *Server) postSession(response http.ResponseWriter, request *http.Request) {
	var body sessionRequest
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}

	setSessionCookie(response, body.Session)
	writeJSON(response, http.StatusOK, map[string]string{"session": body.Session})
}

func (s *Server) getList(response http.ResponseWriter, request *http.Request) {
	session := sessionID(request)

	s.mu.Lock()
	links := make([]link, 0, len(s.links))
	for _, l := range s.links {
		if l.session == session && !l.deleted {
			links = append(links, *l)
		}
	}
	s.mu.Unlock()

	writeJSON(response, http.StatusOK, map[string]interface{}{"links": links})
}

func (s *Server) postSave(response http.ResponseWriter, request *http.Request) {
	var body saveRequest
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}

	token := newToken()
	if body.Token != nil && *body.Token != "" {
		token = *body.Token
	}

	s.mu.Lock()
	s.links = append(s.links, &link{
		Token:     token,
		URL:       body.URL,
		CreatedAt: time.Now().UTC(),
		session:   sessionID(request),
	})
	s.mu.Unlock()

	writeJSON(response, http.StatusOK, models.TokenResponse{Token: token})
}

func (s *Server) postForget(response http.ResponseWriter, request *http.Request) {
	var body models.ForgetRequest
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}

	session := sessionID(request)

	s.mu.Lock()
	for _, l := range s.links {
		if l.Token == body.Token && l.session == session {
			l.deleted = true
		}
	}
	s.mu.Unlock()

	writeJSON(response, http.StatusOK, models.TokenResponse{Token: body.Token})
}

func newToken() models.Token {
	return models.Token(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
