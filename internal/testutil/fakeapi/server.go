// Package fakeapi serves an in-memory SafeStream API for tests.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safestream/safestream-go/pkg/log"
	"github.com/safestream/safestream-go/pkg/middleware"
	"github.com/safestream/safestream-go/pkg/requestid"
	"github.com/safestream/safestream-go/pkg/safestream/client"
	"github.com/safestream/safestream-go/pkg/safestream/video"
	"github.com/safestream/safestream-go/pkg/safestream/watermark"
)

const (
	APIKey  = "test-api-key"
	Version = "0.1"

	signingKey = "fakeapi-signing-key"
)

// Route identifies an endpoint by method and path below the version prefix, e.g. "POST /videos".
type Route string

const (
	RouteToken           Route = "POST /token"
	RouteCreateVideo     Route = "POST /videos"
	RouteFindVideos      Route = "GET /videos"
	RouteCreateWatermark Route = "POST /watermark"
	RouteGetWatermark    Route = "GET /watermark"
)

type override struct {
	status int
	body   string
}

type videoEntry struct {
	video   video.Video
	pending int
}

type watermarkEntry struct {
	result  watermark.Result
	pending int
}

// Server is a SafeStream API backed by memory. Videos and watermarks stay PENDING for a
// configurable number of polls before becoming terminal; a negative count never completes.
type Server struct {
	*httptest.Server

	mu                sync.Mutex
	token             string
	tokenDelay        time.Duration
	videoPolls        int
	watermarkPolls    int
	videos            []*videoEntry
	watermarks        map[string]*watermarkEntry
	overrides         map[Route]override
	hung              map[Route]bool
	requests          map[Route]int
	requestIDs        []string
	authorizations    []string
	lastContentType   string
	lastVideo         *video.Video
	lastWatermarkBody map[string]any
}

func New() *Server {
	s := &Server{
		token:      mintToken(time.Now().Add(time.Hour)),
		watermarks: map[string]*watermarkEntry{},
		overrides:  map[Route]override{},
		hung:       map[Route]bool{},
		requests:   map[Route]int{},
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(log.Logger(zap.L(), "fakeapi"))
	router.Route("/"+Version, func(r chi.Router) {
		r.Use(s.record)
		r.Post("/token", s.createToken)
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/videos", s.createVideo)
			r.Get("/videos", s.findVideos)
			r.Post("/watermark", s.createWatermark)
			r.Get("/watermark/{id}", s.getWatermark)
		})
	})
	return router
}

// Service points a client at this server.
func (s *Server) Service() client.Service {
	u, _ := url.Parse(s.URL)
	return client.Service{
		Protocol: client.Protocol(u.Scheme),
		Host:     u.Host,
		Version:  Version,
	}
}

// ClientConfig authenticates with APIKey against this server.
func (s *Server) ClientConfig() *client.Config {
	return &client.Config{APIKey: APIKey, Service: s.Service()}
}

// Override answers every request to route with status and body, bypassing the fake logic.
func (s *Server) Override(route Route, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[route] = override{status: status, body: body}
}

func (s *Server) ClearOverride(route Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, route)
	delete(s.hung, route)
}

// HangRoute makes every request to route block until the caller gives up on it.
func (s *Server) HangRoute(route Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hung[route] = true
}

// SetVideoPendingPolls sets how many lookups report a new video PENDING before it is INGESTED.
// Zero makes the submission itself return INGESTED.
func (s *Server) SetVideoPendingPolls(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoPolls = n
}

// SetWatermarkPendingPolls sets how many self link fetches report a new result PENDING before it is READY.
func (s *Server) SetWatermarkPendingPolls(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watermarkPolls = n
}

func (s *Server) SetTokenDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenDelay = d
}

// SetToken changes the token handed out by the token endpoint.
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Server) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Server) Requests(route Route) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// TotalRequests counts every request received, token requests included.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// Authorizations returns the Authorization header of every request, in arrival order.
func (s *Server) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authorizations...)
}

func (s *Server) LastContentType() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastContentType
}

// LastVideo returns the last video payload received.
func (s *Server) LastVideo() *video.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastVideo
}

// LastWatermarkRequest returns the last watermark payload received, decoded generically.
func (s *Server) LastWatermarkRequest() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWatermarkBody
}

// AddVideo files v as if it had been ingested earlier.
func (s *Server) AddVideo(v video.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	s.videos = append(s.videos, &videoEntry{video: v})
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeOf(r)

		s.mu.Lock()
		s.requests[route]++
		s.requestIDs = append(s.requestIDs, requestid.FromRequest(r))
		s.authorizations = append(s.authorizations, r.Header.Get("Authorization"))
		if r.Method == http.MethodPost {
			s.lastContentType = r.Header.Get("Content-Type")
		}
		o, overridden := s.overrides[route]
		hung := s.hung[route]
		s.mu.Unlock()

		if hung {
			<-r.Context().Done()
			return
		}

		if overridden {
			w.WriteHeader(o.status)
			_, _ = w.Write([]byte(o.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.Token() {
			_ = render.Render(w, r, newErrReply(http.StatusUnauthorized, "invalid bearer token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delay := s.tokenDelay
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if r.Header.Get("x-api-key") != APIKey {
		_ = render.Render(w, r, newErrReply(http.StatusUnauthorized, "invalid api key"))
		return
	}
	_ = render.Render(w, r, TokenReply{Token: s.Token()})
}

func (s *Server) createVideo(w http.ResponseWriter, r *http.Request) {
	var v video.Video
	if err := render.DecodeJSON(r.Body, &v); err != nil {
		_ = render.Render(w, r, newErrReply(http.StatusBadRequest, err.Error()))
		return
	}

	s.mu.Lock()
	received := v
	s.lastVideo = &received
	if v.Key == "" {
		v.Key = v.SourceURL
	}
	v.ID = uuid.NewString()
	v.Created = time.Now().UnixMilli()
	v.CreatedBy = "fakeapi"
	v.Status = video.StatusPending
	if s.videoPolls == 0 {
		v.Status = video.StatusIngested
	}
	s.videos = append(s.videos, &videoEntry{video: v, pending: s.videoPolls})
	s.mu.Unlock()

	_ = render.Render(w, r, VideoReply{Video: v})
}

func (s *Server) findVideos(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")

	s.mu.Lock()
	found := []video.Video{}
	for _, e := range s.videos {
		if e.video.Key != key {
			continue
		}
		if e.pending > 0 {
			e.pending--
		}
		if e.pending == 0 {
			e.video.Status = video.StatusIngested
		}
		found = append(found, e.video)
	}
	s.mu.Unlock()

	render.JSON(w, r, found)
}

func (s *Server) createWatermark(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		_ = render.Render(w, r, newErrReply(http.StatusBadRequest, err.Error()))
		return
	}
	key, _ := body["key"].(string)

	s.mu.Lock()
	s.lastWatermarkBody = body
	id := uuid.NewString()
	result := watermark.Result{
		ID:     id,
		Key:    key,
		Status: watermark.StatusPending,
		Href:   fmt.Sprintf("%s/%s/watermark/%s", s.URL, Version, id),
	}
	if s.watermarkPolls == 0 {
		result.Status = watermark.StatusReady
	}
	s.watermarks[id] = &watermarkEntry{result: result, pending: s.watermarkPolls}
	s.mu.Unlock()

	_ = render.Render(w, r, WatermarkReply{Result: result})
}

func (s *Server) getWatermark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	e, ok := s.watermarks[id]
	var result watermark.Result
	if ok {
		if e.pending > 0 {
			e.pending--
		}
		if e.pending == 0 {
			e.result.Status = watermark.StatusReady
		}
		result = e.result
	}
	s.mu.Unlock()

	if !ok {
		_ = render.Render(w, r, newErrReply(http.StatusNotFound, fmt.Sprintf("watermark %s not found", id)))
		return
	}
	_ = render.Render(w, r, WatermarkReply{Result: result})
}

func routeOf(r *http.Request) Route {
	path := strings.TrimPrefix(r.URL.Path, "/"+Version)
	if strings.HasPrefix(path, "/watermark/") {
		path = "/watermark"
	}
	return Route(fmt.Sprintf("%s %s", r.Method, path))
}

// MintToken returns a signed token expiring at exp.
func MintToken(exp time.Time) string {
	return mintToken(exp)
}

func mintToken(exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "fakeapi",
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	})
	signed, err := token.SignedString([]byte(signingKey))
	if err != nil {
		panic(err)
	}
	return signed
}

type TokenReply struct {
	Token string `json:"token"`
}

func (t TokenReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type VideoReply struct {
	video.Video
}

func (v VideoReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type WatermarkReply struct {
	watermark.Result
}

func (wr WatermarkReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type ErrReply struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func newErrReply(status int, message string) ErrReply {
	return ErrReply{StatusCode: status, Message: message}
}

func (e ErrReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}
