package api

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gh-network/publications/internal/dataloader"
	"github.com/gh-network/publications/internal/domain"
	"github.com/gh-network/publications/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PublicationService interface {
	GetByID(ctx context.Context, id string) (*domain.Publication, error)
	Search(ctx context.Context, skip, take int, tags []string, order domain.Ordering) ([]*domain.Publication, int64, error)
	SearchByAuthor(ctx context.Context, skip, take int, authorID string, order domain.Ordering) ([]*domain.Publication, int64, error)
	Create(ctx context.Context, text, authorID string) (string, error)
	Update(ctx context.Context, id, text string) error
	Delete(ctx context.Context, id string) error
	AttachImage(ctx context.Context, id string, r io.Reader, extension string) error
	DetachImage(ctx context.Context, id string) error
}

type CommentService interface {
	Create(ctx context.Context, publicationID, text string, replyCommentID *string, authorID string) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Search(ctx context.Context, publicationID string, skip, take int) ([]*domain.Comment, int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByPublication(ctx context.Context, publicationID string) error
	SearchFeatured(ctx context.Context, keys []string) (map[string]*domain.FeaturedInfo, error)
}

type Server struct {
	logger       *slog.Logger
	publications PublicationService
	comments     CommentService
	images       storage.ImageStore
	feed         *CommentFeed
	validate     *validator.Validate
	upgrader     websocket.Upgrader
}

func NewServer(logger *slog.Logger, publications PublicationService, comments CommentService, images storage.ImageStore) *Server {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// В сообщениях об ошибках используем имена полей из JSON
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{
		logger:       logger.With("component", "api.Server"),
		publications: publications,
		comments:     comments,
		images:       images,
		feed:         NewCommentFeed(),
		validate:     validate,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/images/{name}", s.getImage)

	r.Route("/publications", func(r chi.Router) {
		r.Use(dataloader.Middleware(s.comments))

		r.Get("/", s.searchPublications)
		r.Post("/", s.createPublication)
		r.Get("/byauthor/{authorId}", s.searchPublicationsByAuthor)
		r.Get("/{id}", s.getPublication)
		r.Put("/{id}", s.updatePublication)
		r.Delete("/{id}", s.deletePublication)
		r.Put("/{id}/image", s.attachImage)
		r.Delete("/{id}/image", s.detachImage)
	})

	r.Route("/comments", func(r chi.Router) {
		r.Post("/", s.createComment)
		r.Post("/featured", s.searchFeatured)
		r.Get("/bypublication/{publicationId}", s.searchComments)
		r.Delete("/bypublication/{publicationId}", s.deleteCommentsByPublication)
		r.Get("/bypublication/{publicationId}/live", s.liveComments)
		r.Get("/{id}", s.getComment)
		r.Delete("/{id}", s.deleteComment)
	})

	return r
}

// Run обслуживает запросы до отмены ctx, затем закрывает живые подписки и останавливает сервер.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.feed.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("failed to shutdown server gracefully", "error", err)
		}
	}()

	s.logger.Info("Starting API server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack нужен websocket.Upgrader.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		requestsProcessed.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		requestLatency.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
