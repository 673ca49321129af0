package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gh-network/publications/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var replyCommentID *string
	if req.ReplyCommentID != "" {
		replyCommentID = &req.ReplyCommentID
	}

	id, err := s.comments.Create(r.Context(), req.PublicationID, req.Content, replyCommentID, req.AuthorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	comment, err := s.comments.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.feed.Publish(comment)
	w.Header().Set("Location", "/comments/"+id)
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) getComment(w http.ResponseWriter, r *http.Request) {
	comment, err := s.comments.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (s *Server) searchComments(w http.ResponseWriter, r *http.Request) {
	query, err := s.parseCommentsQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	comments, total, err := s.comments.Search(r.Context(), chi.URLParam(r, "publicationId"), query.Skip, query.Take)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("X-TotalCount", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, comments)
}

// searchFeatured возвращает сводку для каждой запрошенной публикации.
// order=desc разворачивает комментарии сводки: сначала самые новые.
func (s *Server) searchFeatured(w http.ResponseWriter, r *http.Request) {
	order, err := domain.ParseOrdering(r.URL.Query().Get("order"))
	if err != nil {
		s.writeError(w, r, invalidRequest("%s", err))
		return
	}

	var req featuredRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	featured, err := s.comments.SearchFeatured(r.Context(), req.PublicationIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if order == domain.Descending {
		for _, info := range featured {
			info.Comments = lo.Reverse(append([]*domain.Comment(nil), info.Comments...))
		}
	}
	writeJSON(w, http.StatusOK, featured)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.comments.GetByID(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.comments.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteCommentsByPublication(w http.ResponseWriter, r *http.Request) {
	if err := s.comments.DeleteByPublication(r.Context(), chi.URLParam(r, "publicationId")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// liveComments держит websocket и пишет в него каждый новый комментарий публикации.
func (s *Server) liveComments(w http.ResponseWriter, r *http.Request) {
	publicationID := chi.URLParam(r, "publicationId")
	if _, err := s.publications.GetByID(r.Context(), publicationID); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Подписываемся до апгрейда, чтобы не потерять комментарии, созданные сразу после рукопожатия
	comments, unsubscribe := s.feed.Subscribe(publicationID)
	defer unsubscribe()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection", "publication", publicationID, "error", err)
		return
	}
	defer conn.Close()

	// Клиент ничего не пишет, но чтение нужно, чтобы заметить закрытие соединения
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case comment, ok := <-comments:
			if !ok {
				conn.WriteControl(websocket.CloseMessage, //nolint:errcheck
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed is closed"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteJSON(comment); err != nil {
				s.logger.Debug("live comment subscriber is gone", "publication", publicationID, "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
