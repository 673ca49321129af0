package api

import (
	"net/http"
	"strconv"

	"github.com/gh-network/publications/internal/dataloader"
	"github.com/gh-network/publications/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

const maxImageSize = 10 << 20

type publicationResponse struct {
	*domain.Publication
	IsUpdated bool                 `json:"isUpdated"`
	Featured  *domain.FeaturedInfo `json:"featured,omitempty"`
}

func toPublicationResponse(p *domain.Publication) *publicationResponse {
	return &publicationResponse{Publication: p, IsUpdated: p.IsUpdated()}
}

func (s *Server) getPublication(w http.ResponseWriter, r *http.Request) {
	publication, err := s.publications.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPublicationResponse(publication))
}

// searchPublications отдает страницу ленты. С featured=true к каждой публикации
// добавляется сводка комментариев, собранная одним батчем.
func (s *Server) searchPublications(w http.ResponseWriter, r *http.Request) {
	query, err := s.parsePublicationsQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, total, err := s.publications.Search(r.Context(), query.Skip, query.Take, query.Tags, query.Order)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePublications(w, r, list, total)
}

func (s *Server) searchPublicationsByAuthor(w http.ResponseWriter, r *http.Request) {
	query, err := s.parsePublicationsQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, total, err := s.publications.SearchByAuthor(r.Context(), query.Skip, query.Take, chi.URLParam(r, "authorId"), query.Order)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePublications(w, r, list, total)
}

func (s *Server) writePublications(w http.ResponseWriter, r *http.Request, list []*domain.Publication, total int64) {
	response := lo.Map(list, func(p *domain.Publication, _ int) *publicationResponse {
		return toPublicationResponse(p)
	})

	if r.URL.Query().Get("featured") == "true" && len(list) > 0 {
		ids := lo.Map(list, func(p *domain.Publication, _ int) string { return p.ID })
		featured, err := dataloader.LoadFeatured(r.Context(), ids)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		for _, p := range response {
			p.Featured = featured[p.ID]
		}
	}

	w.Header().Set("X-TotalCount", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) createPublication(w http.ResponseWriter, r *http.Request) {
	var req createPublicationRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.publications.Create(r.Context(), req.Content, req.AuthorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	publication, err := s.publications.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/publications/"+id)
	writeJSON(w, http.StatusCreated, toPublicationResponse(publication))
}

func (s *Server) updatePublication(w http.ResponseWriter, r *http.Request) {
	var req updatePublicationRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.publications.Update(r.Context(), chi.URLParam(r, "id"), req.Content); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deletePublication отвечает 404 для неизвестного id, сервис сам существование не проверяет.
// После удаления живые подписчики публикации отключаются.
func (s *Server) deletePublication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.publications.GetByID(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.publications.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.feed.CloseTopic(id)
	w.WriteHeader(http.StatusNoContent)
}

// attachImage принимает изображение сырым телом запроса, расширение берется из Content-Type.
func (s *Server) attachImage(w http.ResponseWriter, r *http.Request) {
	ext, err := imageExtension(r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := s.publications.AttachImage(r.Context(), chi.URLParam(r, "id"), body, ext); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) detachImage(w http.ResponseWriter, r *http.Request) {
	if err := s.publications.DetachImage(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
