package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gh-network/publications/internal/domain"
	"github.com/gh-network/publications/internal/storage"
	"github.com/go-chi/chi/v5"
)

var errImageNotFound = &domain.Error{Kind: domain.KindNotFound, Code: "image_not_found", Message: "image not found"}

// getImage отдает изображение, если хранилище умеет читать файлы.
func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	reader, ok := s.images.(storage.ImageReader)
	if !ok {
		s.writeError(w, r, errImageNotFound)
		return
	}

	name := chi.URLParam(r, "name")
	rc, err := reader.Open(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, errImageNotFound)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()

	if contentType := mime.TypeByExtension(path.Ext(name)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("failed to write image", "name", name, "error", err)
	}
}
