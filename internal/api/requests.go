package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gh-network/publications/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const defaultTake = 10

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type createPublicationRequest struct {
	Content  string `json:"content"`
	AuthorID string `json:"authorId" validate:"required"`
}

type updatePublicationRequest struct {
	Content string `json:"content"`
}

type createCommentRequest struct {
	PublicationID  string `json:"publicationId" validate:"required"`
	Content        string `json:"content" validate:"required"`
	ReplyCommentID string `json:"replyCommentId"`
	AuthorID       string `json:"authorId"`
}

type featuredRequest struct {
	PublicationIDs []string `json:"publicationIds" validate:"required,dive,required"`
}

type publicationsQuery struct {
	Skip  int `json:"skip" validate:"min=0"`
	Take  int `json:"take" validate:"min=1,max=100"`
	Tags  []string
	Order domain.Ordering
}

type commentsQuery struct {
	Skip int `json:"skip" validate:"min=0"`
	Take int `json:"take" validate:"min=0,max=100"`
}

func invalidRequest(format string, args ...any) error {
	return domain.NewValidationError("invalid_request", fmt.Sprintf(format, args...))
}

// decode читает JSON тело и проверяет его правилами validate.
func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalidRequest("malformed request body: %s", err)
	}
	return s.check(dst)
}

func (s *Server) check(v any) error {
	err := s.validate.Struct(v)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		messages := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
			return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
		})
		return invalidRequest("%s", strings.Join(messages, "; "))
	}
	return err
}

func (s *Server) parsePublicationsQuery(r *http.Request) (*publicationsQuery, error) {
	q := r.URL.Query()

	skip, err := intParam(q.Get("skip"), 0)
	if err != nil {
		return nil, err
	}
	take, err := intParam(q.Get("take"), defaultTake)
	if err != nil {
		return nil, err
	}
	order, err := domain.ParseOrdering(q.Get("order"))
	if err != nil {
		return nil, invalidRequest("%s", err)
	}

	query := &publicationsQuery{
		Skip:  skip,
		Take:  take,
		Tags:  lo.Filter(q["tags"], func(tag string, _ int) bool { return tag != "" }),
		Order: order,
	}
	return query, s.check(query)
}

func (s *Server) parseCommentsQuery(r *http.Request) (*commentsQuery, error) {
	q := r.URL.Query()

	skip, err := intParam(q.Get("skip"), 0)
	if err != nil {
		return nil, err
	}
	take, err := intParam(q.Get("take"), defaultTake)
	if err != nil {
		return nil, err
	}

	query := &commentsQuery{Skip: skip, Take: take}
	return query, s.check(query)
}

func intParam(value string, def int) (int, error) {
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, invalidRequest("%q is not a number", value)
	}
	return n, nil
}

// imageExtension выбирает расширение файла по Content-Type загружаемого изображения.
func imageExtension(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", domain.NewValidationError("unsupported_image_type", "content type of image is missing or malformed")
	}
	ext, ok := imageExtensions[mediaType]
	if !ok {
		return "", domain.NewValidationError("unsupported_image_type", fmt.Sprintf("images of type %s are not supported", mediaType))
	}
	return ext, nil
}
