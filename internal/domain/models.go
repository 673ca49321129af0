package domain

import (
	"fmt"
	"strings"
	"time"
)

// Publication представляет публикацию пользователя.
type Publication struct {
	ID        string     `json:"id" gorm:"type:varchar(36);primary_key"`
	Content   string     `json:"content" gorm:"type:text;not null"`
	AuthorID  string     `json:"authorId" gorm:"type:varchar(255);not null;index"`
	Tags      []string   `json:"tags" gorm:"type:jsonb;serializer:json;not null"`
	CreatedOn time.Time  `json:"createdOn" gorm:"not null;index"`
	UpdatedOn *time.Time `json:"updatedOn,omitempty"`
	ImagesURL *string    `json:"imagesUrl,omitempty" gorm:"type:text"`
}

func (Publication) TableName() string {
	return "publications"
}

// NewPublication создает публикацию, которая еще ни разу не обновлялась.
func NewPublication(content, authorID string, tags []string, now time.Time) *Publication {
	return &Publication{
		Content:   content,
		AuthorID:  authorID,
		Tags:      tags,
		CreatedOn: now,
	}
}

// Update заменяет текст и теги и проставляет UpdatedOn.
func (p *Publication) Update(content string, tags []string, now time.Time) {
	p.Content = content
	p.Tags = tags
	p.UpdatedOn = &now
}

// IsUpdated - менялся ли текст после создания.
func (p *Publication) IsUpdated() bool {
	return p.UpdatedOn != nil
}

func (p *Publication) HasImage() bool {
	return p.ImagesURL != nil && *p.ImagesURL != ""
}

// Clone возвращает глубокую копию: хранилища не отдают общее состояние.
func (p *Publication) Clone() *Publication {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	if p.UpdatedOn != nil {
		t := *p.UpdatedOn
		c.UpdatedOn = &t
	}
	if p.ImagesURL != nil {
		u := *p.ImagesURL
		c.ImagesURL = &u
	}
	return &c
}

// Comment представляет комментарий к публикации.
type Comment struct {
	ID             string    `json:"id" gorm:"type:varchar(36);primary_key"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	PublicationID  string    `json:"publicationId" gorm:"type:varchar(36);not null;index"`
	ReplyCommentID *string   `json:"replyCommentId,omitempty" gorm:"type:varchar(36);index"`
	AuthorID       string    `json:"authorId" gorm:"type:varchar(255);not null"`
	CreatedOn      time.Time `json:"createdOn" gorm:"not null;index"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) Clone() *Comment {
	cp := *c
	if c.ReplyCommentID != nil {
		r := *c.ReplyCommentID
		cp.ReplyCommentID = &r
	}
	return &cp
}

// FeaturedInfo - краткая сводка комментариев одной публикации.
type FeaturedInfo struct {
	Comments   []*Comment `json:"comments"`
	TotalCount int64      `json:"totalCount"`
}

// Ordering - порядок сортировки по дате создания.
type Ordering int

const (
	Ascending Ordering = iota
	Descending
)

func (o Ordering) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// ParseOrdering принимает asc/desc в любом регистре, пустая строка - Ascending.
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(s) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("unknown ordering %q", s)
	}
}
