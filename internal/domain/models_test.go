package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublication_NotUpdatedJustAfterCreation(t *testing.T) {
	p := NewPublication("text1", "author", nil, time.Now())

	assert.False(t, p.IsUpdated())
	assert.Nil(t, p.UpdatedOn)
}

func TestPublication_UpdatedAfterUpdate(t *testing.T) {
	created := time.Now()
	p := NewPublication("text1", "author", []string{"a"}, created)

	p.Update("text2", []string{"b"}, created.Add(time.Second))

	assert.True(t, p.IsUpdated())
	assert.Equal(t, "text2", p.Content)
	assert.Equal(t, []string{"b"}, p.Tags)
	assert.False(t, p.UpdatedOn.Before(p.CreatedOn))
}

func TestPublication_CloneIsDeep(t *testing.T) {
	url := "memory://images/a.png"
	p := NewPublication("text", "author", []string{"a"}, time.Now())
	p.ImagesURL = &url

	c := p.Clone()
	c.Tags[0] = "changed"
	*c.ImagesURL = "changed"

	assert.Equal(t, "a", p.Tags[0])
	assert.Equal(t, "memory://images/a.png", *p.ImagesURL)
}

func TestParseOrdering(t *testing.T) {
	o, err := ParseOrdering("")
	require.NoError(t, err)
	assert.Equal(t, Ascending, o)

	o, err = ParseOrdering("DESC")
	require.NoError(t, err)
	assert.Equal(t, Descending, o)

	_, err = ParseOrdering("sideways")
	assert.Error(t, err)
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("create: %w", ContentTooShort(5))

	assert.True(t, errors.Is(err, ErrContentTooShort))
	assert.False(t, errors.Is(err, ErrContentTooLong))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "content length is less than 5 characters", ContentTooShort(5).Error())
}

func TestKindOf_InfrastructureError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("connection refused")))
	assert.Equal(t, KindConflict, KindOf(ErrImageAlreadyExists))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrap: %w", ErrPublicationNotFound)))
}
