package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/quickstore/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("DOCUMENT_NOT_FOUND", "document not found")

	t.Run("Should match predefined error after wrapping", func(t *testing.T) {
		parent := errors.New("no rows")
		err := fmt.Errorf("get document: %w", notFound.WrapParent(parent))

		assert.ErrorIs(t, err, notFound)
		assert.ErrorIs(t, err, parent)
	})

	t.Run("Should not match a different code", func(t *testing.T) {
		other := zerror.NewNotFound("COLLECTION_NOT_FOUND", "collection not found")
		assert.NotErrorIs(t, notFound, other)
	})

	t.Run("Should extract with errors.As", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", notFound)

		var zErr zerror.ZError
		assert.True(t, errors.As(err, &zErr))
		assert.Equal(t, zerror.StatusNotFound, zErr.Status())
		assert.Equal(t, "DOCUMENT_NOT_FOUND", zErr.Code())
		assert.Equal(t, "document not found", zErr.Msg())
	})

	t.Run("Should keep details on copies only", func(t *testing.T) {
		withDetails := notFound.WithDetails(zerror.Detail{Field: "id", Message: "unknown"})

		assert.Len(t, withDetails.Details(), 1)
		assert.Empty(t, notFound.Details())
	})

	t.Run("Should ignore nil parent", func(t *testing.T) {
		assert.Nil(t, notFound.WrapParent(nil).Parent())
		assert.Equal(t, "Code=DOCUMENT_NOT_FOUND, Msg=document not found", notFound.Error())
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", zerror.StatusNotFound.String())
	assert.Equal(t, "UNKNOWN", zerror.Status(200).String())
}
