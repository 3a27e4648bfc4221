package correlationid_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/quickstore/pkg/correlationid"
)

func TestContext(t *testing.T) {
	t.Run("Should be absent from a bare context", func(t *testing.T) {
		_, ok := correlationid.FromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("Should round trip through the context", func(t *testing.T) {
		ctx := correlationid.NewContext(context.Background(), "abc")
		id, ok := correlationid.FromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "abc", id)
	})

	t.Run("Should treat empty id as absent", func(t *testing.T) {
		ctx := correlationid.NewContext(context.Background(), "")
		_, ok := correlationid.FromContext(ctx)
		assert.False(t, ok)
	})

	t.Run("Should generate uuids", func(t *testing.T) {
		_, err := uuid.Parse(correlationid.New())
		assert.NoError(t, err)
	})
}
