package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCollectBulkRatingsPartialFailure(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	missing := ids[1]

	result := collectBulkRatings(ids, func(id uuid.UUID) (bool, error) {
		return id != missing, nil
	})

	assert.Equal(t, 2, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, missing, result.Failed[0].ID)
	assert.Equal(t, "image not found in gallery", result.Failed[0].Error)
}

func TestCollectBulkRatingsAllSucceed(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	result := collectBulkRatings(ids, func(uuid.UUID) (bool, error) {
		return true, nil
	})

	assert.Equal(t, 2, result.Succeeded)
	assert.Empty(t, result.Failed)
}

func TestCollectBulkRatingsWriteError(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	result := collectBulkRatings(ids, func(id uuid.UUID) (bool, error) {
		if id == ids[0] {
			return false, errors.New("connection reset")
		}
		return true, nil
	})

	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, ids[0], result.Failed[0].ID)
	assert.Equal(t, "connection reset", result.Failed[0].Error)
}

func TestIsDuplicateKey(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicated key", fmt.Errorf("create image: %w", gorm.ErrDuplicatedKey), true},
		{"postgres unique violation", errors.New(`ERROR: duplicate key value violates unique constraint "uidx_images_gallery_position" (SQLSTATE 23505)`), true},
		{"unrelated error", errors.New("connection refused"), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isDuplicateKey(tc.err))
		})
	}
}
