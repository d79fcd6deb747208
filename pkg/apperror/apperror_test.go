package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"bouw-backoffice/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStore_WrapsRecordNotFound(t *testing.T) {
	err := apperror.Store(fmt.Errorf("find product: %w", gorm.ErrRecordNotFound))

	assert.True(t, apperror.IsNotFound(err))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStore_WrapsGenericError(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperror.Store(cause)

	assert.Equal(t, apperror.KindStore, apperror.KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStore_PassesThroughAppErrors(t *testing.T) {
	v := apperror.Validation("quantity must be greater than zero")
	assert.Same(t, v, apperror.Store(v))
	assert.Nil(t, apperror.Store(nil))
}
