package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportErrors(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		errs := NewExportErrors()
		assert.False(t, errs.HasErrors())

		res := errs.BuildErrorResponse()
		assert.NotNil(t, res.General)
		assert.NotNil(t, res.Products)
		assert.Empty(t, res.General)
		assert.Empty(t, res.Products)
	})

	t.Run("MergesProductErrors", func(t *testing.T) {
		errs := NewExportErrors()
		errs.AddProductError(ProductError{ProductID: "1", Errors: []string{"first"}})
		errs.AddProductError(ProductError{ProductID: "2", Errors: []string{"other"}})
		errs.AddProductError(ProductError{ProductID: "1", Errors: []string{"second"}})

		require.True(t, errs.HasErrors())

		pe, ok := errs.ProductError("1")
		require.True(t, ok)
		assert.Equal(t, []string{"first", "second"}, pe.Errors)

		res := errs.BuildErrorResponse()
		require.Len(t, res.Products, 2)
		assert.Equal(t, "1", res.Products[0].ProductID)
		assert.Equal(t, "2", res.Products[1].ProductID)
	})

	t.Run("GeneralErrors", func(t *testing.T) {
		errs := NewExportErrors()
		errs.AddGeneralError("catalog unavailable")

		assert.True(t, errs.HasErrors())
		assert.Equal(t, []string{"catalog unavailable"}, errs.BuildErrorResponse().General)
	})

	t.Run("ProductWithoutMessages", func(t *testing.T) {
		errs := NewExportErrors()
		errs.AddProductError(ProductError{ProductID: "1"})
		assert.False(t, errs.HasErrors())
	})

	t.Run("ResponseIsACopy", func(t *testing.T) {
		errs := NewExportErrors()
		errs.AddProductError(ProductError{ProductID: "1", Errors: []string{"a"}})

		res := errs.BuildErrorResponse()
		res.Products[0].Errors[0] = "changed"

		pe, _ := errs.ProductError("1")
		assert.Equal(t, []string{"a"}, pe.Errors)
	})

	t.Run("Concurrent", func(t *testing.T) {
		errs := NewExportErrors()
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs.AddProductError(ProductError{ProductID: "1", Errors: []string{"e"}})
			}()
		}
		wg.Wait()

		pe, ok := errs.ProductError("1")
		require.True(t, ok)
		assert.Len(t, pe.Errors, 50)
	})
}
