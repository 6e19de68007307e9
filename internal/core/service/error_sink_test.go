package service

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorSink(t *testing.T) {
	t.Run("InvalidProduct", func(t *testing.T) {
		errs := domain.NewExportErrors()
		log := slog.New(NewErrorSink(errs))

		invalid := domain.NewInvalidProductError(domain.NoPrices, domain.Product{ID: "5"})
		log.Warn("product skipped", "err", invalid)

		pe, ok := errs.ProductError("5")
		require.True(t, ok)
		assert.Equal(t, []string{invalid.Error()}, pe.Errors)
	})

	t.Run("WrappedInvalidProduct", func(t *testing.T) {
		errs := domain.NewExportErrors()
		log := slog.New(NewErrorSink(errs))

		invalid := domain.NewInvalidProductError(domain.NoName, domain.Product{ID: "6"})
		log.Error("build failed", "cause", errors.Join(errors.New("context"), invalid))

		_, ok := errs.ProductError("6")
		assert.True(t, ok)
	})

	t.Run("ProductIDAttr", func(t *testing.T) {
		errs := domain.NewExportErrors()
		log := slog.New(NewErrorSink(errs)).With("product_id", "8")

		log.Warn("image unavailable", "err", errors.New("timeout"))

		pe, ok := errs.ProductError("8")
		require.True(t, ok)
		assert.Equal(t, []string{"image unavailable: timeout"}, pe.Errors)
	})

	t.Run("General", func(t *testing.T) {
		errs := domain.NewExportErrors()
		log := slog.New(NewErrorSink(errs)).With("op", "test")

		log.Error("catalog unavailable")
		log.Warn("slow query", "err", "took 3s")

		assert.Equal(t,
			[]string{"catalog unavailable", "slow query: took 3s"},
			errs.BuildErrorResponse().General,
		)
	})

	t.Run("IgnoresInfo", func(t *testing.T) {
		errs := domain.NewExportErrors()
		log := slog.New(NewErrorSink(errs))

		log.Info("export finished")
		log.Debug("details")

		assert.False(t, errs.HasErrors())
	})

	t.Run("Tee", func(t *testing.T) {
		first, second := domain.NewExportErrors(), domain.NewExportErrors()
		log := newTeeLogger(NewErrorSink(first), NewErrorSink(second)).WithGroup("g")

		log.Error("boom")

		assert.True(t, first.HasErrors())
		assert.True(t, second.HasErrors())
	})
}
