package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/niksmo/finsearch/internal/core/domain"
)

const (
	productIDKey = "product_id"
	errKey       = "err"
)

var _ slog.Handler = (*ErrorSink)(nil)

// ErrorSink is a [slog.Handler] that records warnings and errors of an
// export run into [domain.ExportErrors]. Records that carry an
// [*domain.InvalidProductError] or a product_id attribute become product
// errors, everything else becomes a general error.
type ErrorSink struct {
	errs  *domain.ExportErrors
	attrs []slog.Attr
}

func NewErrorSink(errs *domain.ExportErrors) *ErrorSink {
	return &ErrorSink{errs: errs}
}

func (s *ErrorSink) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (s *ErrorSink) Handle(_ context.Context, r slog.Record) error {
	var (
		productID string
		errText   string
		invalid   *domain.InvalidProductError
	)

	scan := func(a slog.Attr) bool {
		v := a.Value.Resolve()
		if a.Key == productIDKey {
			productID = v.String()
			return true
		}
		err, isErr := v.Any().(error)
		if a.Key == errKey {
			if isErr {
				errText = err.Error()
			} else {
				errText = v.String()
			}
		}
		if isErr && invalid == nil {
			errors.As(err, &invalid)
		}
		return true
	}

	for _, a := range s.attrs {
		scan(a)
	}
	r.Attrs(scan)

	switch {
	case invalid != nil:
		s.errs.AddProductError(domain.ProductError{
			ProductID: invalid.Product.ID,
			Errors:    []string{invalid.Error()},
		})
	case productID != "":
		s.errs.AddProductError(domain.ProductError{
			ProductID: productID,
			Errors:    []string{joinMessage(r.Message, errText)},
		})
	default:
		s.errs.AddGeneralError(joinMessage(r.Message, errText))
	}
	return nil
}

func (s *ErrorSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(s.attrs)+len(attrs))
	merged = append(merged, s.attrs...)
	merged = append(merged, attrs...)
	return &ErrorSink{errs: s.errs, attrs: merged}
}

// WithGroup keeps attributes flat, classification only looks at keys.
func (s *ErrorSink) WithGroup(string) slog.Handler {
	return s
}

func joinMessage(msg, errText string) string {
	if errText == "" {
		return msg
	}
	return msg + ": " + errText
}

// teeHandler passes records to every enabled handler.
type teeHandler []slog.Handler

func newTeeLogger(handlers ...slog.Handler) *slog.Logger {
	return slog.New(teeHandler(handlers))
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make(teeHandler, len(t))
	for i, h := range t {
		hs[i] = h.WithAttrs(attrs)
	}
	return hs
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	hs := make(teeHandler, len(t))
	for i, h := range t {
		hs[i] = h.WithGroup(name)
	}
	return hs
}
