package domain

import "sync"

type ProductError struct {
	ProductID string   `json:"id"`
	Errors    []string `json:"errors"`
}

type ErrorResponse struct {
	General  []string       `json:"general"`
	Products []ProductError `json:"products"`
}

// ExportErrors collects general and per-product errors of one export run.
// It is safe for concurrent use.
type ExportErrors struct {
	mu       sync.Mutex
	general  []string
	products map[string]*ProductError
	order    []string
}

func NewExportErrors() *ExportErrors {
	return &ExportErrors{products: make(map[string]*ProductError)}
}

func (e *ExportErrors) AddGeneralError(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.general = append(e.general, msg)
}

// AddProductError merges the errors into an existing entry of the same
// product.
func (e *ExportErrors) AddProductError(pe ProductError) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.products[pe.ProductID]; ok {
		existing.Errors = append(existing.Errors, pe.Errors...)
		return
	}

	errs := make([]string, len(pe.Errors))
	copy(errs, pe.Errors)
	e.products[pe.ProductID] = &ProductError{ProductID: pe.ProductID, Errors: errs}
	e.order = append(e.order, pe.ProductID)
}

func (e *ExportErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.general) != 0 {
		return true
	}
	for _, pe := range e.products {
		if len(pe.Errors) != 0 {
			return true
		}
	}
	return false
}

func (e *ExportErrors) ProductError(productID string) (ProductError, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pe, ok := e.products[productID]
	if !ok {
		return ProductError{}, false
	}
	return copyProductError(pe), true
}

func (e *ExportErrors) BuildErrorResponse() ErrorResponse {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := ErrorResponse{
		General:  make([]string, len(e.general)),
		Products: make([]ProductError, 0, len(e.products)),
	}
	copy(res.General, e.general)
	for _, id := range e.order {
		res.Products = append(res.Products, copyProductError(e.products[id]))
	}
	return res
}

func copyProductError(pe *ProductError) ProductError {
	errs := make([]string, len(pe.Errors))
	copy(errs, pe.Errors)
	return ProductError{ProductID: pe.ProductID, Errors: errs}
}
