package service

import "github.com/niksmo/finsearch/internal/core/domain"

type (
	// An ItemHook may mutate the item in place.
	ItemHook func(p domain.Product, item *domain.ExportItem)

	BuiltItemHook func(item *domain.ExportItem)
)

// Hooks are invoked synchronously in registration order.
type Hooks struct {
	beforeItemAdapt    []ItemHook
	afterItemBuild     []BuiltItemHook
	beforeVariantAdapt []ItemHook
	afterVariantAdapt  []ItemHook
}

func (h *Hooks) OnBeforeItemAdapt(fn ItemHook) {
	h.beforeItemAdapt = append(h.beforeItemAdapt, fn)
}

func (h *Hooks) OnAfterItemBuild(fn BuiltItemHook) {
	h.afterItemBuild = append(h.afterItemBuild, fn)
}

func (h *Hooks) OnBeforeVariantAdapt(fn ItemHook) {
	h.beforeVariantAdapt = append(h.beforeVariantAdapt, fn)
}

func (h *Hooks) OnAfterVariantAdapt(fn ItemHook) {
	h.afterVariantAdapt = append(h.afterVariantAdapt, fn)
}

func (h *Hooks) runBeforeItemAdapt(p domain.Product, item *domain.ExportItem) {
	if h == nil {
		return
	}
	for _, fn := range h.beforeItemAdapt {
		fn(p, item)
	}
}

func (h *Hooks) runAfterItemBuild(item *domain.ExportItem) {
	if h == nil {
		return
	}
	for _, fn := range h.afterItemBuild {
		fn(item)
	}
}

func (h *Hooks) runBeforeVariantAdapt(v domain.Product, item *domain.ExportItem) {
	if h == nil {
		return
	}
	for _, fn := range h.beforeVariantAdapt {
		fn(v, item)
	}
}

func (h *Hooks) runAfterVariantAdapt(v domain.Product, item *domain.ExportItem) {
	if h == nil {
		return
	}
	for _, fn := range h.afterVariantAdapt {
		fn(v, item)
	}
}
