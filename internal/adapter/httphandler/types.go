package httphandler

import "github.com/niksmo/finsearch/internal/core/domain"

type (
	ExportResponse struct {
		RunID  string               `json:"runId"`
		Start  int                  `json:"start"`
		Count  int                  `json:"count"`
		Total  int                  `json:"total"`
		Items  []ExportItem         `json:"items"`
		Errors domain.ErrorResponse `json:"errors"`
	}

	ExportItem struct {
		ID             string              `json:"id"`
		Name           string              `json:"name"`
		Description    string              `json:"description,omitempty"`
		URL            string              `json:"url,omitempty"`
		DateAdded      string              `json:"dateAdded,omitempty"`
		SalesFrequency int                 `json:"salesFrequency"`
		Keywords       []string            `json:"keywords,omitempty"`
		OrderNumbers   []string            `json:"orderNumbers,omitempty"`
		UserGroups     []string            `json:"userGroups,omitempty"`
		Attributes     map[string][]string `json:"attributes"`
		Properties     map[string]string   `json:"properties,omitempty"`
		Prices         []Price             `json:"prices"`
		Images         []Image             `json:"images,omitempty"`
	}

	Price struct {
		Value     string `json:"value"`
		Currency  string `json:"currency"`
		UserGroup string `json:"userGroup,omitempty"`
	}

	Image struct {
		URL  string `json:"url"`
		Type string `json:"type"`
	}
)

type WarmUpResponse struct {
	ShopKey       string `json:"shopkey"`
	ProductGroups int    `json:"productGroups"`
}

type (
	SearchResponse struct {
		Total    int             `json:"total"`
		External bool            `json:"external"`
		Products []SearchProduct `json:"products"`
		Filters  []Filter        `json:"filters"`
	}

	SearchProduct struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		ProductNumber string `json:"productNumber,omitempty"`
		URL           string `json:"url,omitempty"`
	}

	Filter struct {
		ID     string        `json:"id"`
		Name   string        `json:"name"`
		Type   string        `json:"type"`
		Values []FilterValue `json:"values"`
	}

	FilterValue struct {
		ID        string        `json:"id"`
		Name      string        `json:"name"`
		Selected  bool          `json:"selected"`
		Frequency int           `json:"frequency,omitempty"`
		Color     string        `json:"color,omitempty"`
		ImageURL  string        `json:"imageUrl,omitempty"`
		Children  []FilterValue `json:"children,omitempty"`
	}
)

type ServiceConfigResponse struct {
	ShopKey            string   `json:"shopkey"`
	DirectIntegration  bool     `json:"directIntegration"`
	IsStaging          bool     `json:"isStaging"`
	SmartSuggestBlocks []string `json:"smartSuggestBlocks"`
}

type ErrorMessage struct {
	Error string `json:"error"`
}
