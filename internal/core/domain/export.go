package domain

type ExportRequest struct {
	ShopKey              string
	Start                int
	Count                int
	ProductID            string
	ExcludeProductGroups bool
}

type ExportResult struct {
	RunID  string
	Items  []ExportItem
	Start  int
	Total  int
	Errors *ExportErrors
}

// RemoteConfigPayload is the JSON body published for a shop.
type RemoteConfigPayload struct {
	DirectIntegration struct {
		Enabled bool `json:"enabled"`
	} `json:"directIntegration"`
	IsStagingShop bool     `json:"isStagingShop"`
	Blocks        []string `json:"blocks"`
}

type SearchQuery struct {
	ShopKey      string
	Term         string
	First        int
	Count        int
	UserGroup    string
	Attributes   map[string][]string
	OutputAttrib []string
}

type SearchAPIResponse struct {
	IDs     []string
	Total   int
	Filters []Filter
}
