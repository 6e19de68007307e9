package searchapi

type (
	response struct {
		Result result `json:"result"`
	}

	result struct {
		Metadata     metadata `json:"metadata"`
		Items        []item   `json:"items"`
		MainFilters  []filter `json:"mainFilters"`
		OtherFilters []filter `json:"otherFilters"`
	}

	metadata struct {
		TotalResults int `json:"totalResults"`
	}

	item struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	}

	filter struct {
		Name        string        `json:"name"`
		DisplayName string        `json:"displayName"`
		Type        string        `json:"type"`
		Values      []filterValue `json:"values"`
	}

	filterValue struct {
		Name         string        `json:"name"`
		Selected     bool          `json:"selected"`
		Frequency    int           `json:"frequency"`
		ColorHexCode string        `json:"colorHexCode"`
		Image        string        `json:"image"`
		Values       []filterValue `json:"values"`
	}
)
