package searchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

var _ port.SearchAPI = (*Client)(nil)

const (
	DefaultBaseURL = "https://service.findologic.com/ps"

	outputAdapter  = "JSON_1.0"
	defaultTimeout = 3 * time.Second
)

// Client queries the search service and parses its JSON output adapter.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Query(ctx context.Context, q domain.SearchQuery) (domain.SearchAPIResponse, error) {
	const op = "Client.Query"

	u := c.baseURL + "/index.php?" + buildQuery(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.SearchAPIResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SearchAPIResponse{}, fmt.Errorf(
			"%s: %w", op, &domain.RemoteFetchError{URL: c.baseURL, Err: err},
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SearchAPIResponse{}, fmt.Errorf(
			"%s: %w", op, &domain.RemoteFetchError{URL: c.baseURL, StatusCode: resp.StatusCode},
		)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.SearchAPIResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	return toDomain(body), nil
}

func buildQuery(q domain.SearchQuery) url.Values {
	v := url.Values{}
	v.Set("shopkey", q.ShopKey)
	v.Set("query", q.Term)
	v.Set("first", strconv.Itoa(q.First))
	v.Set("count", strconv.Itoa(q.Count))
	v.Set("outputAdapter", outputAdapter)
	if q.UserGroup != "" {
		v.Set("usergrouphash", q.UserGroup)
	}
	for name, values := range q.Attributes {
		for _, val := range values {
			v.Add("attrib["+name+"][]", val)
		}
	}
	for _, name := range q.OutputAttrib {
		v.Add("outputAttrib[]", name)
	}
	return v
}

func toDomain(r response) domain.SearchAPIResponse {
	res := domain.SearchAPIResponse{Total: r.Result.Metadata.TotalResults}

	res.IDs = make([]string, 0, len(r.Result.Items))
	for _, it := range r.Result.Items {
		res.IDs = append(res.IDs, it.ID)
	}

	for _, f := range r.Result.MainFilters {
		res.Filters = append(res.Filters, filterToDomain(f))
	}
	for _, f := range r.Result.OtherFilters {
		res.Filters = append(res.Filters, filterToDomain(f))
	}
	return res
}

func filterToDomain(f filter) domain.Filter {
	df := domain.Filter{ID: f.Name, Name: f.DisplayName, Type: domain.FilterType(f.Type)}
	if df.Name == "" {
		df.Name = f.Name
	}

	if df.Type == domain.FilterTypeCategory {
		root := domain.NewCategoryFilterValue("", "")
		addCategoryValues(root, f.Values)
		for _, v := range root.Children {
			df.Values = append(df.Values, v)
		}
		return df
	}

	for _, v := range f.Values {
		var fv domain.FilterValue
		switch df.Type {
		case domain.FilterTypeColor:
			cv := domain.NewColorFilterValue(v.Name, v.Name, v.ColorHexCode)
			cv.ImageURL = v.Image
			cv.Selected, cv.Frequency = v.Selected, v.Frequency
			fv = cv
		case domain.FilterTypeImage:
			iv := domain.NewImageFilterValue(v.Name, v.Name, v.Image)
			iv.Selected, iv.Frequency = v.Selected, v.Frequency
			fv = iv
		default:
			sv := domain.NewSelectFilterValue(v.Name, v.Name)
			sv.Selected, sv.Frequency = v.Selected, v.Frequency
			fv = sv
		}
		df.Values = append(df.Values, fv)
	}
	return df
}

// addCategoryValues copies nested category values under parent. Names are
// kept whole, ids are the separator-joined path from the root.
func addCategoryValues(parent *domain.CategoryFilterValue, vs []filterValue) {
	for _, v := range vs {
		child, ok := parent.Child(v.Name)
		if !ok {
			id := v.Name
			if parent.ID() != "" {
				id = parent.ID() + domain.CategoryPathSeparator + v.Name
			}
			child = domain.NewCategoryFilterValue(id, v.Name)
			parent.AddChild(child)
		}
		child.Selected = child.Selected || v.Selected
		child.Frequency += v.Frequency
		addCategoryValues(child, v.Values)
	}
}
