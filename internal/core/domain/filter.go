package domain

type FilterType string

const (
	FilterTypeSelect   FilterType = "select"
	FilterTypeLabel    FilterType = "label"
	FilterTypeRange    FilterType = "range-slider"
	FilterTypeColor    FilterType = "color"
	FilterTypeImage    FilterType = "image"
	FilterTypeCategory FilterType = "category"
)

// CategoryPathSeparator joins category names in a filter value path.
const CategoryPathSeparator = "_"

type Filter struct {
	ID     string
	Name   string
	Type   FilterType
	Values []FilterValue
}

type FilterValue interface {
	ID() string
	Name() string
}

// Selectable values can be marked as chosen by the shopper.
type Selectable interface {
	FilterValue
	IsSelected() bool
}

type SelectFilterValue struct {
	id, name  string
	Selected  bool
	Frequency int
}

func NewSelectFilterValue(id, name string) *SelectFilterValue {
	return &SelectFilterValue{id: id, name: name}
}

func (v *SelectFilterValue) ID() string       { return v.id }
func (v *SelectFilterValue) Name() string     { return v.name }
func (v *SelectFilterValue) IsSelected() bool { return v.Selected }

type ColorFilterValue struct {
	SelectFilterValue
	HexValue string
	ImageURL string
}

func NewColorFilterValue(id, name, hex string) *ColorFilterValue {
	return &ColorFilterValue{
		SelectFilterValue: SelectFilterValue{id: id, name: name},
		HexValue:          hex,
	}
}

type ImageFilterValue struct {
	SelectFilterValue
	ImageURL string
}

func NewImageFilterValue(id, name, imageURL string) *ImageFilterValue {
	return &ImageFilterValue{
		SelectFilterValue: SelectFilterValue{id: id, name: name},
		ImageURL:          imageURL,
	}
}

// A CategoryFilterValue owns its children. Lookups go by name.
type CategoryFilterValue struct {
	SelectFilterValue
	Children []*CategoryFilterValue
}

func NewCategoryFilterValue(id, name string) *CategoryFilterValue {
	return &CategoryFilterValue{
		SelectFilterValue: SelectFilterValue{id: id, name: name},
	}
}

func (v *CategoryFilterValue) Child(name string) (*CategoryFilterValue, bool) {
	for _, c := range v.Children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (v *CategoryFilterValue) AddChild(c *CategoryFilterValue) {
	v.Children = append(v.Children, c)
}
