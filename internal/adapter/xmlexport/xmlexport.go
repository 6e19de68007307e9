// Package xmlexport renders export items as a FINDOLOGIC XML document.
package xmlexport

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/niksmo/finsearch/internal/core/domain"
)

const (
	documentVersion = "1.0"
	dateAddedLayout = time.RFC3339
)

type (
	document struct {
		XMLName xml.Name `xml:"findologic"`
		Version string   `xml:"version,attr"`
		Items   items    `xml:"items"`
	}

	items struct {
		Start int    `xml:"start,attr"`
		Count int    `xml:"count,attr"`
		Total int    `xml:"total,attr"`
		Items []item `xml:"item"`
	}

	item struct {
		ID               string           `xml:"id,attr"`
		OrderNumbers     []orderNumbers   `xml:"allOrdernumbers>ordernumbers"`
		Names            []userGroupValue `xml:"names>name"`
		Descriptions     []userGroupValue `xml:"descriptions>description"`
		Prices           []price          `xml:"prices>price"`
		URLs             []userGroupValue `xml:"urls>url"`
		Keywords         []keywords       `xml:"allKeywords>keywords"`
		Images           []imageGroup     `xml:"allImages>images"`
		Attributes       []attribute      `xml:"allAttributes>attributes>attribute"`
		Properties       []propertyGroup  `xml:"allProperties>properties"`
		DateAdded        []userGroupValue `xml:"dateAddeds>dateAdded"`
		SalesFrequencies []userGroupValue `xml:"salesFrequencies>salesFrequency"`
		UserGroups       []string         `xml:"usergroups>usergroup"`
	}

	userGroupValue struct {
		UserGroup string `xml:"usergroup,attr"`
		Value     string `xml:",cdata"`
	}

	price struct {
		UserGroup string `xml:"usergroup,attr"`
		Currency  string `xml:"currency,attr,omitempty"`
		Value     string `xml:",cdata"`
	}

	imageGroup struct {
		UserGroup string  `xml:"usergroup,attr"`
		Images    []image `xml:"image"`
	}

	image struct {
		Type  string `xml:"type,attr"`
		Value string `xml:",cdata"`
	}

	attribute struct {
		Key    string  `xml:"key"`
		Values []cdata `xml:"values>value"`
	}

	cdata struct {
		Value string `xml:",cdata"`
	}

	propertyGroup struct {
		UserGroup  string     `xml:"usergroup,attr"`
		Properties []property `xml:"property"`
	}

	property struct {
		Key   string `xml:"key"`
		Value cdata  `xml:"value"`
	}

	orderNumbers struct {
		UserGroup string  `xml:"usergroup,attr"`
		Values    []cdata `xml:"ordernumber"`
	}

	keywords struct {
		UserGroup string  `xml:"usergroup,attr"`
		Values    []cdata `xml:"keyword"`
	}
)

// Render writes a complete XML document for a page of items. total is the
// number of products in the catalog, not only the ones on the page.
func Render(w io.Writer, page []domain.ExportItem, start, total int) error {
	const op = "xmlexport.Render"

	doc := document{
		Version: documentVersion,
		Items: items{
			Start: start,
			Count: len(page),
			Total: total,
			Items: make([]item, 0, len(page)),
		},
	}
	for _, it := range page {
		doc.Items.Items = append(doc.Items.Items, toXMLItem(it))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func toXMLItem(it domain.ExportItem) item {
	x := item{
		ID:         it.ID,
		Names:      []userGroupValue{{Value: it.Name}},
		UserGroups: it.UserGroups,
		SalesFrequencies: []userGroupValue{
			{Value: strconv.Itoa(it.SalesFrequency)},
		},
	}

	if it.Description != "" {
		x.Descriptions = []userGroupValue{{Value: it.Description}}
	}
	if it.URL != "" {
		x.URLs = []userGroupValue{{Value: it.URL}}
	}
	if !it.DateAdded.IsZero() {
		x.DateAdded = []userGroupValue{{Value: it.DateAdded.Format(dateAddedLayout)}}
	}
	if len(it.OrderNumbers) > 0 {
		x.OrderNumbers = []orderNumbers{{Values: toCDATA(it.OrderNumbers)}}
	}
	if len(it.Keywords) > 0 {
		x.Keywords = []keywords{{Values: toCDATA(it.Keywords)}}
	}

	for _, p := range it.Prices {
		x.Prices = append(x.Prices, price{
			UserGroup: p.UserGroup,
			Currency:  p.Currency,
			Value:     p.UnitPrice.StringFixed(2),
		})
	}

	if len(it.Images) > 0 {
		var g imageGroup
		for _, img := range it.Images {
			g.Images = append(g.Images, image{Type: img.Type, Value: img.URL})
		}
		x.Images = []imageGroup{g}
	}

	for _, key := range sortedKeys(it.Attributes) {
		x.Attributes = append(x.Attributes, attribute{
			Key:    key,
			Values: toCDATA(it.Attributes[key]),
		})
	}

	if len(it.Properties) > 0 {
		var g propertyGroup
		for _, key := range sortedKeys(it.Properties) {
			g.Properties = append(g.Properties, property{
				Key:   key,
				Value: cdata{it.Properties[key]},
			})
		}
		x.Properties = []propertyGroup{g}
	}
	return x
}

func toCDATA(vs []string) []cdata {
	out := make([]cdata, len(vs))
	for i, v := range vs {
		out[i] = cdata{v}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
