package schema

import "time"

const ExportItemSchemaTextV1 = `{
	"type": "record",
	"namespace": "finsearch",
	"name": "export_item",
	"fields": [
		{"name": "shopkey", "type": "string"},
		{"name": "id", "type": "string"},
		{"name": "name", "type": "string"},
		{"name": "description", "type": "string"},
		{"name": "url", "type": "string"},
		{"name": "date_added", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "sales_frequency", "type": "long"},
		{"name": "keywords", "type": {"type": "array", "items": "string"}},
		{"name": "order_numbers", "type": {"type": "array", "items": "string"}},
		{"name": "user_groups", "type": {"type": "array", "items": "string"}},
		{"name": "attributes", "type": {
			"type": "map",
			"values": {"type": "array", "items": "string"}
		}},
		{"name": "properties", "type": {"type": "map", "values": "string"}},
		{"name": "prices", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "price",
				"fields": [
					{"name": "unit_price", "type": "string"},
					{"name": "currency", "type": "string"},
					{"name": "user_group", "type": "string"}
				]
			}
		}},
		{"name": "images", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "image",
				"fields": [
					{"name": "url", "type": "string"},
					{"name": "type", "type": "string"}
				]
			}
		}}
	]
}`

type (
	ExportItemV1 struct {
		ShopKey        string              `avro:"shopkey"`
		ID             string              `avro:"id"`
		Name           string              `avro:"name"`
		Description    string              `avro:"description"`
		URL            string              `avro:"url"`
		DateAdded      time.Time           `avro:"date_added"`
		SalesFrequency int64               `avro:"sales_frequency"`
		Keywords       []string            `avro:"keywords"`
		OrderNumbers   []string            `avro:"order_numbers"`
		UserGroups     []string            `avro:"user_groups"`
		Attributes     map[string][]string `avro:"attributes"`
		Properties     map[string]string   `avro:"properties"`
		Prices         []ExportPriceV1     `avro:"prices"`
		Images         []ExportImageV1     `avro:"images"`
	}

	// ExportPriceV1 carries the unit price as a decimal string.
	ExportPriceV1 struct {
		UnitPrice string `avro:"unit_price"`
		Currency  string `avro:"currency"`
		UserGroup string `avro:"user_group"`
	}

	ExportImageV1 struct {
		URL  string `avro:"url"`
		Type string `avro:"type"`
	}
)
