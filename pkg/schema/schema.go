package schema

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/sr"
)

type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject, avroSchemaText string) (int, error)
}

type registryIdentifier struct {
	client *sr.Client
}

// NewSchemaIdentifier registers schemas in the schema registry. Registering
// an already known schema returns its existing id.
func NewSchemaIdentifier(client *sr.Client) SchemaIdentifier {
	return registryIdentifier{client: client}
}

func (r registryIdentifier) DetermineID(
	ctx context.Context, subject, avroSchemaText string,
) (int, error) {
	const op = "registryIdentifier.DetermineID"

	ss, err := r.client.CreateSchema(ctx, subject, sr.Schema{
		Schema: avroSchemaText,
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return ss.ID, nil
}
