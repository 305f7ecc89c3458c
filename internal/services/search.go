package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"farmlyf_back_end/internal/models"
)

const productIndex = "products"

// ProductIndex is the full text index of the catalog.
type ProductIndex interface {
	Index(ctx context.Context, p models.Product) error
	Remove(ctx context.Context, id string) error
	// Search returns matching product ids, best match first.
	Search(ctx context.Context, q string, limit int) ([]string, error)
}

// ElasticIndex indexes products in Elasticsearch.
type ElasticIndex struct {
	es *elasticsearch.Client
}

func NewElasticIndex(es *elasticsearch.Client) ProductIndex {
	if es == nil {
		return nil
	}
	return &ElasticIndex{es: es}
}

type productDoc struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"category_id"`
	Variants    []string `json:"variants"`
	MinPrice    float64  `json:"min_price"`
	Active      bool     `json:"active"`
}

func toDoc(p models.Product) productDoc {
	doc := productDoc{
		Name:        p.Name,
		Description: p.Description,
		Tags:        p.Tags,
		CategoryID:  p.CategoryID.Hex(),
		Active:      p.IsActive,
	}
	for i, v := range p.Variants {
		doc.Variants = append(doc.Variants, v.Label)
		if i == 0 || v.Price < doc.MinPrice {
			doc.MinPrice = v.Price
		}
	}
	return doc
}

func (e *ElasticIndex) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(toDoc(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      productIndex,
		DocumentID: p.ID.Hex(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product %s: %s", p.ID.Hex(), res.String())
	}
	return nil
}

func (e *ElasticIndex) Remove(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: productIndex, DocumentID: id}.Do(ctx, e.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("remove product %s: %s", id, res.String())
	}
	return nil
}

func (e *ElasticIndex) Search(ctx context.Context, q string, limit int) ([]string, error) {
	var buf bytes.Buffer
	query := map[string]any{
		"size":    limit,
		"_source": false,
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"name^3", "tags^2", "variants", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{"term": map[string]any{"active": true}},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := esapi.SearchRequest{Index: []string{productIndex}, Body: &buf}.Do(ctx, e.es)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search products: %s", res.String())
	}

	var body struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
