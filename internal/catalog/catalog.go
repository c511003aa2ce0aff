// Package catalog reads product seed files and writes them to the product store.
//
// A seed file is gzipped JSON lines, one product per line:
//
//	{"id": 7, "title": "Kettle", "price": "100.00", "available": true, "freeDelivery": false}
//
// available defaults to true and freeDelivery to true when omitted, matching
// the products table defaults.
package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Loader defines the interface for loading product seed files.
type Loader interface {
	// Load reads a gzipped seed file and returns its products in file order.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// Upserter is the product store a Seeder writes to.
type Upserter interface {
	Upsert(ctx context.Context, products []model.Product) (int, error)
}

// record is one line of a seed file.
type record struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	Available    *bool           `json:"available"`
	FreeDelivery *bool           `json:"freeDelivery"`
}

func (r record) product() (model.Product, error) {
	switch {
	case r.ID <= 0:
		return model.Product{}, fmt.Errorf("id must be positive, got %d", r.ID)
	case strings.TrimSpace(r.Title) == "":
		return model.Product{}, fmt.Errorf("product %d has no title", r.ID)
	case r.Price.IsNegative():
		return model.Product{}, fmt.Errorf("product %d has negative price %s", r.ID, r.Price)
	}

	p := model.Product{
		ID:           r.ID,
		Title:        strings.TrimSpace(r.Title),
		Price:        r.Price,
		Available:    true,
		FreeDelivery: true,
	}
	if r.Available != nil {
		p.Available = *r.Available
	}
	if r.FreeDelivery != nil {
		p.FreeDelivery = *r.FreeDelivery
	}
	return p, nil
}

// checkEvery is how many lines are read between context checks.
const checkEvery = 10_000

// readProducts decodes a gzipped seed stream. A product id seen twice keeps
// its last definition at the position of its first.
func readProducts(ctx context.Context, r io.Reader, source string) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var products []model.Product
	index := make(map[int64]int)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%s line %d: invalid JSON: %w", source, lineNo, err)
		}
		p, err := rec.product()
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, lineNo, err)
		}

		if i, ok := index[p.ID]; ok {
			products[i] = p
			continue
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seed file %s: %w", source, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// Seeder loads seed files and upserts their products.
type Seeder struct {
	loader Loader
	store  Upserter
	logger zerolog.Logger
}

// NewSeeder creates a seeder reading through loader and writing to store.
func NewSeeder(loader Loader, store Upserter, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "catalog-seeder").Logger(),
	}
}

// Seed loads every path in order and upserts its products. It stops at the
// first failing file and returns the number of rows written so far.
func (s *Seeder) Seed(ctx context.Context, paths ...string) (int, error) {
	total := 0
	for _, path := range paths {
		products, err := s.loader.Load(ctx, path)
		if err != nil {
			return total, fmt.Errorf("failed to load %s: %w", path, err)
		}

		written, err := s.store.Upsert(ctx, products)
		total += written
		if err != nil {
			return total, fmt.Errorf("failed to upsert products from %s: %w", path, err)
		}

		s.logger.Info().
			Str("file", path).
			Int("products", len(products)).
			Int("written", written).
			Msg("seed file applied")
	}
	return total, nil
}
