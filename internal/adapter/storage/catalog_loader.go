package storage

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rl1809/pos-register/internal/core/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

type catalogFile struct {
	Products []struct {
		ID       int64  `yaml:"id"`
		Name     string `yaml:"name"`
		Price    string `yaml:"price"`
		Category string `yaml:"category"`
		Image    string `yaml:"image"`
	} `yaml:"products"`
}

// DefaultCatalog returns the demo products bundled with the binary.
func DefaultCatalog() ([]domain.Product, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalog))
}

// LoadCatalogFile reads a catalog YAML file, falling back to the bundled
// catalog when path is empty.
func LoadCatalogFile(path string) ([]domain.Product, error) {
	if path == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

func LoadCatalog(r io.Reader) ([]domain.Product, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[int64]bool, len(file.Products))
	products := make([]domain.Product, 0, len(file.Products))
	for _, p := range file.Products {
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate product id %d", ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = true

		if p.Name == "" {
			return nil, fmt.Errorf("%w: product %d has no name", ErrInvalidCatalog, p.ID)
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d price %q: %v", ErrInvalidCatalog, p.ID, p.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("%w: product %d has negative price", ErrInvalidCatalog, p.ID)
		}

		products = append(products, domain.Product{
			ID:       p.ID,
			Name:     p.Name,
			Price:    price,
			Category: p.Category,
			Image:    p.Image,
		})
	}
	return products, nil
}
