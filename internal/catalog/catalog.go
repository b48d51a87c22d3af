// Package catalog holds the plans users can buy.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPlan is returned for a code that is not in the catalog
var ErrUnknownPlan = errors.New("unknown plan")

// Product describes one purchasable plan
type Product struct {
	Code           string  `yaml:"code" json:"code"`
	Name           string  `yaml:"name" json:"name"`
	Price          float64 `yaml:"price" json:"price"`
	DailyReturn    float64 `yaml:"daily_return" json:"dailyReturn"`
	DurationDays   int     `yaml:"duration_days" json:"durationDays"`
	BonusPerDay    float64 `yaml:"bonus_per_day" json:"bonusPerDay"`
	TotalBonusDays int     `yaml:"total_bonus_days" json:"totalBonusDays"`
	Active         bool    `yaml:"active" json:"active"`
}

type file struct {
	Plans []Product `yaml:"plans"`
}

// Catalog is an immutable set of products keyed by code
type Catalog struct {
	products map[string]Product
	order    []string
}

// New validates products and builds a catalog
func New(products []Product) (*Catalog, error) {
	c := &Catalog{products: make(map[string]Product, len(products))}
	for _, p := range products {
		if p.Code == "" {
			return nil, fmt.Errorf("plan %q: code is required", p.Name)
		}
		if _, dup := c.products[p.Code]; dup {
			return nil, fmt.Errorf("plan %s: duplicate code", p.Code)
		}
		if p.Price <= 0 || p.DailyReturn <= 0 || p.DurationDays <= 0 {
			return nil, fmt.Errorf("plan %s: price, daily_return and duration_days must be positive", p.Code)
		}
		if p.BonusPerDay < 0 || p.TotalBonusDays < 0 || p.TotalBonusDays > p.DurationDays {
			return nil, fmt.Errorf("plan %s: invalid bonus settings", p.Code)
		}
		c.products[p.Code] = p
		c.order = append(c.order, p.Code)
	}
	sort.SliceStable(c.order, func(i, j int) bool {
		return c.products[c.order[i]].Price < c.products[c.order[j]].Price
	})
	return c, nil
}

// LoadFromPath reads a YAML catalog
func LoadFromPath(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse plans file: %w", err)
	}
	return New(f.Plans)
}

// LoadOrDefault reads the catalog at path, falling back to the built-in plans when the file does not exist
func LoadOrDefault(path string) (*Catalog, error) {
	c, err := LoadFromPath(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(DefaultProducts())
	}
	return c, err
}

// DefaultProducts is the built-in catalog
func DefaultProducts() []Product {
	return []Product{
		{Code: "starter", Name: "Starter", Price: 500, DailyReturn: 25, DurationDays: 30, BonusPerDay: 5, TotalBonusDays: 7, Active: true},
		{Code: "silver", Name: "Silver", Price: 2000, DailyReturn: 110, DurationDays: 30, BonusPerDay: 10, TotalBonusDays: 10, Active: true},
		{Code: "gold", Name: "Gold", Price: 10000, DailyReturn: 600, DurationDays: 45, BonusPerDay: 50, TotalBonusDays: 15, Active: true},
	}
}

// Get returns the product with the given code
func (c *Catalog) Get(code string) (Product, error) {
	p, ok := c.products[code]
	if !ok {
		return Product{}, ErrUnknownPlan
	}
	return p, nil
}

// Active lists the products that can be bought, cheapest first
func (c *Catalog) Active() []Product {
	out := make([]Product, 0, len(c.order))
	for _, code := range c.order {
		if p := c.products[code]; p.Active {
			out = append(out, p)
		}
	}
	return out
}
