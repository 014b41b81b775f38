package catalog

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed — начальные запросы и объявления, которыми открывается каждая сессия.
type Seed struct {
	Requests []BookRequest `yaml:"requests"`
	Listings []BookListing `yaml:"listings"`
}

// ParseSeed разбирает YAML с начальными данными.
func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("ошибка разбора seed: %w", err)
	}
	return s, nil
}

// DefaultSeed возвращает встроенные начальные данные.
func DefaultSeed() (Seed, error) {
	return ParseSeed(seedYAML)
}

// At возвращает копию seed, где у всех запросов время создания = now.
func (s Seed) At(now time.Time) Seed {
	out := Seed{
		Requests: make([]BookRequest, len(s.Requests)),
		Listings: make([]BookListing, len(s.Listings)),
	}
	copy(out.Requests, s.Requests)
	copy(out.Listings, s.Listings)
	for i := range out.Requests {
		out.Requests[i].CreatedAt = now
	}
	return out
}
