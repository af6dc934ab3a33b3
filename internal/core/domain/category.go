package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rl1809/catalog/internal/cachemanager"
)

// Category is a shared, immutable category label. Two categories with the
// same normalized name are always the same pointer, so *Category is safe to
// use as a map key.
type Category struct {
	name string
}

var categories = cachemanager.NewInMemoryCacheManager[string, *Category]("category")

// CategoryOf returns the shared Category for raw, normalized to a leading
// capital followed by lower case.
func CategoryOf(raw string) (*Category, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: category name can't be blank", ErrInvalidArgument)
	}

	normalized := normalizeCategory(trimmed)
	c, _ := categories.GetOrCreate(normalized, func() *Category {
		return &Category{name: normalized}
	})
	return c, nil
}

// MustCategory is CategoryOf for fixed names known to be valid.
func MustCategory(raw string) *Category {
	c, err := CategoryOf(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// ResetCategories drops every cached category. Handles obtained earlier stay
// valid but are no longer shared with later lookups; intended for tests.
func ResetCategories() {
	categories.Flush()
}

func (c *Category) Name() string {
	return c.name
}

func (c *Category) String() string {
	return c.name
}

func normalizeCategory(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
