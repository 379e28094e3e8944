package models

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/lacantine/menu-catalog/i18n"
)

// Category represents a menu section. Categories form a tree through
// ParentID; Position orders siblings.
type Category struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	NameI18n  i18n.Text `gorm:"type:text"`
	Slug      string    `gorm:"uniqueIndex;size:255;not null"`
	IsActive  bool      `gorm:"not null"`
	ParentID  *uint     `gorm:"index"`
	Position  int       `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Category) TableName() string {
	return "categories"
}

// LocalizedName renders the category name for locale.
func (c *Category) LocalizedName(locale string) string {
	return i18n.Resolve(c.NameI18n.Or(c.Name), locale)
}

// CategoryNode is a category with its children, for tree rendering.
type CategoryNode struct {
	Category
	Children []*CategoryNode
}

// BuildTree arranges categories into a forest ordered by Position then
// Name. Categories whose parent is missing from the input become roots.
func BuildTree(categories []Category) []*CategoryNode {
	nodes := make(map[uint]*CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &CategoryNode{Category: c}
	}

	var roots []*CategoryNode
	for _, c := range categories {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*CategoryNode) {
	slices.SortStableFunc(nodes, func(a, b *CategoryNode) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

var accents = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a", "ç", "c", "é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i", "ô", "o", "ö", "o", "ù", "u", "û", "u", "ü", "u",
)

// Slugify derives a URL slug from a name.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range accents.Replace(strings.ToLower(strings.TrimSpace(name))) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
