package catalog

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Question is one debate prompt from the static catalog.
type Question struct {
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Prompt   string `json:"prompt"`
}

type fileCategory struct {
	Name      string `yaml:"name"`
	Questions []struct {
		Title  string `yaml:"title"`
		Prompt string `yaml:"prompt"`
	} `yaml:"questions"`
}

type catalogFile struct {
	Categories []fileCategory `yaml:"categories"`
}

// Catalog is the immutable set of debate prompts, loaded once at startup and
// injected wherever prompts are needed.
type Catalog struct {
	categories []string
	bySlug     map[string]Question
	byCategory map[string][]Question
}

// Load reads the catalog YAML from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse question catalog: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("question catalog contains no categories")
	}

	c := &Catalog{
		bySlug:     make(map[string]Question),
		byCategory: make(map[string][]Question),
	}
	for _, cat := range file.Categories {
		if len(cat.Questions) == 0 {
			log.Warn().Str("category", cat.Name).Msg("Catalog category has no questions, skipping")
			continue
		}
		c.categories = append(c.categories, cat.Name)
		for _, q := range cat.Questions {
			question := Question{
				Slug:     Slugify(cat.Name) + "--" + Slugify(q.Title),
				Category: cat.Name,
				Title:    q.Title,
				Prompt:   q.Prompt,
			}
			if _, dup := c.bySlug[question.Slug]; dup {
				return nil, fmt.Errorf("duplicate question slug %q in catalog", question.Slug)
			}
			c.bySlug[question.Slug] = question
			c.byCategory[cat.Name] = append(c.byCategory[cat.Name], question)
		}
	}
	if len(c.bySlug) == 0 {
		return nil, fmt.Errorf("question catalog contains no questions")
	}
	log.Info().Int("categories", len(c.categories)).Int("questions", len(c.bySlug)).Msg("Question catalog loaded")
	return c, nil
}

// Categories returns the category names in catalog order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// CategoryCount is the size of the full category set, used by the
// category-coverage achievement.
func (c *Catalog) CategoryCount() int {
	return len(c.categories)
}

// Question looks up a prompt by its slug.
func (c *Catalog) Question(slug string) (Question, bool) {
	q, ok := c.bySlug[slug]
	return q, ok
}

// Random picks a random question from category (any category when empty) that
// is not in the seen set. When every candidate has been seen, the full set is
// used again rather than failing.
func (c *Catalog) Random(category string, seen map[string]bool) (Question, error) {
	var pool []Question
	if category == "" {
		for _, name := range c.categories {
			pool = append(pool, c.byCategory[name]...)
		}
	} else {
		var ok bool
		pool, ok = c.byCategory[category]
		if !ok {
			return Question{}, fmt.Errorf("unknown question category %q", category)
		}
	}

	var fresh []Question
	for _, q := range pool {
		if !seen[q.Slug] {
			fresh = append(fresh, q)
		}
	}
	if len(fresh) == 0 {
		fresh = pool
	}
	if len(fresh) == 0 {
		return Question{}, fmt.Errorf("no questions available in category %q", category)
	}
	return fresh[rand.Intn(len(fresh))], nil
}

// Slugify normalizes a title into a stable identifier: lowercase, runs of
// non-alphanumerics collapsed into single dashes.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
