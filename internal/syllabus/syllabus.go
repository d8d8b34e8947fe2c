// Package syllabus loads the subject/topic catalog that seeds prompt
// content and UI choices. The catalog is loaded once at startup and is
// read-only afterwards.
package syllabus

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

// TopicInfo holds the prompt material for one topic.
type TopicInfo struct {
	Description   string `yaml:"description" json:"description"`
	PastQuestions string `yaml:"past_questions" json:"past_questions"`
}

// Catalog maps subject names to topic names to topic metadata.
type Catalog struct {
	subjects map[string]map[string]TopicInfo
}

type catalogFile struct {
	Subjects map[string]map[string]TopicInfo `yaml:"subjects"`
}

// Load builds the catalog from the embedded default files plus any extra
// YAML files. A subject appearing in a later file replaces the earlier
// definition wholesale.
func Load(paths ...string) (*Catalog, error) {
	c := &Catalog{subjects: make(map[string]map[string]TopicInfo)}

	entries, err := catalogFS.ReadDir("catalog")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	for _, e := range entries {
		data, err := catalogFS.ReadFile("catalog/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded catalog file %s: %w", e.Name(), err)
		}
		if err := c.merge(data); err != nil {
			return nil, fmt.Errorf("parse embedded catalog file %s: %w", e.Name(), err)
		}
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read syllabus %s: %w", path, err)
		}
		if err := c.merge(data); err != nil {
			return nil, fmt.Errorf("parse syllabus %s: %w", path, err)
		}
		slog.Info("loaded syllabus file", "path", path)
	}

	if len(c.subjects) == 0 {
		return nil, fmt.Errorf("syllabus catalog is empty")
	}
	return c, nil
}

func (c *Catalog) merge(data []byte) error {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for subject, topics := range f.Subjects {
		if len(topics) == 0 {
			continue
		}
		c.subjects[subject] = topics
	}
	return nil
}

// Subjects returns all subject names, sorted.
func (c *Catalog) Subjects() []string {
	names := lo.Keys(c.subjects)
	sort.Strings(names)
	return names
}

// HasSubject reports whether the subject exists in the catalog.
func (c *Catalog) HasSubject(subject string) bool {
	_, ok := c.subjects[subject]
	return ok
}

// Topics returns all topic names for a subject, sorted. Unknown subjects
// yield an empty list.
func (c *Catalog) Topics(subject string) []string {
	names := lo.Keys(c.subjects[subject])
	sort.Strings(names)
	return names
}

// TopicInfo returns the metadata for one topic of a subject.
func (c *Catalog) TopicInfo(subject, topic string) (TopicInfo, bool) {
	info, ok := c.subjects[subject][topic]
	return info, ok
}

// SearchTopics returns the subject's topics fuzzy-matching query, best
// match first. An empty query returns all topics sorted.
func (c *Catalog) SearchTopics(subject, query string) []string {
	topics := c.Topics(subject)
	if query == "" {
		return topics
	}
	ranks := fuzzy.RankFindNormalizedFold(query, topics)
	sort.Sort(ranks)
	return lo.Map(ranks, func(r fuzzy.Rank, _ int) string { return r.Target })
}
