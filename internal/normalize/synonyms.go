package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table maps a normalized word or phrase to the phrases it expands into.
type Table map[string][]string

// Lookup returns the expansions for a normalized phrase.
func (t Table) Lookup(phrase string) []string {
	if t == nil {
		return nil
	}
	return t[phrase]
}

// Merge returns a new table holding t overlaid with other. Keys are normalized with Field;
// entries from other replace those of t.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		key := Field(k)
		if key == "" {
			continue
		}
		exps := make([]string, 0, len(v))
		for _, e := range v {
			if n := Field(e); n != "" && n != key {
				exps = append(exps, n)
			}
		}
		out[key] = exps
	}
	return out
}

// DefaultSynonyms is the built-in abbreviation and casual-phrase table.
func DefaultSynonyms() Table {
	return Table{
		// abbreviations
		"swe":    {"software engineer"},
		"sde":    {"software development engineer", "software engineer"},
		"sre":    {"site reliability engineer"},
		"pm":     {"product manager", "project manager"},
		"tpm":    {"technical program manager"},
		"em":     {"engineering manager"},
		"ml":     {"machine learning"},
		"ai":     {"artificial intelligence"},
		"ds":     {"data scientist"},
		"de":     {"data engineer"},
		"qa":     {"quality assurance", "tester"},
		"ux":     {"user experience", "designer"},
		"ui":     {"user interface", "designer"},
		"hr":     {"human resources"},
		"js":     {"javascript"},
		"ts":     {"typescript"},
		"k8s":    {"kubernetes"},
		"golang": {"go"},
		"dev":    {"developer"},
		"eng":    {"engineer"},
		"mgr":    {"manager"},
		"sr":     {"senior"},
		"jr":     {"junior"},
		"nyc":    {"new york"},
		"sf":     {"san francisco"},
		"la":     {"los angeles"},
		"uk":     {"united kingdom"},
		"us":     {"united states"},
		"usa":    {"united states"},

		// casual phrases to canonical terms
		"coding":         {"developer", "programmer"},
		"coder":          {"developer", "programmer"},
		"programmer":     {"developer"},
		"programming":    {"developer", "software"},
		"coding job":     {"developer", "software engineer"},
		"tech job":       {"software engineer", "developer"},
		"front end":      {"frontend"},
		"back end":       {"backend"},
		"full stack":     {"fullstack"},
		"wfh":            {"remote"},
		"work from home": {"remote"},
		"entry level":    {"junior"},
		"new grad":       {"junior", "graduate"},
		"intern":         {"internship"},
		"internship":     {"intern"},
		"part time":      {"part-time"},
		"full time":      {"full-time"},
	}
}

type synonymFile struct {
	Synonyms Table `yaml:"synonyms"`
}

// LoadSynonyms reads a YAML synonym file and merges it over base.
//
//	synonyms:
//	  swe: [software engineer]
//	  "work from home": [remote]
func LoadSynonyms(path string, base Table) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms file %s: %w", path, err)
	}
	var f synonymFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse synonyms file %s: %w", path, err)
	}
	return base.Merge(f.Synonyms), nil
}
