package nlp

import (
	"regexp"
	"strings"
)

var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// NormalizeText lowercases s and reduces every run of punctuation or
// whitespace to a single space, so "CI/CD" and "ci cd" compare equal.
func NormalizeText(s string) string {
	s = reNonWord.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// aliases maps a normalized spelling to the canonical key used for comparison.
var aliases = map[string]string{
	"postgres":   "postgresql",
	"k8s":        "kubernetes",
	"golang":     "go",
	"js":         "javascript",
	"ts":         "typescript",
	"rest":       "rest api",
	"ci cd":      "cicd",
	"react js":   "react",
	"reactjs":    "react",
	"node":       "node js",
	"nodejs":     "node js",
	"ml":         "machine learning",
	"aws cloud":  "aws",
	"gcp":        "google cloud",
	"excel vba":  "vba",
	"powerpoint": "power point",
}

// SkillKey returns the comparison key of a skill: normalized and alias-resolved.
// Two skills with the same key are considered the same skill.
func SkillKey(skill string) string {
	base := NormalizeText(skill)
	if base == "" {
		return ""
	}
	if canon, ok := aliases[base]; ok {
		return canon
	}
	return base
}

// SameSkill reports whether a and b name the same skill.
func SameSkill(a, b string) bool {
	ka := SkillKey(a)
	return ka != "" && ka == SkillKey(b)
}

// DedupeSkills drops blanks and later duplicates (by SkillKey), keeping the
// first spelling that was seen, trimmed.
func DedupeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		k := SkillKey(s)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
