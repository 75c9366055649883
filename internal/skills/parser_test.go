package skills

import "testing"

func TestParse_ValidSkill(t *testing.T) {
	data := []byte("---\nname: weather\ndescription: looks up current weather\ntags: [\"weather\", \"forecast\"]\n---\nBody content here.\n")
	s, err := Parse(data, "skills/weather/SKILL.md")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Name != "weather" || s.Description != "looks up current weather" {
		t.Errorf("Parse() = %+v", s)
	}
	if s.Content != "Body content here." {
		t.Errorf("Content = %q", s.Content)
	}
}

func TestParse_MissingName(t *testing.T) {
	data := []byte("---\ndescription: no name here\n---\nbody\n")
	if _, err := Parse(data, "x"); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestParse_MissingFrontmatterDelimiter(t *testing.T) {
	data := []byte("name: weather\ndescription: x\n")
	if _, err := Parse(data, "x"); err == nil {
		t.Error("expected error for missing frontmatter delimiters")
	}
}

func TestParse_UnclosedFrontmatter(t *testing.T) {
	data := []byte("---\nname: weather\ndescription: x\n")
	if _, err := Parse(data, "x"); err == nil {
		t.Error("expected error for unclosed frontmatter")
	}
}
