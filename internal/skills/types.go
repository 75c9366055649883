// Package skills implements the Markdown skill library: discovery with
// mtime-based hot-reload, explicit-mention/keyword selection with
// dependency resolution, and usage telemetry.
package skills

// Skill is one discovered SKILL.md: its frontmatter metadata plus body.
type Skill struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Requires    []string `yaml:"requires"`
	Pipeline    []string `yaml:"pipeline"`
	Tool        string   `yaml:"tool"`

	// Content is the Markdown body after the frontmatter block.
	Content string `yaml:"-"`
	// Path is the SKILL.md file this was parsed from.
	Path string `yaml:"-"`
}

// Selection is one entry in select_for_message's result: a skill, its
// score, and why it was chosen.
type Selection struct {
	Skill  *Skill
	Score  float64
	Reason string
}

const (
	reasonExplicitMention = "explicit-mention"
	reasonKeywordMatch    = "keyword-match"
	reasonRequires        = "requires"
	reasonPipeline        = "pipeline"
)
