// Package context assembles the per-turn message list the provider sees:
// a byte-identical stable system prompt followed by everything that
// changes turn to turn (skills, memory, recent history, the new message).
package context

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// WorkspaceFiles are the Markdown documents loaded once at startup and
// folded into the stable system prompt. Their content does not change for
// the life of a process, which is what lets the prefix stay byte-identical
// across turns.
type WorkspaceFiles struct {
	Agents   string
	Soul     string
	Identity string
	User     string
	Tools    string
}

// Identity is the agent's self-description, parsed from IDENTITY.md.
type Identity struct {
	Name  string
	Vibe  string
	Emoji string
}

// UserProfile is the operator's profile, parsed from USER.md.
type UserProfile struct {
	Name             string
	PreferredAddress string
	Timezone         string
}

// LoaderConfig names the workspace root and the filenames within it.
type LoaderConfig struct {
	Root         string
	AgentsFile   string
	SoulFile     string
	IdentityFile string
	UserFile     string
	ToolsFile    string
}

func (c LoaderConfig) withDefaults() LoaderConfig {
	if c.Root == "" {
		c.Root = "."
	}
	if c.AgentsFile == "" {
		c.AgentsFile = "AGENTS.md"
	}
	if c.SoulFile == "" {
		c.SoulFile = "SOUL.md"
	}
	if c.IdentityFile == "" {
		c.IdentityFile = "IDENTITY.md"
	}
	if c.UserFile == "" {
		c.UserFile = "USER.md"
	}
	if c.ToolsFile == "" {
		c.ToolsFile = "TOOLS.md"
	}
	return c
}

// LoadWorkspace reads the workspace's Markdown files, tolerating any of
// them being absent.
func LoadWorkspace(cfg LoaderConfig) (WorkspaceFiles, error) {
	cfg = cfg.withDefaults()
	var files WorkspaceFiles
	var err error
	if files.Agents, err = readOptional(filepath.Join(cfg.Root, cfg.AgentsFile)); err != nil {
		return files, err
	}
	if files.Soul, err = readOptional(filepath.Join(cfg.Root, cfg.SoulFile)); err != nil {
		return files, err
	}
	if files.Identity, err = readOptional(filepath.Join(cfg.Root, cfg.IdentityFile)); err != nil {
		return files, err
	}
	if files.User, err = readOptional(filepath.Join(cfg.Root, cfg.UserFile)); err != nil {
		return files, err
	}
	if files.Tools, err = readOptional(filepath.Join(cfg.Root, cfg.ToolsFile)); err != nil {
		return files, err
	}
	return files, nil
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// ParseIdentity reads IDENTITY.md's "- Key: Value" lines.
func ParseIdentity(content string) Identity {
	var id Identity
	forEachKeyValue(content, func(key, val string) {
		switch strings.ToLower(key) {
		case "name":
			id.Name = val
		case "vibe":
			id.Vibe = val
		case "emoji":
			id.Emoji = val
		}
	})
	return id
}

// ParseUserProfile reads USER.md's "- Key: Value" lines.
func ParseUserProfile(content string) UserProfile {
	var u UserProfile
	forEachKeyValue(content, func(key, val string) {
		switch strings.ToLower(key) {
		case "name":
			u.Name = val
		case "preferred address":
			u.PreferredAddress = val
		case "timezone", "timezone (optional)":
			u.Timezone = val
		}
	})
	return u
}

func forEachKeyValue(content string, fn func(key, val string)) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ":")
		if idx == -1 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if key != "" {
			fn(key, val)
		}
	}
}
