// Package skills models skill bundles: a SKILL.md plus its supporting
// scripts, templates, docs and examples, loaded from disk so packaging
// adapters can rewrite them into other agentic CLI layouts.
package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"
)

// Bundle is one skill directory loaded into memory. The file maps are
// keyed by slash-separated paths relative to their subdirectory.
type Bundle struct {
	Name      string
	Dir       string
	SkillMD   string
	Scripts   map[string]string
	Templates map[string]string
	Docs      map[string]string
	Examples  map[string]string
}

// Load reads a skill directory. SKILL.md is required; the supporting
// subdirectories are optional. Binary files are skipped since every
// transform downstream works on text.
func Load(dir string) (*Bundle, error) {
	data, err := os.ReadFile(filepath.Join(dir, "SKILL.md"))
	if err != nil {
		return nil, fmt.Errorf("not a skill bundle: %w", err)
	}

	b := &Bundle{
		Name:    filepath.Base(filepath.Clean(dir)),
		Dir:     dir,
		SkillMD: string(data),
	}
	for _, sub := range []struct {
		name string
		dest *map[string]string
	}{
		{"scripts", &b.Scripts},
		{"templates", &b.Templates},
		{"docs", &b.Docs},
		{"examples", &b.Examples},
	} {
		files, err := readTree(filepath.Join(dir, sub.name))
		if err != nil {
			return nil, fmt.Errorf("reading %s/%s: %w", b.Name, sub.name, err)
		}
		*sub.dest = files
	}
	return b, nil
}

// Discover lists the skill directories under root: every directory that
// holds a SKILL.md, sorted by name.
func Discover(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "SKILL.md")); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// SharedModules loads the shared script modules that live next to the
// skill directories: lsp-engine Python sources and the code_analyzer
// sources with their rule data files. Targets that install skills as
// self-contained directories bundle these under scripts/shared/. A
// missing shared directory yields an empty map.
func SharedModules(b *Bundle) map[string]string {
	root := filepath.Join(filepath.Dir(b.Dir), "shared")
	modules := map[string]string{}
	collectShared(root, "lsp-engine", []string{".py"}, modules)
	collectShared(root, "code_analyzer", []string{".py", ".yml", ".xml"}, modules)
	return modules
}

func collectShared(root, sub string, exts []string, dest map[string]string) {
	dir := filepath.Join(root, sub)
	files, err := readTree(dir)
	if err != nil {
		return
	}
	for rel, content := range files {
		ext := filepath.Ext(rel)
		for _, want := range exts {
			if ext == want {
				dest[sub+"/"+rel] = content
				break
			}
		}
	}
}

// readTree reads every UTF-8 file under dir into a map keyed by relative
// slash path. A missing directory is an empty result, not an error.
func readTree(dir string) (map[string]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	files := map[string]string{}
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
