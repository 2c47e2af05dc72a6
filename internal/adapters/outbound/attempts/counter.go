// Package attempts tracks repeated validation attempts per artifact, so
// iterative fix loops give up after a bounded number of tries.
package attempts

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const attemptsFile = ".forcekit/attempts.json"

// Counter is a file-backed implementation of domain.AttemptCounter. The
// read-modify-write is not lock-protected; the hook runner invokes at
// most one validation per artifact at a time.
type Counter struct {
	projectPath string
}

func New(projectPath string) *Counter {
	return &Counter{projectPath: projectPath}
}

func (c *Counter) Get(key string) (int, error) {
	counts, err := c.load()
	if err != nil {
		return 0, err
	}
	return counts[key], nil
}

func (c *Counter) Increment(key string) (int, error) {
	counts, err := c.load()
	if err != nil {
		return 0, err
	}
	counts[key]++
	if err := c.save(counts); err != nil {
		return 0, err
	}
	return counts[key], nil
}

func (c *Counter) Reset(key string) error {
	counts, err := c.load()
	if err != nil {
		return err
	}
	if _, ok := counts[key]; !ok {
		return nil
	}
	delete(counts, key)
	return c.save(counts)
}

func (c *Counter) load() (map[string]int, error) {
	data, err := os.ReadFile(filepath.Join(c.projectPath, attemptsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]int{}, nil
		}
		return nil, err
	}

	counts := map[string]int{}
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *Counter) save(counts map[string]int) error {
	fp := filepath.Join(c.projectPath, attemptsFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}
