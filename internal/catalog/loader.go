package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fixtureFile is the shape of a single seed YAML file. Every field is
// optional so fixtures can be split across files (users.yaml, courses.yaml,
// submissions.yaml) or kept in one.
type fixtureFile struct {
	CurrentUserID string       `yaml:"current_user_id"`
	Users         []User       `yaml:"users"`
	Courses       []Course     `yaml:"courses"`
	Submissions   []Submission `yaml:"submissions"`
}

// LoadSeed reads seed fixtures from every YAML file under dir and merges
// them into a single Seed. Files that do not parse are logged and skipped.
func LoadSeed(dir string) (Seed, error) {
	var seed Seed

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var f fixtureFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			slog.Warn("skipping invalid seed YAML", "path", path, "error", err)
			return nil
		}

		if f.CurrentUserID != "" {
			seed.CurrentUserID = f.CurrentUserID
		}
		seed.Users = append(seed.Users, f.Users...)
		seed.Courses = append(seed.Courses, f.Courses...)
		seed.Submissions = append(seed.Submissions, f.Submissions...)
		return nil
	})
	if err != nil {
		return Seed{}, fmt.Errorf("loading seed fixtures: %w", err)
	}

	if len(seed.Users) == 0 && len(seed.Courses) == 0 {
		return Seed{}, fmt.Errorf("no seed fixtures found in %s", dir)
	}

	for _, problem := range seed.Validate() {
		slog.Warn("seed data problem", "error", problem)
	}

	slog.Info("seed fixtures loaded",
		"users", len(seed.Users),
		"courses", len(seed.Courses),
		"submissions", len(seed.Submissions),
	)
	return seed, nil
}
