package communities

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadSeedDir reads community definitions from a directory of YAML/JSON
// files. Unknown extensions are skipped.
func LoadSeedDir(dir string) ([]Community, error) {
	if dir == "" {
		return nil, nil
	}
	out := []Community{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var c Community
		if ext == ".json" {
			if err := json.Unmarshal(b, &c); err != nil {
				return err
			}
		} else {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return err
			}
		}
		if c.TenantID == "" {
			// skip files that are not community definitions
			return nil
		}
		if c.JiveCommunity == "" {
			c.JiveCommunity = ParseJiveCommunity(c.JiveURL)
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// Seed persists every loaded definition, logging rather than failing on
// individual write errors so a bad file cannot block startup.
func Seed(ctx context.Context, store Store, list []Community, log *zap.SugaredLogger) {
	for _, c := range list {
		if _, err := store.Save(ctx, c); err != nil {
			log.Warnw("community seed", "tenant", c.TenantID, "err", err)
		}
	}
}
