// Package seed loads the optional TOML file providing the initial
// notification policy used before any snapshot has been persisted.
package seed

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bnema/dipwatch/internal/domain"
)

type fileSchema struct {
	Notify map[string]map[string]bool `toml:"notify"`
}

// Load reads a policy seed file, e.g.
//
//	[notify.turn]
//	"alice@example.com" = true
//
//	[notify.warning]
//	"alice@example.com" = true
//
// An empty path or a missing file yields the default policy.
func Load(path string) (domain.NotifyPolicy, error) {
	if path == "" {
		return domain.DefaultNotifyPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultNotifyPolicy(), nil
		}
		return nil, fmt.Errorf("read policy seed file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode policy seed file: %w", err)
	}

	policy := domain.NotifyPolicy(file.Notify)
	if policy == nil {
		policy = domain.NotifyPolicy{}
	}
	policy.EnsureDefaults()

	return policy, nil
}
