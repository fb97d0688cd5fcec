package memory

import "github.com/gobeaver/fskit"

func init() {
	fskit.RegisterDriver("memory", func(cfg *fskit.Config) (fskit.Driver, error) {
		return New(), nil
	})
}
