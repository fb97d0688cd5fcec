package local

import "github.com/gobeaver/fskit"

func init() {
	fskit.RegisterDriver("local", func(cfg *fskit.Config) (fskit.Driver, error) {
		return New(cfg.LocalRoot)
	})
}
