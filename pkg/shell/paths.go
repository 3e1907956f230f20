package shell

import (
	"os"
	"path/filepath"

	"src.slush.sh/pkg/env"
	"src.slush.sh/pkg/fsutil"
)

// RCPath returns the path of rc.yaml, read in interactive mode. It is
// $XDG_CONFIG_HOME/slush/rc.yaml, falling back to ~/.config/slush/rc.yaml.
func RCPath() (string, error) {
	if dir := os.Getenv(env.XDG_CONFIG_HOME); dir != "" {
		return filepath.Join(dir, "slush", "rc.yaml"), nil
	}
	home, err := fsutil.GetHome("")
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "slush", "rc.yaml"), nil
}
