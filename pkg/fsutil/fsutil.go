// Package fsutil provides filesystem utilities for the shell.
package fsutil

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"src.slush.sh/pkg/env"
)

// GetHome finds the home directory of a specified user. When given an empty
// string, it finds the home directory of the current user.
func GetHome(uname string) (string, error) {
	if uname == "" {
		// Use $HOME as override if we are looking for the home of the current
		// user.
		if home := os.Getenv(env.HOME); home != "" {
			return home, nil
		}
	}

	var u *user.User
	var err error
	if uname == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(uname)
	}
	if err != nil {
		return "", fmt.Errorf("can't resolve ~%s: %w", uname, err)
	}
	return strings.TrimSuffix(u.HomeDir, "/"), nil
}

// Chdir changes the working directory and keeps $PWD in sync with it. $PWD
// is updated logically: a relative path is joined onto the old $PWD and the
// result is cleaned, so that "a/../b" does not resolve symlinks in "a".
func Chdir(path string) error {
	if err := os.Chdir(path); err != nil {
		return err
	}
	pwd := path
	if !filepath.IsAbs(path) {
		base := os.Getenv(env.PWD)
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			return os.Setenv(env.PWD, wd)
		}
		pwd = filepath.Join(base, path)
	}
	return os.Setenv(env.PWD, filepath.Clean(pwd))
}
