package fsutil

import (
	"os"
	"os/exec"
	"strings"
)

// DontSearch determines whether the path to an external command should be
// taken literally and not searched.
func DontSearch(exe string) bool {
	return strings.ContainsRune(exe, '/')
}

// IsExecutable returns whether the FileInfo refers to an executable file.
func IsExecutable(stat os.FileInfo) bool {
	return !stat.IsDir() && stat.Mode()&0o111 != 0
}

// SearchExecutable resolves the name of an external command to a path. Names
// containing a slash are only checked; other names are looked up in $PATH.
func SearchExecutable(name string) (string, error) {
	if DontSearch(name) {
		stat, err := os.Stat(name)
		if err != nil {
			return "", err
		}
		if !IsExecutable(stat) {
			return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
		}
		return name, nil
	}
	return exec.LookPath(name)
}
