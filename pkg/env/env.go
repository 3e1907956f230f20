// Package env keeps names of environment variables with special significance to
// slush.
package env

// Environment variables with special significance to slush.
const (
	HOME            = "HOME"
	PATH            = "PATH"
	PWD             = "PWD"
	SHLVL           = "SHLVL"
	XDG_CONFIG_HOME = "XDG_CONFIG_HOME"
)
