package main

import (
	"errors"

	"picoagent/internal/config"
	"picoagent/internal/providers"
)

// Exit codes per the CLI's external interface contract: 0 success, 1 user
// error, 2 config error, 3 provider unreachable.
const (
	exitSuccess       = 0
	exitUserError     = 1
	exitConfigError   = 2
	exitProviderError = 3
)

func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return exitConfigError
	}
	var transportErr *providers.ProviderTransportError
	if errors.As(err, &transportErr) {
		return exitProviderError
	}
	return exitUserError
}
