//go:build tools

// Package lobby tracks tool dependencies such as mockgen.
package lobby

import (
	_ "go.uber.org/mock/mockgen"
)
