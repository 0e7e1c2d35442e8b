//go:build tools

package tools

// Pins the swag CLI used to regenerate docs/swagger.json.
import (
	_ "github.com/swaggo/swag/cmd/swag"
)
