//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"social-campaign-backend/internal/config"

	"github.com/google/wire"
)

// InitializeContainer builds a fully wired container. The returned cleanup
// flushes traces and logs.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
