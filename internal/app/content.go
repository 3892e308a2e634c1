package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-cms/internal/content/listing"
	"github.com/odyssey-erp/odyssey-cms/internal/content/posts"
	"github.com/odyssey-erp/odyssey-cms/internal/content/projects"
	"github.com/odyssey-erp/odyssey-cms/internal/content/properties"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/backend"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-cms/jobs"
)

// Content bundles the services of every admin table.
type Content struct {
	Properties *properties.Service
	Posts      *listing.Service[posts.Post]
	Projects   *listing.Service[projects.Project]
}

// NewContent picks the row source for the tables: the REST backend when one
// is configured, the local database otherwise.
func NewContent(cfg *Config, pool *pgxpool.Pool, listCache *cache.ListCache, warmer listing.Warmer, logger *slog.Logger) *Content {
	if cfg.UsesBackend() {
		client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
		logger.Info("tables served by rest backend", slog.String("backend_url", cfg.BackendURL))
		return &Content{
			Properties: properties.NewService(properties.NewRemote(client), listCache, warmer, logger),
			Posts:      posts.NewService(posts.NewRemote(client), listCache, warmer, logger),
			Projects:   projects.NewService(projects.NewRemote(client), listCache, warmer, logger),
		}
	}
	return &Content{
		Properties: properties.NewService(properties.NewRepository(pool), listCache, warmer, logger),
		Posts:      posts.NewService(posts.NewRepository(pool), listCache, warmer, logger),
		Projects:   projects.NewService(projects.NewRepository(pool), listCache, warmer, logger),
	}
}

// Warmers maps table names to the warmup entry point of their service.
func (c *Content) Warmers() map[string]jobs.TableWarmer {
	return map[string]jobs.TableWarmer{
		c.Properties.Table(): c.Properties,
		c.Posts.Table():      c.Posts,
		c.Projects.Table():   c.Projects,
	}
}
