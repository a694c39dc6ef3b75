package handler

import (
	"go.uber.org/zap"

	"github.com/ariane/internal/archive"
	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/booklet"
	"github.com/ariane/internal/graph"
	"github.com/ariane/internal/metrics"
	"github.com/ariane/internal/repository"
	"github.com/ariane/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	users    *service.UserService
	stories  *service.StoryService
	pages    *service.PageService
	choices  *service.ChoiceService
	graphs   *graph.Service
	booklets *booklet.Service
	archives *archive.Service
	assets   assets.Store
	log      *zap.Logger
}

// Options 收集构造 API 时需要的外部依赖。
type Options struct {
	Store          *repository.Store
	Assets         assets.Store
	Tokens         service.TokenIssuer
	Metrics        metrics.Recorder
	AuthorFallback string
	Logger         *zap.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(opts Options) *API {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rec := opts.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}

	graphs := graph.NewService(opts.Store, log)
	renderer := booklet.NewRenderer(opts.Assets, rec, log)

	return &API{
		users:    service.NewUserService(opts.Store.Users, opts.Tokens, log),
		stories:  service.NewStoryService(opts.Store, opts.Assets, log),
		pages:    service.NewPageService(opts.Store, opts.Assets, log),
		choices:  service.NewChoiceService(opts.Store),
		graphs:   graphs,
		booklets: booklet.NewService(graphs, opts.Store.Users, renderer, opts.AuthorFallback, rec, log),
		archives: archive.NewService(graphs, opts.Store, opts.Assets, rec, log),
		assets:   opts.Assets,
		log:      log.Named("handler"),
	}
}
