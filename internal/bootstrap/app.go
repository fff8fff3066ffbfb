package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/candidates"
	"interview-backend/internal/genai"
	"interview-backend/internal/interview"
	"interview-backend/internal/resume"
	"interview-backend/internal/session"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/server"
	"interview-backend/internal/shared/storage/object"
	localstore "interview-backend/internal/shared/storage/object/local"
	s3store "interview-backend/internal/shared/storage/object/s3"
)

// App holds the wired dependencies for one server process.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	Sessions          session.Store
	Objects           object.ObjectStore
	Generator         genai.Generator
	InterviewService  *interview.Service
	InterviewHandler  *interview.Handler
	ResumeHandler     *resume.Handler
	CandidatesHandler *candidates.Handler
}

// Build wires config into stores, services, handlers and the router.
func Build(cfg config.Config) (*App, error) {
	sessions, err := buildSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	objects, err := buildObjectStore(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	gen, err := genai.NewClient(cfg.GoogleAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, time.Duration(cfg.GeminiTimeoutSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("build generator: %w", err)
	}

	app := &App{
		Config:    cfg,
		Sessions:  sessions,
		Objects:   objects,
		Generator: gen,
	}
	wire(app)
	return app, nil
}

// wire builds services, handlers and the router from the app's stores and
// generator. Split out so tests can swap a store or generator and re-wire.
func wire(app *App) {
	app.InterviewService = &interview.Service{Store: app.Sessions, Gen: app.Generator}
	app.InterviewHandler = interview.NewHandler(app.InterviewService)
	app.ResumeHandler = resume.NewHandler(app.Sessions, app.Objects, app.InterviewService, app.Config.PublicBaseURL)
	app.CandidatesHandler = candidates.NewHandler(app.Sessions)

	app.Router = server.NewRouter(server.Deps{
		Config:     app.Config,
		Interview:  app.InterviewHandler,
		Resume:     app.ResumeHandler,
		Candidates: app.CandidatesHandler,
		Objects:    app.Objects,
	})
}

// Rewire rebuilds services, handlers and the router after a dependency swap.
func (a *App) Rewire() { wire(a) }

func buildSessionStore(cfg config.Config) (session.Store, error) {
	switch strings.ToLower(cfg.SessionStoreType) {
	case "redis":
		store, err := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("build redis session store: %w", err)
		}
		return store, nil
	default:
		store, err := session.NewFileStore(cfg.SessionFile)
		if err != nil {
			return nil, fmt.Errorf("build file session store: %w", err)
		}
		return store, nil
	}
}

func buildObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch strings.ToLower(cfg.ObjectStoreType) {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("build s3 object store: %w", err)
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}
