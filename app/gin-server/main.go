package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/reelhire/reelhire/config"
	"github.com/reelhire/reelhire/internal/api/handlers"
	"github.com/reelhire/reelhire/internal/api/middleware"
	"github.com/reelhire/reelhire/internal/api/routes"
	"github.com/reelhire/reelhire/internal/cache"
	"github.com/reelhire/reelhire/internal/localstore"
	"github.com/reelhire/reelhire/internal/logger"
	"github.com/reelhire/reelhire/internal/models"
	"github.com/reelhire/reelhire/internal/providers/analysis"
	"github.com/reelhire/reelhire/internal/providers/stt"
	"github.com/reelhire/reelhire/internal/reconcile"
	"github.com/reelhire/reelhire/internal/remote"
	mongorepo "github.com/reelhire/reelhire/internal/repositories/mongo"
	pgrepo "github.com/reelhire/reelhire/internal/repositories/postgres"
	"github.com/reelhire/reelhire/internal/services"
	"github.com/reelhire/reelhire/internal/storage"
	"github.com/reelhire/reelhire/internal/submit"
	"github.com/reelhire/reelhire/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	ctx := context.Background()

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init failed")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("MongoDB index bootstrap failed")
	}
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init failed")
	}
	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Warn("PostgreSQL unavailable, artifact metadata disabled")
	}

	db := config.MongoDB()
	jobsRepo := mongorepo.NewJobCollectionRepo(db)
	draftsRepo := mongorepo.NewDraftRepo(db)
	rcache := cache.NewRedisCache(config.RedisClient)

	// upload collaborator
	var artifacts *services.ArtifactService
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		uploader, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.WithError(err).Fatal("GCS init failed")
		}
		var artifactRepo pgrepo.ArtifactRepository
		if config.PostgresDB != nil {
			if err := config.PostgresDB.AutoMigrate(&models.RecordingArtifact{}); err != nil {
				log.WithError(err).Warn("artifact table migration failed")
			} else {
				artifactRepo = pgrepo.NewArtifactRepo(config.PostgresDB)
			}
		}
		artifacts = services.NewArtifactService(uploader, artifactRepo, log)
	} else {
		log.Warn("GCS_BUCKET not set, recording uploads disabled")
	}

	// scoring provider
	var provider analysis.Provider
	if projectID := os.Getenv("VERTEX_PROJECT_ID"); projectID != "" {
		p, err := analysis.NewVertexGemini(ctx, projectID, os.Getenv("VERTEX_LOCATION"), os.Getenv("VERTEX_MODEL"))
		if err != nil {
			log.WithError(err).Fatal("Vertex init failed")
		}
		defer p.Close()
		provider = p
	} else {
		log.Warn("VERTEX_PROJECT_ID not set, analysis disabled")
	}

	var transcriber stt.Provider
	if os.Getenv("ENABLE_STT") == "true" {
		t, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			log.WithError(err).Fatal("Speech init failed")
		}
		defer t.Close()
		transcriber = t
	}

	// the analysis workers patch candidates through the same reconcile
	// semantics as every remote client, just without the HTTP hop
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	snapshot, err := localstore.NewFileStore(dataDir)
	if err != nil {
		log.WithError(err).Fatal("snapshot store init failed")
	}
	store := reconcile.NewStore(remote.NewRepoClient(jobsRepo, draftsRepo), snapshot, log)
	if err := store.Reload(ctx); err != nil {
		log.WithError(err).Warn("initial collection load failed")
	}

	if provider != nil {
		pipeline := &submit.Pipeline{
			Store:    store,
			Analyzer: provider,
			Queue:    &workers.AnalysisQueue{Redis: config.RedisClient},
			Logger:   log,
		}
		pool := &workers.AnalysisWorkerPool{
			Redis:    config.RedisClient,
			Pipeline: pipeline,
			STT:      transcriber,
			Logger:   log,
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("analysis worker pool failed to start")
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Records:    handlers.NewRecordsHandler(jobsRepo, draftsRepo, rcache, config.RedisClient, log),
		Recordings: handlers.NewRecordingsHandler(artifacts),
		Analyze:    handlers.NewAnalyzeHandler(provider),
		Updates:    handlers.NewUpdatesWSHandler(config.RedisClient, log),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
