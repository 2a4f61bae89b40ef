package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/finreview/statement-pipeline/internal/api"
	"github.com/finreview/statement-pipeline/internal/archive"
	"github.com/finreview/statement-pipeline/internal/category"
	"github.com/finreview/statement-pipeline/internal/llm"
	"github.com/finreview/statement-pipeline/internal/logger"
	"github.com/finreview/statement-pipeline/internal/pdftext"
	"github.com/finreview/statement-pipeline/internal/pipeline"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logger.New()
	ctx := context.Background()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8111"
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is required")
	}

	model, err := llm.NewGeminiClient(ctx, apiKey, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create model client")
	}

	// Local development runs against the built-in catalog; production
	// reads categories from Firestore.
	useMemoryCatalog := os.Getenv("USE_MEMORY_CATALOG") == "true" || os.Getenv("ENV") == "local"

	var catalog category.Store
	if useMemoryCatalog {
		log.Info().Msg("using in-memory category catalog")
		catalog = category.NewMemoryStore(category.DefaultCatalog()...)
	} else {
		projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
		if projectID == "" {
			log.Fatal().Msg("GOOGLE_CLOUD_PROJECT is required when not using the in-memory catalog")
		}
		firestoreClient, err := firestore.NewClient(ctx, projectID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Firestore client")
		}
		defer firestoreClient.Close()
		catalog = category.NewFirestoreStore(firestoreClient, os.Getenv("CATEGORY_COLLECTION"))
	}

	var opts []pipeline.Option
	if bucket := os.Getenv("ARCHIVE_BUCKET"); bucket != "" {
		archiver, err := archive.NewGCS(ctx, bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create archive client")
		}
		defer archiver.Close()
		opts = append(opts, pipeline.WithArchiver(archiver))
		log.Info().Str("bucket", bucket).Msg("archiving uploads")
	}

	processor := pipeline.NewService(
		pdftext.NewExtractor(),
		catalog,
		llm.NewParser(model, log),
		log,
		opts...,
	)

	mux := http.NewServeMux()
	api.NewHandler(processor, catalog, log).Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:1234",
			"http://127.0.0.1:1234",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: c.Handler(mux),
	}

	log.Info().Str("port", port).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
