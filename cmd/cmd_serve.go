// cmd_serve.go - Serve Command und Aufbau der Match-Pipeline
// Hauptfunktionen: RunServer, providerConfig, catalogConfig, serverConfig
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/cobra"

	"github.com/7blacky7/vismatch/catalog"
	"github.com/7blacky7/vismatch/envconfig"
	"github.com/7blacky7/vismatch/match"
	"github.com/7blacky7/vismatch/server"
	"github.com/7blacky7/vismatch/vision"

	// Provider und Katalog-Treiber registrieren sich per init()
	_ "github.com/7blacky7/vismatch/catalog/qdrant"
	_ "github.com/7blacky7/vismatch/catalog/redis"
	_ "github.com/7blacky7/vismatch/catalog/sqlite"
	_ "github.com/7blacky7/vismatch/catalog/supabase"
	_ "github.com/7blacky7/vismatch/vision/classify"
	_ "github.com/7blacky7/vismatch/vision/clip"
)

// providerConfig - Liest die Provider-Einstellungen aus der Umgebung
func providerConfig() vision.ProviderConfig {
	return vision.ProviderConfig{
		UseLocalCLIP: envconfig.UseLocalCLIP(),
		CLIPURL:      envconfig.CLIPURL(),
		CLIPTimeout:  envconfig.CLIPTimeout(),
		CLIPJPEG:     envconfig.CLIPJPEG(),
		HFToken:      envconfig.HuggingFaceToken(),
		HFModel:      envconfig.HuggingFaceModel(),
		HFEndpoint:   envconfig.HuggingFaceEndpoint(),
		HFRequest:    envconfig.HuggingFaceRequest(),
		HFTimeout:    envconfig.HuggingFaceTimeout(),
	}
}

// catalogConfig - Liest die Katalog-Einstellungen aus der Umgebung
func catalogConfig() catalog.Config {
	return catalog.Config{
		Driver:           envconfig.Catalog(),
		SQLitePath:       envconfig.SQLitePath(),
		RedisURL:         envconfig.RedisURL(),
		QdrantURL:        envconfig.QdrantURL(),
		QdrantAPIKey:     envconfig.QdrantAPIKey(),
		QdrantCollection: envconfig.QdrantCollection(),
		SupabaseURL:      envconfig.SupabaseURL(),
		SupabaseKey:      envconfig.SupabaseKey(),
		SupabaseTable:    envconfig.SupabaseTable(),
	}
}

// serverConfig - Liest die Einstellungen der HTTP-Grenze aus der Umgebung
func serverConfig() server.Config {
	return server.Config{
		Environment:        envconfig.Environment(),
		UploadDir:          envconfig.UploadDir(),
		MaxUploadSize:      int64(envconfig.MaxUploadSize()),
		RateLimitMax:       int(envconfig.RateLimitMax()),
		RateLimitWindow:    envconfig.RateLimitWindow(),
		StrictRateLimitMax: int(envconfig.StrictRateLimitMax()),
		AllowedOrigins:     envconfig.AllowedOrigins(),
	}
}

// newPipeline - Waehlt Provider und Katalog und verbindet beide
func newPipeline(ctx context.Context) (*match.Pipeline, error) {
	cfg := providerConfig()
	provider, err := vision.SelectProvider(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.Usable() {
		slog.Warn("no embedding service configured, requests will fail until one is available",
			"provider", cfg.ProviderName())
	}

	store, err := catalog.Open(ctx, catalogConfig())
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	mat := vision.NewMaterializer(
		vision.WithFetchTimeout(envconfig.FetchTimeout()),
		vision.WithMaxBytes(int64(envconfig.MaxFetchBytes())),
	)
	return match.New(store, provider,
		match.WithMaterializer(mat),
		match.WithTopK(int(envconfig.TopK())),
	), nil
}

// RunServer - Startet den vismatch-Server
func RunServer(cmd *cobra.Command, _ []string) error {
	p, err := newPipeline(cmd.Context())
	if err != nil {
		return err
	}

	info := p.Provider().Info()
	slog.Info("embedding provider selected", "name", info.Name, "endpoint", info.Endpoint,
		"model", info.Model, "dimensions", info.Dimensions, "low_fidelity", info.LowFidelity)
	slog.Info("catalog opened", "driver", envconfig.Catalog())

	ln, err := net.Listen("tcp", envconfig.Host().Host)
	if err != nil {
		p.Store().Close()
		return err
	}

	return server.Serve(ln, serverConfig(), p)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the matching server",
		Args:    cobra.ExactArgs(0),
		RunE:    RunServer,
	}
}
