// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs, versionHandler
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/7blacky7/vismatch/api"
	"github.com/7blacky7/vismatch/envconfig"
	"github.com/7blacky7/vismatch/logutil"
	"github.com/7blacky7/vismatch/version"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-30s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// loadDotEnv - Laedt .env aus dem Arbeitsverzeichnis, gesetzte Variablen bleiben
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env", "error", err)
	}
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	loadDotEnv()
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "vismatch",
		Short:         "Visual product matching service",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	serveCmd := newServeCmd()
	matchCmd := newMatchCmd()
	embedCmd := newEmbedCmd()
	uploadCmd := newUploadCmd()
	listCmd := newListCmd()
	showCmd := newShowCmd()
	deleteCmd := newDeleteCmd()
	seedCmd := newSeedCmd()
	clearCmd := newClearCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["VISMATCH_HOST"]}

	for _, cmd := range []*cobra.Command{
		serveCmd,
		matchCmd,
		embedCmd,
		uploadCmd,
		listCmd,
		showCmd,
		deleteCmd,
		seedCmd,
		clearCmd,
	} {
		switch cmd {
		case serveCmd:
			appendEnvDocs(cmd, envDocs(envVars,
				"VISMATCH_DEBUG",
				"VISMATCH_HOST",
				"VISMATCH_ENV",
				"VISMATCH_ORIGINS",
				"VISMATCH_USE_LOCAL_CLIP",
				"VISMATCH_CLIP_URL",
				"HUGGINGFACE_API_KEY",
				"HUGGINGFACE_MODEL",
				"VISMATCH_CATALOG",
				"VISMATCH_UPLOAD_DIR",
				"VISMATCH_MAX_UPLOAD_SIZE",
				"VISMATCH_RATE_LIMIT_MAX",
				"VISMATCH_RATE_LIMIT_WINDOW",
				"VISMATCH_STRICT_RATE_LIMIT_MAX",
			))
		case clearCmd:
			appendEnvDocs(cmd, envDocs(envVars,
				"VISMATCH_CATALOG",
				"VISMATCH_SQLITE_PATH",
				"VISMATCH_REDIS_URL",
				"VISMATCH_QDRANT_URL",
				"SUPABASE_URL",
			))
		default:
			appendEnvDocs(cmd, envs)
		}
	}

	rootCmd.AddCommand(
		serveCmd,
		matchCmd,
		embedCmd,
		uploadCmd,
		listCmd,
		showCmd,
		deleteCmd,
		seedCmd,
		clearCmd,
	)

	return rootCmd
}

// envDocs - Waehlt die genannten Variablen aus, unbekannte werden uebersprungen
func envDocs(all map[string]envconfig.EnvVar, names ...string) []envconfig.EnvVar {
	out := make([]envconfig.EnvVar, 0, len(names))
	for _, n := range names {
		if e, ok := all[n]; ok {
			out = append(out, e)
		}
	}
	return out
}

// versionHandler - Gibt Client- und Server-Version aus
func versionHandler(cmd *cobra.Command, _ []string) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return
	}

	serverVersion, err := client.Version(cmd.Context())
	if err != nil {
		fmt.Println("Warning: could not connect to a running vismatch instance")
	}

	if serverVersion != "" {
		fmt.Printf("vismatch version is %s\n", serverVersion)
	}

	if serverVersion != version.Version {
		fmt.Printf("Warning: client version is %s\n", version.Version)
	}
}
