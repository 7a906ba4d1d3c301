// cmd_seed.go - Seed Command: laedt einen YAML-Katalog ueber die API
// Hauptfunktionen: SeedHandler, parseSeedFile
package cmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/7blacky7/vismatch/api"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// seedProduct ist ein Eintrag der Seed-Datei
type seedProduct struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	ImageURL string `yaml:"image_url"`
}

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

// uploader ist der Teil des API-Clients, den seed braucht
type uploader interface {
	Upload(ctx context.Context, req *api.UploadRequest) (*api.UploadResponse, error)
}

// parseSeedFile - Dekodiert die Seed-Datei und prueft Pflichtfelder
func parseSeedFile(data []byte) ([]seedProduct, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(f.Products) == 0 {
		return nil, errors.New("seed file contains no products")
	}
	for i, p := range f.Products {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.ImageURL) == "" {
			return nil, fmt.Errorf("seed file: product %d needs name and image_url", i+1)
		}
	}
	return f.Products, nil
}

// seedStats zaehlt erfolgreiche und fehlgeschlagene Uploads
type seedStats struct {
	success atomic.Int32
	failed  atomic.Int32
}

// runSeed - Laedt alle Produkte mit hoechstens parallel gleichzeitigen Uploads.
// Einzelne Fehler brechen den Lauf nicht ab.
func runSeed(ctx context.Context, out io.Writer, c uploader, products []seedProduct, parallel int) *seedStats {
	if parallel < 1 {
		parallel = 1
	}

	var (
		stats seedStats
		mu    sync.Mutex
	)
	logf := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, format, args...)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, p := range products {
		g.Go(func() error {
			resp, err := c.Upload(ctx, &api.UploadRequest{ImageURL: p.ImageURL, Name: p.Name, Category: p.Category})
			if err != nil {
				stats.failed.Add(1)
				logf("[%d/%d] %s: failed: %v\n", i+1, len(products), p.Name, err)
				return nil
			}
			stats.success.Add(1)
			logf("[%d/%d] %s: saved as %s (%s)\n", i+1, len(products), p.Name, resp.Data.ID, resp.Data.Category)
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	return &stats
}

// SeedHandler - Befuellt den Katalog aus FILE oder dem eingebetteten Standard-Katalog
func SeedHandler(cmd *cobra.Command, args []string) error {
	data := defaultCatalog
	if len(args) == 1 {
		var err error
		if data, err = os.ReadFile(args[0]); err != nil {
			return err
		}
	}

	products, err := parseSeedFile(data)
	if err != nil {
		return err
	}

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	if reset, _ := cmd.Flags().GetBool("reset"); reset {
		n, err := deleteAll(cmd.Context(), client)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d existing products\n", n)
	}

	parallel, _ := cmd.Flags().GetInt("parallel")
	fmt.Fprintf(cmd.OutOrStdout(), "seeding %d products\n", len(products))
	stats := runSeed(cmd.Context(), cmd.OutOrStdout(), client, products, parallel)

	fmt.Fprintf(cmd.OutOrStdout(), "success: %d, failed: %d\n", stats.success.Load(), stats.failed.Load())
	if stats.success.Load() == 0 {
		return errors.New("no product could be seeded")
	}
	return nil
}

// deleteAll - Entfernt alle Produkte ueber die API
func deleteAll(ctx context.Context, client *api.Client) (int, error) {
	resp, err := client.List(ctx, "")
	if err != nil {
		return 0, err
	}
	for _, p := range resp.Data {
		if err := client.Delete(ctx, p.ID); err != nil {
			return 0, err
		}
	}
	return len(resp.Data), nil
}

func newSeedCmd() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed [FILE]",
		Short: "Populate the catalog from a YAML file (default: built-in sample catalog)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  SeedHandler,
	}
	seedCmd.Flags().Int("parallel", 4, "Number of concurrent uploads")
	seedCmd.Flags().Bool("reset", false, "Remove all existing products first")
	return seedCmd
}
