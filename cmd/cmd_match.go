// cmd_match.go - Match und Embed Commands
// Hauptfunktionen: MatchHandler, EmbedHandler, openImageArg
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/7blacky7/vismatch/api"
	"github.com/7blacky7/vismatch/vision"
)

// isRefArg - URLs und Data-URIs gehen als image_url an den Server
func isRefArg(arg string) bool {
	return vision.IsRemoteRef(arg) || strings.HasPrefix(strings.ToLower(arg), "data:") ||
		strings.HasPrefix(arg, "/uploads/")
}

// openImageArg - Oeffnet eine lokale Bilddatei
func openImageArg(arg string) (*os.File, error) {
	f, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open image: %s is a directory", arg)
	}
	return f, nil
}

// MatchHandler - Sucht aehnliche Produkte zu einem Bild
func MatchHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	var resp *api.MatchResponse
	if isRefArg(args[0]) {
		resp, err = client.Match(cmd.Context(), args[0])
	} else {
		var f *os.File
		if f, err = openImageArg(args[0]); err != nil {
			return err
		}
		defer f.Close()
		resp, err = client.MatchFile(cmd.Context(), f.Name(), f)
	}
	if err != nil {
		return err
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	return printMatches(cmd.OutOrStdout(), resp)
}

func printMatches(w io.Writer, resp *api.MatchResponse) error {
	if resp.Count == 0 {
		msg := resp.Message
		if msg == "" {
			msg = "No matches found"
		}
		fmt.Fprintln(w, msg)
		return nil
	}

	table := newTable(w, "RANK", "NAME", "CATEGORY", "SIMILARITY", "ID")
	for i, m := range resp.Data {
		table.Append([]string{strconv.Itoa(i + 1), m.Name, m.Category, m.SimilarityPercentage + "%", m.ID})
	}
	table.Render()
	return nil
}

// EmbedHandler - Gibt das Embedding eines Bildes aus
func EmbedHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	var resp *api.EmbedResponse
	if isRefArg(args[0]) {
		resp, err = client.Embed(cmd.Context(), args[0])
	} else {
		var f *os.File
		if f, err = openImageArg(args[0]); err != nil {
			return err
		}
		defer f.Close()
		resp, err = client.EmbedFile(cmd.Context(), f.Name(), f)
	}
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), resp)
}

func newMatchCmd() *cobra.Command {
	matchCmd := &cobra.Command{
		Use:   "match IMAGE",
		Short: "Find catalog products similar to an image (URL or file)",
		Args:  cobra.ExactArgs(1),
		RunE:  MatchHandler,
	}
	addJSONFlag(matchCmd)
	return matchCmd
}

func newEmbedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed IMAGE",
		Short: "Print the embedding of an image (URL or file)",
		Args:  cobra.ExactArgs(1),
		RunE:  EmbedHandler,
	}
}
