// cmd_products.go - Upload, List, Show und Delete Commands
// Hauptfunktionen: UploadHandler, ListHandler, ShowHandler, DeleteHandler
package cmd

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/7blacky7/vismatch/api"
)

// UploadHandler - Indiziert ein Produktbild
func UploadHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	category, _ := cmd.Flags().GetString("category")

	var resp *api.UploadResponse
	if isRefArg(args[0]) {
		resp, err = client.Upload(cmd.Context(), &api.UploadRequest{ImageURL: args[0], Name: name, Category: category})
	} else {
		var f *os.File
		if f, err = openImageArg(args[0]); err != nil {
			return err
		}
		defer f.Close()
		resp, err = client.UploadFile(cmd.Context(), name, category, f.Name(), f)
	}
	if err != nil {
		return err
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%s, %d dimensions)\n", resp.Data.ID, resp.Data.Name, resp.Data.EmbeddingLength)
	return nil
}

// ListHandler - Listet die Produkte des Katalogs
func ListHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	category, _ := cmd.Flags().GetString("category")
	resp, err := client.List(cmd.Context(), category)
	if err != nil {
		return err
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), resp.Data)
	}

	table := newTable(cmd.OutOrStdout(), "ID", "NAME", "CATEGORY", "DIMENSIONS", "CREATED")
	for _, p := range resp.Data {
		table.Append([]string{p.ID, p.Name, p.Category, strconv.Itoa(p.Dimensions), humanTime(p.CreatedAt, "Never")})
	}
	table.Render()
	return nil
}

// ShowHandler - Zeigt ein einzelnes Produkt
func ShowHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	p, err := client.Show(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), p)
	}

	table := newTable(cmd.OutOrStdout())
	table.AppendBulk([][]string{
		{"id", p.ID},
		{"name", p.Name},
		{"category", p.Category},
		{"image", p.ImageURL},
		{"dimensions", strconv.Itoa(p.Dimensions)},
		{"created", p.CreatedAt.Format("2006-01-02 15:04:05")},
	})
	for _, k := range slices.Sorted(maps.Keys(p.Metadata)) {
		table.Append([]string{k, fmt.Sprint(p.Metadata[k])})
	}
	table.Render()
	return nil
}

// DeleteHandler - Entfernt ein oder mehrere Produkte
func DeleteHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range args {
		if err := client.Delete(cmd.Context(), id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted '%s'\n", id)
	}
	return errors.Join(errs...)
}

func newUploadCmd() *cobra.Command {
	uploadCmd := &cobra.Command{
		Use:   "upload IMAGE",
		Short: "Add a product image (URL or file) to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  UploadHandler,
	}
	uploadCmd.Flags().String("name", "", "Product name")
	uploadCmd.Flags().String("category", "", "Product category")
	addJSONFlag(uploadCmd)
	return uploadCmd
}

func newListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog products",
		Args:    cobra.ExactArgs(0),
		RunE:    ListHandler,
	}
	listCmd.Flags().String("category", "", "Only list products of this category")
	addJSONFlag(listCmd)
	return listCmd
}

func newShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a catalog product",
		Args:  cobra.ExactArgs(1),
		RunE:  ShowHandler,
	}
	addJSONFlag(showCmd)
	return showCmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID [ID...]",
		Short: "Remove catalog products",
		Args:  cobra.MinimumNArgs(1),
		RunE:  DeleteHandler,
	}
}
