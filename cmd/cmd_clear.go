// cmd_clear.go - Clear Command: leert den konfigurierten Katalog direkt
// Hauptfunktionen: ClearHandler
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/7blacky7/vismatch/catalog"
)

// errAborted wird bei verneinter Rueckfrage zurueckgegeben
var errAborted = errors.New("aborted")

// ClearHandler - Loescht alle Produkte des Katalogs
func ClearHandler(cmd *cobra.Command, _ []string) error {
	cfg := catalogConfig()

	if force, _ := cmd.Flags().GetBool("force"); !force {
		fmt.Fprintf(cmd.OutOrStdout(), "Remove all products from the %s catalog? [y/N] ", cfg.Driver)
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			return errAborted
		}
	}

	store, err := catalog.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()

	n, err := store.Clear(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "removed %d products from %s catalog\n", n, cfg.Driver)
	return nil
}

func newClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all products from the configured catalog store",
		Args:  cobra.ExactArgs(0),
		RunE:  ClearHandler,
	}
	clearCmd.Flags().BoolP("force", "f", false, "Do not ask for confirmation")
	return clearCmd
}
