package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/distributhor/arangotools/repository"
	"github.com/distributhor/arangotools/structure"
)

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Provision or validate the structure section of the config",
}

var structureCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the missing database, collections and graphs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStructure(cmd, (*repository.Connection).CreateDBStructure)
	},
}

var structureValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report which parts of the structure exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStructure(cmd, (*repository.Connection).ValidateDBStructure)
	},
}

var errIncomplete = errors.New("database structure incomplete")

func runStructure(cmd *cobra.Command, op func(*repository.Connection, context.Context, structure.DBStructure) (structure.Result, error)) error {
	if cfg.Structure == nil {
		return fmt.Errorf("config has no structure section")
	}
	conn, release, err := connect()
	if err != nil {
		return err
	}
	defer release()

	res, err := op(conn, cmd.Context(), *cfg.Structure)
	if err != nil {
		return err
	}
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !res.OK() {
		return errIncomplete
	}
	return nil
}

func init() {
	structureCmd.AddCommand(structureCreateCmd, structureValidateCmd)
	rootCmd.AddCommand(structureCmd)
}
