package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/project"
	"github.com/spf13/cobra"
)

func newPresetsCmd() *cobra.Command {
	var presetsPath string

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage sizing presets",
		Long:  `Sizing presets are named policies. Built-in presets ship with ductcalc; custom presets live in a TOML file that can be edited by hand.`,
	}
	cmd.PersistentFlags().StringVar(&presetsPath, "presets", project.DefaultPresetsPath(), "presets file")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in and custom presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadPresets(presetsPath)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(store.Presets))
			for _, sp := range store.Presets {
				source := "custom"
				if sp.BuiltIn {
					source = styleDim.Render("built-in")
				}
				rows = append(rows, []string{sp.Name, sp.Policy().String(), sp.Description, source})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Policy", "Description", "Source"}, rows))
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter presets file",
		Long:  `Write a presets file holding one custom preset copied from the current default policy, ready to be edited.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(presetsPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", presetsPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg := stateFromContext(cmd.Context()).config
			store := model.PresetStore{}
			store.Add(model.NewSizingPreset("My standard", "Copied from the default policy", cfg.Policy()))
			if err := project.SavePresets(presetsPath, store); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("presets written", "path", presetsPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
