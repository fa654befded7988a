package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/abelbrown/artscroll/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	var initFlag, force bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration, or write defaults with --init",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := ctx.configPath()

			if initFlag {
				if _, err := os.Stat(path); err == nil && !force {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
				if err := config.DefaultConfig().Save(path); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				fmt.Fprintf(out, "Wrote default config to %s\n", path)
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Fprintf(out, "# %s\n%s", path, buf.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&initFlag, "init", false, "Write the default config file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file with --init")
	return cmd
}
