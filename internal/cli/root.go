// Package cli contains the commands of the faultkit binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/italypaleale/faultkit/config"
)

// NewRoot constructs the root command.
func NewRoot(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "faultkit",
		Short:         "Inspect and exercise fault handling",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to the config file; if empty, it's searched in $"+config.EnvVar+", the current folder, ~/."+config.DirName+", and /etc/"+config.DirName)

	root.AddCommand(NewDecodeCommand())
	root.AddCommand(NewDemoCommand(version))
	root.AddCommand(NewServeCommand(version))
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Load()
	}

	cfg := &config.Config{}
	err := config.ReloadConfig(cfg, path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
