package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  "Print the merged configuration (flags, environment, config file, defaults) as YAML. API keys are redacted.",
		Run:   runConfig,
	}

	RootCmd.AddCommand(cmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	out, err := cfg.YAML()
	if err != nil {
		exitErr("config", err)
	}
	if cfg.File != "" {
		fmt.Printf("# %s\n", cfg.File)
	}
	fmt.Print(string(out))
}
