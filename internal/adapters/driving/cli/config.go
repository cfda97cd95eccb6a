package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foldrag/internal/adapters/driven/ai"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change settings",
	Long: `Settings live in foldrag.toml inside the store directory, or in the file
given with --config. Keys use dot notation, for example models.qa or
chunking.size. OLLAMA_HOST, OPENAI_API_KEY and ANTHROPIC_API_KEY are read from
the environment or a .env file.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(configPath())
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every model endpoint answers",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	settings, err := newSettings(configPath())
	if err != nil {
		return err
	}
	for _, key := range settings.Keys() {
		value, err := settings.Lookup(key)
		if err != nil {
			return err
		}
		cmd.Printf("%s = %s\n", key, value)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	settings, err := newSettings(configPath())
	if err != nil {
		return err
	}
	value, err := settings.Lookup(args[0])
	if err != nil {
		return err
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	settings, err := newSettings(configPath())
	if err != nil {
		return err
	}
	if err := settings.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s in %s\n", args[0], args[1], settings.Path())
	return nil
}

// checkServices pings each model endpoint. Tests replace it.
var checkServices = func(ctx context.Context, s *ai.Services) ([]ai.Check, error) {
	return ai.Validate(ctx, s)
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svcs, err := ai.NewServices(cfg)
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx, cancel := context.WithTimeout(commandContext(cmd), time.Minute)
	defer cancel()

	checks, err := checkServices(ctx, svcs)
	for _, c := range checks {
		status := "ok"
		if c.Err != nil {
			status = "FAILED: " + c.Err.Error()
		}
		cmd.Printf("%-6s %-32s %s\n", c.Role, c.Model, status)
	}
	return err
}
