package main

import (
	"fmt"
	"os"

	"github.com/aretw0/shopkeep"
	"github.com/aretw0/shopkeep/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:           "shopkeep",
	Short:         "Shopkeep is a conversational shopping cart",
	Long:          `Shopkeep keeps a cart per session against a fixed catalog and turns chat messages into cart operations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./shopkeep.yaml if present)")
	flags.String("catalog", "", "Catalog file (yaml or json)")
	flags.String("catalog-dir", "", "Directory of catalog item documents")
	flags.String("store", config.DriverMemory, "Session store: memory, file or redis")
	flags.String("store-dir", ".shopkeep/sessions", "Directory for the file store")
	flags.String("redis-addr", "localhost:6379", "Redis address for the redis store")
	flags.String("intent-command", "", "External intent interpreter command")
	flags.StringSlice("intent-arg", nil, "Argument for the intent command (repeatable)")
	flags.String("intent-config", "", "Intent interpreter config file (yaml or json)")
	flags.String("update-policy", "literal", "UpdateItem policy: literal or reject_in_cart")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")

	bindFlags(flags, map[string]string{
		"catalog":        "catalog.file",
		"catalog-dir":    "catalog.dir",
		"store":          "store.driver",
		"store-dir":      "store.dir",
		"redis-addr":     "redis.addr",
		"intent-command": "intent.command",
		"intent-arg":     "intent.args",
		"intent-config":  "intent.config",
		"update-policy":  "engine.update_policy",
		"log-level":      "log.level",
		"log-format":     "log.format",
	})
}

// bindFlags binds each flag to its config key. Flags only win over the
// config file and environment when set explicitly.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(v, cfgFile)
}

// newApp loads the configuration and wires an App. Callers must Close it.
func newApp(cmd *cobra.Command, opts ...shopkeep.Option) (*shopkeep.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return shopkeep.New(cmd.Context(), cfg, opts...)
}
