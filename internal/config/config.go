// Package config loads the engine's settings with precedence
// flags > environment > defaults. The engine deliberately has a small
// surface: everything else (submission endpoints, cluster credentials,
// CLI parsing) belongs to the embedding application.
package config

import (
	"fmt"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aws/hyperpod-partition-allocator/internal/allocator"
)

// flagBindings maps viper keys (= env var names) to pflag names.
var flagBindings = map[string]string{
	"HYPERPOD_SKIP_CAPACITY_CHECK": "skip-capacity-check",
	"HYPERPOD_NODE_SELECTOR":       "node-selector",
	"HYPERPOD_INSTANCE_TYPE_LABEL": "instance-type-label",
}

// Config holds the resolved engine settings.
type Config struct {
	// SkipClusterCapacityCheck disables the live-cluster availability probe
	// during validation, making validation fully offline and deterministic.
	SkipClusterCapacityCheck bool

	// NodeSelector is an optional label selector restricting which nodes
	// the capacity probe inspects.
	NodeSelector string

	// InstanceTypeLabel is the node-selector key carrying a replica's
	// target instance type.
	InstanceTypeLabel string
}

// RegisterFlags defines the engine's flags on the given flag set. Callers
// that embed the engine in a larger binary register these alongside their
// own flags, then pass the parsed set to Load.
func RegisterFlags(fs *flag.FlagSet) {
	fs.Bool("skip-capacity-check", false,
		"Skip the live-cluster partition capacity check during validation")
	fs.String("node-selector", "",
		"Label selector restricting which nodes the capacity probe inspects")
	fs.String("instance-type-label", allocator.DefaultInstanceTypeLabel,
		"Node-selector key carrying a replica's target instance type")
}

// Load resolves the engine configuration with precedence
// flags > env > defaults. flagSet may be nil (e.g. in tests that don't set
// CLI flags). Returns an error if required configuration is missing
// (fail-fast).
func Load(flagSet *flag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("HYPERPOD_SKIP_CAPACITY_CHECK", false)
	v.SetDefault("HYPERPOD_NODE_SELECTOR", "")
	v.SetDefault("HYPERPOD_INSTANCE_TYPE_LABEL", allocator.DefaultInstanceTypeLabel)

	// Environment variables sit between flags and defaults in precedence.
	v.AutomaticEnv()

	// Bind pflag flags (highest precedence for explicitly-set flags).
	if flagSet != nil {
		for viperKey, flagName := range flagBindings {
			if f := flagSet.Lookup(flagName); f != nil {
				_ = v.BindPFlag(viperKey, f)
			}
		}
	}

	cfg := &Config{
		SkipClusterCapacityCheck: v.GetBool("HYPERPOD_SKIP_CAPACITY_CHECK"),
		NodeSelector:             v.GetString("HYPERPOD_NODE_SELECTOR"),
		InstanceTypeLabel:        v.GetString("HYPERPOD_INSTANCE_TYPE_LABEL"),
	}

	if cfg.InstanceTypeLabel == "" {
		return nil, fmt.Errorf("instance-type-label must not be empty")
	}
	return cfg, nil
}
