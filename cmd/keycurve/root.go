package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/krazyTry/keycurve-go/key_curve/math"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "KEYCURVE"

// configKeys are the viper keys that make up a key_curve.Config, spelled the
// way the JSON config document spells them.
var configKeys = []string{
	"curve.kind",
	"curve.basePrice",
	"curve.slope",
	"curve.coefficient",
	"curve.exponent",
	"fees.reserve",
	"fees.project",
	"fees.platform",
	"fees.referral",
	"minBuyCost",
	"sellTax",
	"highImpactPct",
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:          "keycurve",
		Short:        "Price and trade keys on a bonding curve",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("curve-kind", "", "curve shape: linear or power")
	flags.String("base-price", "", "price at zero supply")
	flags.String("slope", "", "linear price increase per key")
	flags.String("sell-tax", "", "fraction of sell proceeds withheld")
	flags.String("min-buy-cost", "", "least any buy costs")
	flags.String("dsn", "", "PostgreSQL connection string")
	flags.Int32("max-conns", 4, "connection pool size")
	a.bindFlags(flags, map[string]string{
		"curve.kind":        "curve-kind",
		"curve.basePrice":   "base-price",
		"curve.slope":       "slope",
		"sellTax":           "sell-tax",
		"minBuyCost":        "min-buy-cost",
		"log.level":         "log-level",
		"database.dsn":      "dsn",
		"database.maxConns": "max-conns",
	})

	root.AddCommand(
		newQuoteCmd(a),
		newChartCmd(a),
		newMetricsCmd(a),
		newValidateCmd(a),
		newTradeCmd(a),
		newDBCmd(a),
	)
	return root
}

func (a *app) bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}
}

func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	logger, err := newLogger(a.v.GetString("log.level"))
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// config collects the curve configuration from file, env and flags, then
// overlays it on the defaults.
func (a *app) config() (key_curve.Config, error) {
	doc := map[string]any{}
	for _, key := range configKeys {
		if !a.v.IsSet(key) {
			continue
		}
		section, field, nested := strings.Cut(key, ".")
		if !nested {
			doc[key] = a.v.GetString(key)
			continue
		}
		m, _ := doc[section].(map[string]any)
		if m == nil {
			m = map[string]any{}
			doc[section] = m
		}
		m[field] = a.v.GetString(key)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return key_curve.Config{}, err
	}
	cfg, err := key_curve.ConfigFromJSON(b)
	if err != nil {
		return key_curve.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return key_curve.Config{}, err
	}
	a.logger.Debug("configuration loaded",
		zap.String("curve", string(cfg.Curve.Kind)),
		zap.Stringer("sell_tax", cfg.SellTax),
	)
	return cfg, nil
}

func (a *app) engine() (*key_curve.Engine, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return key_curve.NewEngine(cfg)
}

// decimalFlag parses a string flag as a decimal; an unset flag yields def.
func decimalFlag(cmd *cobra.Command, name string, def decimal.Decimal) (decimal.Decimal, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if raw == "" {
		return def, nil
	}
	return math.FromString(name, raw)
}

// stateFlags reads the curve snapshot from --state, or from --supply and
// --reserve when no file is given.
func stateFlags(cmd *cobra.Command) (key_curve.CurveState, error) {
	if path, _ := cmd.Flags().GetString("state"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return key_curve.CurveState{}, err
		}
		return key_curve.StateFromJSON(b)
	}
	supply, err := decimalFlag(cmd, "supply", decimal.Zero)
	if err != nil {
		return key_curve.CurveState{}, err
	}
	reserve, err := decimalFlag(cmd, "reserve", decimal.Zero)
	if err != nil {
		return key_curve.CurveState{}, err
	}
	return key_curve.CurveState{Supply: supply, Reserve: reserve}, nil
}

func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().String("supply", "", "keys in circulation")
	cmd.Flags().String("reserve", "", "currency held by the curve")
	cmd.Flags().String("state", "", "JSON file with supply, currentPrice and reserve")
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
