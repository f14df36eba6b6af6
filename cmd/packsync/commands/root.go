package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"packsync/internal/app"
)

var (
	cfgPath    string
	home       string
	passphrase string
	relayURL   string
	topic      string
	profile    string
	logLevel   string

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:           "packsync",
		Short:         "Signed, encrypted content-pack sync",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil {
				return nil
			}
			return wire.Close()
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.packsync)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the identity")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&topic, "topic", "", "sync topic")
	root.PersistentFlags().StringVar(&profile, "profile", "", "cadence profile: normal, red, low-power, auto")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		signCmd(),
		verifyCmd(),
		trustCmd(),
		removeCmd(),
		syncCmd(),
	)
	return root.Execute()
}

// loadConfig resolves defaults, the YAML file and flag overrides, in that
// order of precedence (later wins).
func loadConfig() (app.Config, error) {
	base := app.Defaults()
	if home != "" {
		base.Home = home
	}
	path := cfgPath
	if path == "" {
		path = filepath.Join(base.Home, "config.yaml")
	}

	cfg, err := app.Load(path)
	if err != nil {
		return cfg, err
	}
	if home != "" {
		cfg.Home = home
	}
	if relayURL != "" {
		cfg.RelayURL = relayURL
	}
	if topic != "" {
		cfg.Topic = topic
	}
	if profile != "" {
		cfg.Profile = profile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}
