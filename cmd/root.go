package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dockpool/dockpool/pkg/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dockpool",
	Short: "dockpool - multi-tenant Docker daemon gateway",
	Long: `dockpool exposes a fleet of Docker daemons behind one HTTP surface.
Requests address a daemon by tenant id in the path and are relayed to
its Engine API untouched.`,
}

// Execute wires build metadata into the version command and runs the
// CLI.
func Execute(v, commit, date string) error {
	version.Set(v, commit, date)
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dockpool.toml)")
}

func initConfig() {
	// A local .env can hold DOCKPOOL_* overrides during development.
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded .env file")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dockpool")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		if userConfigDir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(userConfigDir + "/dockpool")
		}
		viper.AddConfigPath("/etc/dockpool")
	}

	viper.SetEnvPrefix("DOCKPOOL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		log.Fatal("Cannot read config file", "file", cfgFile, "err", err)
	}
}
