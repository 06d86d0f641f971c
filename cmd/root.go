package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"wtodash/internal/utils"
	"wtodash/pkg/dataset"
	"wtodash/pkg/wto"
)

var cfgFile string

const (
	LOGO = `	        _            _           _
	__      _| |_ ___   __| | __ _ ___| |__
	\ \ /\ / / __/ _ \ / _` + "`" + ` |/ _` + "`" + ` / __| '_ \
	 \ V  V /| || (_) | (_| | (_| \__ \ | | |
	  \_/\_/  \__\___/ \__,_|\__,_|___/_| |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wtodash",
	Short: "An interactive dashboard for WTO merchandise import statistics.",
	Long: LOGO + `wtodash fetches merchandise import values for China, Germany and the United
States from the WTO timeseries API and renders them as a guided terminal
report or a local web dashboard.

Get a free API subscription key at https://apiportal.wto.org.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wtodash.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".wtodash")
		viper.SetConfigType("yaml")
	}

	// The subscription key must come from the environment or the config
	// file, never from source: WTO_APIKEY maps to wto.apikey.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.wtodash.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("wto.apikey", "")
	viper.SetDefault("wto.economies", wto.DefaultEconomies)
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// addDataFlags registers the fetch-window flags shared by every surface.
func addDataFlags(c *cobra.Command) {
	c.Flags().String("years", "", "Year range to fetch, e.g. 2020-2024 (default: 2020 to current year)")
	c.Flags().StringSlice("economies", nil, "Reporting economy codes (default: 156,276,840)")
	c.Flags().StringSlice("products", nil, "Product group labels to keep (default: all)")
}

// loadTable runs the shared fetch-and-normalize core used by every
// command: one fetch per invocation, normalized into a fresh table.
func loadTable(cmd *cobra.Command) (dataset.Table, error) {
	apiKey := viper.GetString("wto.apikey")
	if apiKey == "" {
		return nil, errors.New("no WTO API key configured: set wto.apikey in ~/.wtodash.yaml or the WTO_APIKEY environment variable")
	}

	yearsFlag, _ := cmd.Flags().GetString("years")
	yearFrom, yearTo, err := utils.ParseYearRange(yearsFlag)
	if err != nil {
		return nil, err
	}

	economies, _ := cmd.Flags().GetStringSlice("economies")
	if len(economies) == 0 {
		economies = viper.GetStringSlice("wto.economies")
	}

	client := wto.NewClient(apiKey)
	raws, err := client.Fetch(cmd.Context(), wto.Query{
		Economies: economies,
		YearFrom:  yearFrom,
		YearTo:    yearTo,
	})
	if err != nil {
		if wto.IsKind(err, wto.KindEmpty) {
			utils.Log.Warn("The WTO API returned no observations for the requested window")
			return dataset.Table{}, nil
		}
		return nil, err
	}

	table := dataset.Normalize(raws, dataset.NormalizeOptions{
		Reporters: wto.TrackedNames(economies),
		YearFrom:  yearFrom,
		YearTo:    yearTo,
	})
	utils.Log.Debugf("normalized %d observations into %d records", len(raws), len(table))
	return table, nil
}

// productFilter builds the post-normalize filter from the --products flag.
func productFilter(cmd *cobra.Command) dataset.Filter {
	products, _ := cmd.Flags().GetStringSlice("products")
	return dataset.Filter{ProductGroups: products}
}
