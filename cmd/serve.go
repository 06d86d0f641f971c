package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wtodash/internal/server"
)

// serveCmd starts the free-exploration web dashboard over one fetch.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(cmd)
		if err != nil {
			return err
		}

		listenAddr, _ := cmd.Flags().GetString("listen")
		srv := server.New(table, viper.GetString("server.username"), viper.GetString("server.password"))
		return srv.Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addDataFlags(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
}
