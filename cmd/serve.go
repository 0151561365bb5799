package cmd

import (
	"github.com/khrees2412/cvbuilder/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the saved CV API over HTTP",
	Long: `Serve the saved CV API over HTTP. Requests authenticate with
"Authorization: Bearer <token>", where the token comes from
'cvbuilder login --print-token'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = application.Config.ServerAddr
		}

		srv := server.New(application.Gateway, application.History, application.Store, application.Tokens, application.Log)
		cmd.Printf("Listening on %s\n", addr)
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (defaults to server_addr)")
}
