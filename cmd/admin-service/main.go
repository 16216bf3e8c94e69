// Command admin-service runs the administrative gateway.
//
//	@title						Admin Service API
//	@version					1.0.0
//	@description				Administrative gateway: user management proxy and dashboard aggregation.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/aioutlet/admin-service/docs"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:           "admin-service",
	Short:         "Administrative gateway for the AIOutlet platform",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "admin-service %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, checkDepsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
