// inspectctl 检测审核服务命令行工具
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/client"
)

var (
	serverURL string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "inspectctl",
	Short: "Vehicle damage inspection review client",
	Long: `inspectctl talks to the inspection review API.

It lists annotated images for a reference number, queries repair costs,
prints or exports damage reports and opens an interactive review screen.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultServer := os.Getenv("INSPECT_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:5000"
	}
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "API base URL (env INSPECT_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
}

func newClient() *client.Client {
	c := client.NewClient(serverURL)
	if timeout > 0 {
		c.WithHTTPClient(&http.Client{Timeout: timeout})
	}
	return c
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
