package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	cli := CliConfig{}

	cmd := &cobra.Command{
		Use:   "chat-proxy",
		Short: "Local relay that adds the API credential to browser chat requests",
		Long: `chat-proxy listens on localhost, accepts POST /api/chat from a browser
client and forwards the body verbatim to the completion API with the
credential attached as a bearer token. The credential is read from the
environment or an env file and never leaves the process otherwise.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cli)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cli.ConfigFile, "config", "c", "", "optional YAML config file")
	flags.StringVar(&cli.EnvFile, "env-file", defaultEnvFile, "env file with KEY=value lines")
	flags.StringVar(&cli.Address, "addr", "", "listen address (default "+defaultAddress+")")
	flags.StringVar(&cli.Upstream, "upstream", "", "upstream chat completions URL")
	flags.StringVar(&cli.LogLevel, "log-level", "", "debug, info, warn or error")

	return cmd
}

func run(cli CliConfig) error {
	config, err := ReadConfig(cli)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := initLogger(config.LogLevel); err != nil {
		return err
	}
	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if config.APIKey == "" {
		log.Warnf("%s is not set, upstream calls will carry an empty bearer token", config.APIKeyEnv)
	}

	proxy := NewChatProxy(config, nil)
	server := &http.Server{
		Addr:              config.Address,
		Handler:           NewRouter(proxy),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("Proxy server running on http://%s", config.Address)
	log.Infof("Forwarding to %s", config.UpstreamURL.Redacted())

	return server.ListenAndServe()
}
