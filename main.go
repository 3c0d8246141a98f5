package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dogansystem/agentflow/agent"
	"github.com/dogansystem/agentflow/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cli struct {
	cfg config.Config
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("storage-impl", "redis", "implementation of underline storage")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "agentflow", "namespace used in storage")
	cmd.Flags().Int("scheduler-interval", 60, "scheduler poll interval in seconds")
	cmd.Flags().Int("dispatcher-capacity", 128, "capacity of the workflow dispatch queue")
	cmd.Flags().Int("trial-days", 14, "trial period for new tenants")
	cmd.Flags().String("remote-base-url", "", "base url of the remote resource api")
	cmd.Flags().String("remote-token", "", "bearer token for the remote resource api")
	cmd.Flags().String("smtp-host", "", "smtp relay host")
	cmd.Flags().Int("smtp-port", 587, "smtp relay port")
	cmd.Flags().String("smtp-username", "", "smtp username")
	cmd.Flags().String("smtp-password", "", "smtp password")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)
	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return err
		}
	}
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.SchedulerIntervalSeconds = viper.GetInt("scheduler-interval")
	c.cfg.DispatcherCapacity = viper.GetInt("dispatcher-capacity")
	c.cfg.TrialDays = viper.GetInt("trial-days")
	c.cfg.RemoteConfig.BaseUrl = viper.GetString("remote-base-url")
	c.cfg.RemoteConfig.Token = viper.GetString("remote-token")
	c.cfg.MessageConfig.SmtpHost = viper.GetString("smtp-host")
	c.cfg.MessageConfig.SmtpPort = viper.GetInt("smtp-port")
	c.cfg.MessageConfig.Username = viper.GetString("smtp-username")
	c.cfg.MessageConfig.Password = viper.GetString("smtp-password")
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	a, err := agent.New(c.cfg)
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return a.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "agentflow",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
