package main

import (
	"io/ioutil"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/stopkit/stop"
	"github.com/stopkit/stop/drain"
	"github.com/stopkit/stop/pkg/log"
	"github.com/stopkit/stop/pkg/metrics"
	"github.com/stopkit/stop/pkg/stopgroup"
)

// ConfigFile represents a draind YAML configuration file.
type ConfigFile struct {
	MainConfigBlock struct {
		Debug       bool          `yaml:"debug"`
		MetricsAddr string        `yaml:"metrics_addr"`
		JobInterval time.Duration `yaml:"job_interval"`
		Pipeline    drain.Config  `yaml:"pipeline"`
	} `yaml:"draind"`
}

// ParseConfigFile returns a new ConfigFile given the path to a YAML
// configuration file.
//
// It supports relative and absolute paths and environment variables.
func ParseConfigFile(path string) (*ConfigFile, error) {
	if path == "" {
		return nil, errors.New("no config path specified")
	}

	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	contents, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfgFile ConfigFile
	if err := yaml.Unmarshal(contents, &cfgFile); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	return &cfgFile, nil
}

type job struct {
	id uint64
}

func handleJob(j job) error {
	// Stand-in for real work; jobs are never interrupted mid-handle.
	time.Sleep(10 * time.Millisecond)
	log.Debug("handled job", log.Fields{"id": j.id})
	return nil
}

// feed submits synthetic jobs until the token stops.
func feed(p *drain.Pipeline[job], token stop.Token, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var id uint64
	for {
		select {
		case <-token.Done():
			return
		case <-ticker.C:
			id++
			if err := p.Submit(job{id: id}); err != nil {
				return
			}
		}
	}
}

func rootRun(configFilePath string) error {
	configFile, err := ParseConfigFile(configFilePath)
	if err != nil {
		return errors.Wrap(err, "failed to read config")
	}
	cfg := configFile.MainConfigBlock

	log.SetDebug(cfg.Debug)
	if cfg.JobInterval <= 0 {
		cfg.JobInterval = 100 * time.Millisecond
	}

	group := stopgroup.NewGroup()

	if cfg.MetricsAddr != "" {
		log.Info("started serving metrics", log.Fields{"addr": cfg.MetricsAddr})
		group.Add(metrics.NewServer(cfg.MetricsAddr))
	}

	pipeline := drain.New(cfg.Pipeline, handleJob)
	group.Add(pipeline)

	go feed(pipeline, group.Token(), cfg.JobInterval)
	log.Info("started pipeline", log.Fields{"workers": cfg.Pipeline.Workers})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	var bufErr error
	for _, stopErr := range group.Stop().Wait() {
		log.Error("error shutting down", log.Err(stopErr))
		bufErr = stopErr
	}

	return bufErr
}

func main() {
	var configFilePath string

	rootCmd := &cobra.Command{
		Use:   "draind",
		Short: "Cooperative drain daemon",
		Long:  "An example daemon that drains a worker pipeline cleanly on shutdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootRun(configFilePath)
		},
	}

	rootCmd.Flags().StringVar(&configFilePath, "config", "/etc/draind.yaml", "location of configuration file")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
