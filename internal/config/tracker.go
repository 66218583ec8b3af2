package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DDModeAlways   = "always"
	DDModeOnDemand = "ondemand"
	DDModeOff      = "off"
)

type TrackerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	StoreURL string `env:"STORE_URL" envDefault:"memory://"`

	SolverURL       string `env:"SOLVER_URL" envDefault:"https://dds.bridgewebs.com/cgi-bin/bsol2/ddummy"`
	SolverClub      string `env:"SOLVER_CLUB" envDefault:"bbohelper"`
	SolverTimeoutMS int    `env:"SOLVER_TIMEOUT_MS" envDefault:"20000"`
	DDMode          string `env:"DD_MODE" envDefault:"always"`

	EventBuffer int `env:"EVENT_BUFFER" envDefault:"500"`
	FeedBuffer  int `env:"FEED_BUFFER" envDefault:"1024"`
}

func (c TrackerConfig) SolverTimeout() time.Duration {
	if c.SolverTimeoutMS <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.SolverTimeoutMS) * time.Millisecond
}

func LoadTracker() (TrackerConfig, error) {
	var cfg TrackerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	switch cfg.DDMode {
	case DDModeAlways, DDModeOnDemand, DDModeOff:
	default:
		return cfg, fmt.Errorf("DD_MODE %q: want always, ondemand or off", cfg.DDMode)
	}
	return cfg, nil
}
