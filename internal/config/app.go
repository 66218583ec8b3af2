package config

type AppConfig struct {
	Tracker TrackerConfig
	Log     LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	trackerCfg, err := LoadTracker()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Tracker: trackerCfg,
		Log:     logCfg,
	}, nil
}
