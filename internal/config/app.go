package config

type AppConfig struct {
	Server   ServerConfig
	Log      LogConfig
	Game     GameConfig
	Opponent OpponentConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	gameCfg, err := LoadGame()
	if err != nil {
		return AppConfig{}, err
	}
	oppCfg, err := LoadOpponent()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server:   serverCfg,
		Log:      logCfg,
		Game:     gameCfg,
		Opponent: oppCfg,
	}, nil
}
