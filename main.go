package main

import (
	"github.com/rescuenet/callout_service/config"
	"github.com/rescuenet/callout_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
