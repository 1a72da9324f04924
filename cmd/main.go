package main

import (
	"github.com/vendlabs/vending-svc/internal/app"
	"github.com/vendlabs/vending-svc/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
