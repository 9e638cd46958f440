package main

import (
	"log"

	"github.com/sahilchouksey/dpms-api/app"
)

func main() {
	if err := app.SetupAndRunServer(); err != nil {
		log.Fatal(err)
	}
}
