// Command vintner runs the VintnerAI cellar API.
//
//	vintner serve            # HTTP API (default command)
//	vintner migrate          # create/upgrade the SQLite schema
//	vintner version
//
// Configuration is read from the environment; a .env file in the working
// directory (or --env-file) is loaded first when present.
//
// @title                       VintnerAI Cellar API
// @version                     1.0
// @description                 Personal wine cellar with live sync, dashboard aggregates and an AI sommelier.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
