package main

import (
	"context"
	"log"
	"os"

	"backend/cmd"
	"backend/server"
)

// make version a variable so the build system can inject it
var version = "unknown"

func main() {
	server.Version = version
	runCmd := cmd.ServerCli()

	if err := runCmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
