package main

import (
	"log"
	"os"

	"github.com/taskmaster/tasklist/cmd/api/commands"
)

// @title Task List API
// @version 1.0
// @description List, create, update and delete tasks
// @BasePath /

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
