// Command pacserver is the FIFO-mediated pacman game server. It listens on
// a well-known registration FIFO for CONNECT requests, admits at most
// max_games concurrent sessions, and runs each admitted client through the
// level files in a directory, exactly as original_source/server/src/main.c's
// entry point wires host_thread and the session_worker_thread pool.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pactermgo/pacterm/internal/admission"
	"github.com/pactermgo/pacterm/internal/listener"
	"github.com/pactermgo/pacterm/internal/logging"
	"github.com/pactermgo/pacterm/internal/registry"
	"github.com/pactermgo/pacterm/internal/session"
	"github.com/pactermgo/pacterm/internal/worker"
)

const debugLogPath = "pacserver.debug.log"
const top5ReportPath = "top5_gamers.txt"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pacserver:", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) != 4 {
		return fmt.Errorf("usage: %s <levels_dir> <max_games> <register_pipe>", os.Args[0])
	}
	levelsDir := os.Args[1]
	maxGames, err := strconv.Atoi(os.Args[2])
	if err != nil || maxGames <= 0 {
		return fmt.Errorf("max_games must be a positive integer, got %q", os.Args[2])
	}
	registerPipe := os.Args[3]

	log, err := logging.Open(debugLogPath)
	if err != nil {
		return err
	}
	defer log.Close()

	queue := admission.New(maxGames)
	reg := registry.New(maxGames)
	engine := session.NewEngine(levelsDir, reg, log)

	pool := worker.New(maxGames, queue, log, func(req admission.Request, clientID int) {
		defer queue.Release()
		engine.RunSession(req, clientID)
	})
	pool.Start()

	lst := listener.New(registerPipe, queue, reg, top5ReportPath, log)
	return lst.Run()
}
