// Command pacclient is the FIFO-mediated pacman game client. It registers
// with a running pacserver over a shared registration FIFO, then either
// plays interactively (WASD + Q, rendered with tcell) or replays a
// commands file, exactly as original_source/client-base/src/client/
// client_main.c's entry point does.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pactermgo/pacterm/internal/clientrt"
	"github.com/pactermgo/pacterm/internal/logging"
)

const debugLogPath = "pacclient.debug.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pacclient:", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) != 3 && len(os.Args) != 4 {
		return fmt.Errorf("usage: %s <client_id> <register_pipe> [commands_file]", os.Args[0])
	}

	clientID, err := strconv.Atoi(os.Args[1])
	if err != nil {
		return fmt.Errorf("client_id must be an integer, got %q", os.Args[1])
	}
	registerPipe := os.Args[2]
	commandsFile := ""
	if len(os.Args) == 4 {
		commandsFile = os.Args[3]
	}

	log, err := logging.Open(debugLogPath)
	if err != nil {
		return err
	}
	defer log.Close()

	return clientrt.Run(clientrt.Config{
		ClientID:     clientID,
		RegisterPipe: registerPipe,
		CommandsFile: commandsFile,
	}, log)
}
