package main

import (
	"FrameLoom/cmd"
	"log"
)

func main() {
	cmd.Execute()
	// If Execute() had a problem, Cobra would have called os.Exit.
	// Reaching here means the command completed (or the server started
	// and has since shut down cleanly).
	log.Println("Application command execution finished.")
}
