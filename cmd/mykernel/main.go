// Command mykernel boots the simulated kernel and runs its interactive
// shell against stdin, exactly as the reference mykernel binary does:
// './mykernel' for an interactive session, or './mykernel < script.txt' to
// feed it a batch of shell commands.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kernelsim/mykernel/internal/kernel"
	"github.com/kernelsim/mykernel/internal/kernelconfig"
	"github.com/kernelsim/mykernel/internal/shell"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML file overriding the kernel's default constants")
	flag.Parse()

	cfg, err := kernelconfig.Load(*configPath)
	if err != nil {
		log.Fatalf("mykernel: %v", err)
	}

	k, err := kernel.New(cfg)
	if err != nil {
		log.Fatalf("mykernel: %v", err)
	}
	if err := k.Boot(); err != nil {
		log.Fatalf("mykernel: %v", err)
	}
	defer func() {
		if err := k.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "mykernel: shutdown: %v\n", err)
		}
	}()

	sh := shell.New(os.Stdin, os.Stdout, k.Interpreter())
	sh.Run()
}
