package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	hitstorycmd "hitstory/internal/cmd/hitstory"
)

func main() {
	cfg, err := hitstorycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[HITSTORY] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := hitstorycmd.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("hitstory: %v", err)
	}
}
