package main

import "log"

func main() {
	// The controller link is compiled in with -tags=grpcgen and started from
	// init(); without it this binary only announces itself.
	log.Printf("harvex-agent: built without grpcgen, no controller link available")
	select {}
}
