package main

import (
	"log"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

func main() {
	if err := Execute(); err != nil {
		log.Fatal("application exited. check logs for more details. ", err)
	}
}
