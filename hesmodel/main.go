package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("overhead model failed")
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
