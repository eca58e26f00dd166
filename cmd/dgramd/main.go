package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"syscall"

	"github.com/go-gost/dgram/pkg/logger"
	"github.com/judwhite/go-svc"
)

var (
	version = "0.1.0"
)

var (
	cfgFile      string
	outputFormat string
	debug        bool
	printVersion bool
	metricsAddr  string
)

func init() {
	flag.StringVar(&cfgFile, "C", "", "configuration file")
	flag.StringVar(&outputFormat, "O", "", "output format, one of yaml|json format")
	flag.BoolVar(&debug, "D", false, "debug mode")
	flag.BoolVar(&printVersion, "V", false, "print version")
	flag.StringVar(&metricsAddr, "metrics", "", "metrics service address")
	flag.Parse()

	if printVersion {
		fmt.Fprintf(os.Stdout, "dgramd %s (%s %s/%s)\n",
			version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}
}

func main() {
	p := &program{}
	if err := svc.Run(p, syscall.SIGINT, syscall.SIGTERM); err != nil {
		logger.Default().Fatal(err)
	}
}
