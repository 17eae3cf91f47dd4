package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	otfmat "github.com/nsip/otf-maturity"
	"github.com/peterbourgon/ff/v3"
)

func main() {

	fs := flag.NewFlagSet("otf-maturity", flag.ExitOnError)
	var (
		_            = fs.String("config", "", "config file (optional), json format.")
		serviceName  = fs.String("name", "", "name for this maturity service instance")
		serviceID    = fs.String("id", "", "id for this maturity service instance, leave blank to auto-generate a unique id")
		serviceHost  = fs.String("host", "localhost", "name/address of host for this service")
		servicePort  = fs.Int("port", 0, "port to run service on, if not specified will assign an available port automatically")
		modelURL     = fs.String("modelURL", "", "url of the questionnaire workbook (xlsx) used when requests do not supply one")
		allowURLs    = fs.String("allowURLs", "", "comma separated list of further workbook urls requests may name")
		cacheTTL     = fs.Duration("cacheTTL", 10*time.Minute, "how long a loaded questionnaire is reused")
		fetchTimeout = fs.Duration("fetchTimeout", 30*time.Second, "timeout when fetching the questionnaire workbook")
		redisAddr    = fs.String("redis", "", "address of redis server to share the questionnaire cache, in-process cache if blank")
		logLevel     = fs.String("logLevel", "info", "log level: debug, info, warn or error")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
		ff.WithEnvVarPrefix("OTF_MATURITY_SRVC"),
	); err != nil {
		fmt.Printf("\nCannot parse otf-maturity configuration:\n%s\n\n", err)
		os.Exit(1)
	}

	opts := []otfmat.Option{
		otfmat.Name(*serviceName),
		otfmat.ID(*serviceID),
		otfmat.Host(*serviceHost),
		otfmat.Port(*servicePort),
		otfmat.ModelURL(*modelURL),
		otfmat.AllowModelURLs(strings.Split(*allowURLs, ",")...),
		otfmat.CacheTTL(*cacheTTL),
		otfmat.FetchTimeout(*fetchTimeout),
		otfmat.Redis(*redisAddr),
		otfmat.LogLevel(*logLevel),
	}

	srvc, err := otfmat.New(opts...)
	if err != nil {
		fmt.Printf("\nCannot create otf-maturity service:\n%s\n\n", err)
		os.Exit(1)
	}

	srvc.PrintConfig()

	// signal handler for shutdown
	closed := make(chan struct{})
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\notf-maturity shutting down")
		srvc.Shutdown()
		fmt.Println("otf-maturity closed")
		close(closed)
	}()

	srvc.Start()

	// block until shutdown by sig-handler
	<-closed

}
