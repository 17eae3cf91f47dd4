package otfmaturity

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nsip/otf-maturity/internal/cache"
	"github.com/nsip/otf-maturity/internal/model"
	"github.com/nsip/otf-maturity/internal/util"
	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 10 * time.Minute

var logLevels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
}

type OtfMaturityService struct {
	// embedded web server to handle assessment requests
	e *echo.Echo
	// the unique name of this service when running multiple instances
	serviceName string
	// the unique id of this service when running multiple instances
	serviceID string
	// the host address this service instance is running on
	serviceHost string
	// the port that this service instance is running on
	servicePort int
	// default questionnaire workbook location
	modelURL string
	// further workbook urls requests may name
	allowedModelURLs map[string]struct{}
	// lifetime of cached questionnaires
	cacheTTL time.Duration
	// timeout for fetching a workbook
	fetchTimeout time.Duration
	// optional shared cache
	redisAddr string
	logLevel  string

	cache   cache.Cache
	loader  *model.Loader
	metrics *metrics
	// clock for export timestamps
	now func() time.Time
}

//
// create a new service instance
//
func New(options ...Option) (*OtfMaturityService, error) {

	srvc := OtfMaturityService{now: time.Now, allowedModelURLs: map[string]struct{}{}}

	defaults := []Option{Name(""), ID(""), Host(""), CacheTTL(0), FetchTimeout(0), LogLevel("info")}
	if err := srvc.setOptions(append(defaults, options...)...); err != nil {
		return nil, err
	}
	if srvc.servicePort == 0 {
		if err := srvc.setOptions(Port(0)); err != nil {
			return nil, err
		}
	}

	if srvc.redisAddr != "" {
		srvc.cache = cache.NewRedis(redis.NewClient(&redis.Options{Addr: srvc.redisAddr}), "otf-maturity")
	} else {
		srvc.cache = cache.NewMemory()
	}
	srvc.loader = model.NewLoader(util.NewFetcher(srvc.fetchTimeout))
	srvc.metrics = newMetrics()

	srvc.e = echo.New()
	srvc.e.HideBanner = true
	srvc.e.Logger.SetLevel(logLevels[srvc.logLevel])
	srvc.e.Use(middleware.Recover())
	srvc.e.Use(middleware.RequestID())
	srvc.e.Use(middleware.BodyLimit("10M"))

	// add pingable method to know we're up
	srvc.e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, "OK")
	})
	srvc.e.GET("/model", srvc.buildModelHandler())
	srvc.e.POST("/model", srvc.buildUploadHandler())
	srvc.e.POST("/score", srvc.buildScoreHandler())
	srvc.e.POST("/export", srvc.buildExportHandler())
	srvc.e.GET("/metrics", echo.WrapHandler(srvc.metrics.handler()))

	return &srvc, nil
}

//
// start the service running
//
func (s *OtfMaturityService) Start() {

	address := fmt.Sprintf("%s:%d", s.serviceHost, s.servicePort)
	go func(addr string) {
		if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
			s.e.Logger.Info("error starting server: ", err, ", shutting down...")
			// attempt clean shutdown by raising sig int
			p, _ := os.FindProcess(os.Getpid())
			p.Signal(os.Interrupt)
		}
	}(address)

}

//
// shut the server down gracefully
//
func (s *OtfMaturityService) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(ctx); err != nil {
		fmt.Println("could not shut down server cleanly: ", err)
		s.e.Logger.Fatal(err)
	}
	if r, ok := s.cache.(*cache.Redis); ok {
		if err := r.Close(); err != nil {
			s.e.Logger.Warn("closing redis cache: ", err)
		}
	}
}

func (s *OtfMaturityService) PrintConfig() {

	fmt.Println("\n\tOTF-Maturity Service Configuration")
	fmt.Println("\t----------------------------------")

	s.printID()
	s.printModelConfig()

}

func (s *OtfMaturityService) printID() {
	fmt.Println("\tservice name:\t\t", s.serviceName)
	fmt.Println("\tservice ID:\t\t", s.serviceID)
	fmt.Println("\tservice host:\t\t", s.serviceHost)
	fmt.Println("\tservice port:\t\t", s.servicePort)
}

func (s *OtfMaturityService) printModelConfig() {
	fmt.Println("\tmodel url:\t\t", s.modelURL)
	for u := range s.allowedModelURLs {
		fmt.Println("\tallowed url:\t\t", u)
	}
	fmt.Println("\tcache ttl:\t\t", s.cacheTTL)
	fmt.Println("\tfetch timeout:\t\t", s.fetchTimeout)
	if s.redisAddr != "" {
		fmt.Println("\tredis cache:\t\t", s.redisAddr)
	} else {
		fmt.Println("\tcache:\t\t\t in-process")
	}
}
