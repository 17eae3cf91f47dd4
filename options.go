package otfmaturity

import (
	"net/url"
	"strings"
	"time"

	"github.com/nsip/otf-maturity/internal/util"
	"github.com/pkg/errors"
)

type Option func(*OtfMaturityService) error

//
// apply all supplied options to the service
// returns any error encountered while applying the options
//
func (srvc *OtfMaturityService) setOptions(options ...Option) error {
	for _, opt := range options {
		if err := opt(srvc); err != nil {
			return err
		}
	}
	return nil
}

//
// a name for this service instance,
// generated if not provided
//
func Name(name string) Option {
	return func(s *OtfMaturityService) error {
		if name != "" {
			s.serviceName = name
			return nil
		}
		s.serviceName = util.GenerateName()
		return nil
	}
}

//
// an id for this service instance,
// generated if not provided
//
func ID(id string) Option {
	return func(s *OtfMaturityService) error {
		if id != "" {
			s.serviceID = id
			return nil
		}
		s.serviceID = util.GenerateID()
		return nil
	}
}

//
// host address for the service; defaults to localhost
//
func Host(hostName string) Option {
	return func(s *OtfMaturityService) error {
		if hostName != "" {
			s.serviceHost = hostName
			return nil
		}
		s.serviceHost = "localhost"
		return nil
	}
}

//
// port for the service; a free port is found if 0
//
func Port(port int) Option {
	return func(s *OtfMaturityService) error {
		if port != 0 {
			s.servicePort = port
			return nil
		}
		p, err := util.AvailablePort()
		if err != nil {
			return err
		}
		s.servicePort = p
		return nil
	}
}

//
// url of the questionnaire workbook used when a request
// does not name one
//
func ModelURL(u string) Option {
	return func(s *OtfMaturityService) error {
		if u == "" {
			s.modelURL = ""
			return nil
		}
		if _, err := url.ParseRequestURI(u); err != nil {
			return errors.Wrap(err, "invalid model url")
		}
		s.modelURL = u
		return nil
	}
}

//
// further workbook urls that requests may name through
// ?url= or a url: model id; the configured model url is
// always allowed
//
func AllowModelURLs(urls ...string) Option {
	return func(s *OtfMaturityService) error {
		for _, u := range urls {
			u = strings.TrimSpace(u)
			if u == "" {
				continue
			}
			if _, err := url.ParseRequestURI(u); err != nil {
				return errors.Wrapf(err, "invalid allowed model url %q", u)
			}
			s.allowedModelURLs[u] = struct{}{}
		}
		return nil
	}
}

//
// how long a loaded questionnaire is reused before the
// source is read again
//
func CacheTTL(d time.Duration) Option {
	return func(s *OtfMaturityService) error {
		if d < 0 {
			return errors.New("cache ttl cannot be negative")
		}
		if d == 0 {
			d = defaultCacheTTL
		}
		s.cacheTTL = d
		return nil
	}
}

//
// timeout for fetching the questionnaire workbook
//
func FetchTimeout(d time.Duration) Option {
	return func(s *OtfMaturityService) error {
		if d <= 0 {
			d = util.DefaultFetchTimeout
		}
		s.fetchTimeout = d
		return nil
	}
}

//
// address of a redis server used to share the questionnaire
// cache between instances; in-process cache if empty
//
func Redis(addr string) Option {
	return func(s *OtfMaturityService) error {
		s.redisAddr = addr
		return nil
	}
}

//
// one of debug, info, warn, error; info if empty
//
func LogLevel(level string) Option {
	return func(s *OtfMaturityService) error {
		if level == "" {
			level = "info"
		}
		if _, ok := logLevels[level]; !ok {
			return errors.Errorf("unknown log level %q", level)
		}
		s.logLevel = level
		return nil
	}
}
