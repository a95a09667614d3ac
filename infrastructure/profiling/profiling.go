// Package profiling starts the optional pprof listener and Pyroscope
// continuous profiler.
package profiling

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"time"

	"github.com/grafana/pyroscope-go"

	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
)

const (
	defaultPprofAddr   = "localhost:6060"
	defaultPyroscope   = "http://pyroscope:4040"
	defaultEnvironment = "development"
	readHeaderTimeout  = 5 * time.Second
)

// Config controls which profilers run.
type Config struct {
	Pprof       bool   `env:"ENABLE_PROFILING"            yaml:"pprof"`
	PprofAddr   string `env:"PPROF_ADDR"                  yaml:"pprof_addr"`
	Continuous  bool   `env:"ENABLE_CONTINUOUS_PROFILING" yaml:"continuous"`
	ServerURL   string `env:"PYROSCOPE_SERVER_URL"        yaml:"server_url"`
	Environment string `env:"PYROSCOPE_ENVIRONMENT"       yaml:"environment"`
}

// SetDefaults fills unset addresses.
func (c *Config) SetDefaults() {
	if c.PprofAddr == "" {
		c.PprofAddr = defaultPprofAddr
	}
	if c.ServerURL == "" {
		c.ServerURL = defaultPyroscope
	}
	if c.Environment == "" {
		c.Environment = defaultEnvironment
	}
}

// Profiler holds whatever Start brought up. The zero value is inert.
type Profiler struct {
	server    *http.Server
	addr      string
	pyroscope *pyroscope.Profiler
}

// Start brings up the profilers enabled in cfg. The pprof listener binds
// before Start returns so address errors surface to the caller.
func Start(cfg Config, service, version string, log infralogger.Logger) (*Profiler, error) {
	cfg.SetDefaults()
	p := &Profiler{}

	if cfg.Pprof {
		ln, err := net.Listen("tcp", cfg.PprofAddr)
		if err != nil {
			return nil, fmt.Errorf("listen pprof %s: %w", cfg.PprofAddr, err)
		}
		p.server = &http.Server{Handler: Handler(), ReadHeaderTimeout: readHeaderTimeout}
		p.addr = ln.Addr().String()
		go func() {
			if serveErr := p.server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				log.Warn("pprof server stopped", infralogger.Error(serveErr))
			}
		}()
		log.Info("pprof server started", infralogger.String("addr", p.addr))
	}

	if cfg.Continuous {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "north-cloud." + service,
			ServerAddress:   cfg.ServerURL,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
				pyroscope.ProfileGoroutines,
			},
			Tags: map[string]string{
				"environment": cfg.Environment,
				"version":     version,
				"hostname":    hostname(),
				"go_version":  runtime.Version(),
			},
		})
		if err != nil {
			_ = p.Stop()
			return nil, fmt.Errorf("start pyroscope: %w", err)
		}
		p.pyroscope = profiler
		log.Info("Pyroscope profiling started",
			infralogger.String("server", cfg.ServerURL),
			infralogger.String("environment", cfg.Environment),
		)
	}

	return p, nil
}

// Handler serves the standard /debug/pprof endpoints.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// Addr reports the bound pprof address, or "" when pprof is off.
func (p *Profiler) Addr() string {
	if p == nil {
		return ""
	}
	return p.addr
}

// Stop shuts down everything Start brought up.
func (p *Profiler) Stop() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.server != nil {
		errs = append(errs, p.server.Close())
	}
	if p.pyroscope != nil {
		errs = append(errs, p.pyroscope.Stop())
	}
	return errors.Join(errs...)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
