// Command gerbera runs a UPnP AV media server.
//
// The server publishes a MediaServer device with the ContentDirectory and
// ConnectionManager services, advertises it over SSDP and mDNS, and serves
// the files of the configured content root.
//
// Usage:
//
//	gerbera [flags]
//
// Flags:
//
//	-config string        Configuration file path
//	-ip string            Bind address (overrides config)
//	-port int             Bind port, 0 for any (overrides config)
//	-log-level string     Log level: debug, info, warn, error (overrides config)
//	-protocol-log string  File path for protocol event logging (CBOR format)
//	-new-udn              Generate a new device UDN and save it to the state file
//	-write-config string  Write the effective configuration to a file and exit
//	-interactive          Start the interactive console
//
// Examples:
//
//	# Serve a media directory with a fresh identity
//	gerbera -config /etc/gerbera/config.yaml -new-udn
//
//	# Start from the defaults
//	gerbera -write-config /etc/gerbera/config.yaml
//
//	# Debug a control point against the console
//	gerbera -interactive -log-level debug -protocol-log /tmp/gerbera.glog
//
// The device UDN and the ContentDirectory SystemUpdateID are kept in the
// state file (device.state_file, GERBERA_STATE_FILE) so they survive
// restarts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/wareck/gerbera/cmd/gerbera/interactive"
	"github.com/wareck/gerbera/internal/logging"
	"github.com/wareck/gerbera/pkg/config"
	"github.com/wareck/gerbera/pkg/discovery"
	gerberalog "github.com/wareck/gerbera/pkg/log"
	"github.com/wareck/gerbera/pkg/persistence"
	"github.com/wareck/gerbera/pkg/registry"
	"github.com/wareck/gerbera/pkg/server"
	"github.com/wareck/gerbera/pkg/services/cds"
	"github.com/wareck/gerbera/pkg/services/cm"
	"github.com/wareck/gerbera/pkg/transport"
	"github.com/wareck/gerbera/pkg/upnp"
	"github.com/wareck/gerbera/pkg/version"
)

var (
	configFile  = flag.String("config", "", "Configuration file path")
	bindIP      = flag.String("ip", "", "Bind address (overrides config)")
	bindPort    = flag.Int("port", 0, "Bind port, 0 for any (overrides config)")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	protocolLog = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
	newUDN      = flag.Bool("new-udn", false, "Generate a new device UDN and save it to the state file")
	interact    = flag.Bool("interactive", false, "Start the interactive console")
	writeConfig = flag.String("write-config", "", "Write the effective configuration to a file and exit")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			return err
		}
		fmt.Printf("Wrote configuration to %s\n", *writeConfig)
		return nil
	}

	statePath, err := cfg.StatePath()
	if err != nil {
		return err
	}
	store := persistence.NewDeviceStateStore(statePath)
	state, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading device state: %w", err)
	}
	if state == nil {
		state = &persistence.DeviceState{}
	}

	generated, err := ensureUDN(cfg, state, store, *newUDN)
	if err != nil {
		return err
	}

	// The console owns the terminal, so logs go through it.
	var console *interactive.Console
	logger := logging.New(cfg.Logging, version.Current)
	if *interact {
		console, err = interactive.New()
		if err != nil {
			return err
		}
		logger = logging.NewWithWriter(console.Stderr(), cfg.Logging, version.Current)
	}
	slog.SetDefault(logger.Logger)

	if generated {
		logger.Info("generated device UDN", "udn", cfg.Device.UDN, "state_file", store.Path())
	}

	protocolLogger, closeProtocolLog, err := newProtocolLogger(cfg, logger)
	if err != nil {
		return err
	}
	defer closeProtocolLog()

	dir := cds.NewMemoryDirectory()
	dir.Restore(state.SystemUpdateID)
	cdsSvc := cds.New(cds.Config{
		Directory:     dir,
		BrowseTimeout: cfg.BrowseTimeout(),
		Logger:        logger.Component("cds"),
	})
	cmSvc := cm.New(cm.Config{
		SourceProtocolInfo: cfg.Content.ProtocolInfo,
		Logger:             logger.Component("cm"),
	})

	reg, err := registry.New(cdsSvc.Entry(), cmSvc.Entry())
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	docs, err := scpdDocuments()
	if err != nil {
		return err
	}

	adv, err := newAdvertiser(cfg)
	if err != nil {
		return err
	}
	if adv != nil {
		defer adv.Close()
	}

	var content http.Handler
	if cfg.Content.Root != "" {
		content = http.FileServer(http.FS(os.DirFS(cfg.Content.Root)))
	}

	tr := transport.NewHTTPTransport(transport.HTTPConfig{
		Advertiser:             adv,
		ContentHandler:         content,
		VirtualDirectory:       cfg.Network.VirtualDirectory,
		Documents:              docs,
		MaxSubscriptionTimeout: cfg.MaxSubscriptionTimeout(),
		Logger:                 logger.Component("transport"),
		ProtocolLogger:         protocolLogger,
	})

	srv, err := server.New(server.Config{
		UDN:              cfg.Device.UDN,
		FriendlyName:     cfg.Device.FriendlyName,
		Manufacturer:     cfg.Device.Manufacturer,
		ManufacturerURL:  cfg.Device.ManufacturerURL,
		ModelDescription: cfg.Device.ModelDescription,
		ModelName:        cfg.Device.ModelName,
		ModelNumber:      cfg.Device.ModelNumber,
		ModelURL:         cfg.Device.ModelURL,
		SerialNumber:     cfg.Device.SerialNumber,
		PresentationURL:  cfg.Device.PresentationURL,
		AliveInterval:    cfg.AliveInterval(),
		VirtualDirectory: cfg.Network.VirtualDirectory,
		Logger:           logger.Component("server"),
		ProtocolLogger:   protocolLogger,
	}, tr, reg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx, cfg.Network.IP, cfg.Network.Port); err != nil {
		return err
	}
	logger.Info("media server running",
		"udn", srv.UDN(),
		"ip", srv.IP(),
		"port", srv.Port(),
		"virtual_url", srv.VirtualURL())

	if cfg.Content.Root != "" {
		importContent(ctx, logger, dir, tr, cfg.Content.Root, srv.VirtualURL())
		saveState(logger, store, state, dir)
	}

	if console != nil {
		go console.Run(ctx, cancel, interactive.Target{
			Server:   srv,
			Notifier: tr,
			Services: reg.Descriptions(),
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := srv.Stop(); err != nil {
		logger.Warn("stop", "error", err)
	}
	saveState(logger, store, state, dir)
	return nil
}

// applyFlags overrides config values with flags set on the command line.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ip":
			cfg.Network.IP = *bindIP
		case "port":
			cfg.Network.Port = *bindPort
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "protocol-log":
			cfg.Logging.ProtocolLog = *protocolLog
		}
	})
}

// ensureUDN resolves the device UDN: the configured one, else the one in
// state. Otherwise, or when regenerate is set, a new UDN is generated and
// must be saved to store before the device may start.
func ensureUDN(cfg *config.Config, state *persistence.DeviceState, store *persistence.DeviceStateStore, regenerate bool) (bool, error) {
	switch {
	case regenerate && cfg.Device.UDN != "":
		return false, errors.New("-new-udn: device.udn is set in the configuration or GERBERA_UDN")
	case regenerate:
	case cfg.Device.UDN != "":
		return false, nil
	case state.UDN != "":
		cfg.Device.UDN = state.UDN
		return false, nil
	}

	udn := config.NewUDN()
	state.UDN = udn
	if err := store.Save(state); err != nil {
		return false, fmt.Errorf("saving generated UDN to %s: %w", store.Path(), err)
	}
	cfg.Device.UDN = udn
	return true, nil
}

// saveState records the published SystemUpdateID.
func saveState(logger *logging.Logger, store *persistence.DeviceStateStore, state *persistence.DeviceState, dir *cds.MemoryDirectory) {
	state.SystemUpdateID = dir.SystemUpdateID()
	if err := store.Save(state); err != nil {
		logger.Warn("saving device state", "path", store.Path(), "error", err)
	}
}

// newProtocolLogger combines the CBOR file log with debug console output.
func newProtocolLogger(cfg *config.Config, logger *logging.Logger) (gerberalog.Logger, func(), error) {
	var loggers []gerberalog.Logger
	closeFn := func() {}

	if cfg.Logging.ProtocolLog != "" {
		fl, err := gerberalog.NewFileLogger(cfg.Logging.ProtocolLog)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create protocol logger: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = func() {
			if n := fl.Dropped(); n > 0 {
				logger.Warn("protocol log dropped events", "count", n)
			}
			if err := fl.Close(); err != nil {
				logger.Warn("closing protocol log", "error", err)
			}
		}
		logger.Info("protocol logging enabled", "path", cfg.Logging.ProtocolLog)
	}
	if logging.ParseLevel(cfg.Logging.Level) <= slog.LevelDebug {
		loggers = append(loggers, gerberalog.NewSlogAdapter(logger.Component("protocol")))
	}

	multi := gerberalog.NewMultiLogger(loggers...)
	if multi.Len() == 0 {
		return gerberalog.NoopLogger{}, closeFn, nil
	}
	return multi, closeFn, nil
}

// newAdvertiser builds the enabled discovery advertisers. It returns nil
// when discovery is disabled.
func newAdvertiser(cfg *config.Config) (discovery.Advertiser, error) {
	var advs []discovery.Advertiser

	if cfg.Discovery.SSDP {
		ssdpCfg := discovery.DefaultSSDPConfig()
		ssdpCfg.Interface = cfg.Network.Interface
		ssdpCfg.TTL = cfg.Discovery.TTL
		ssdp, err := discovery.NewSSDPAdvertiser(ssdpCfg)
		if err != nil {
			return nil, fmt.Errorf("ssdp: %w", err)
		}
		advs = append(advs, ssdp)
	}
	if cfg.Discovery.MDNS {
		mdnsCfg := discovery.DefaultMDNSConfig()
		mdnsCfg.Interface = cfg.Network.Interface
		advs = append(advs, discovery.NewMDNSAdvertiser(mdnsCfg))
	}

	if len(advs) == 0 {
		return nil, nil
	}
	return discovery.NewMultiAdvertiser(advs...), nil
}

// scpdDocuments renders the service descriptions served by the transport.
func scpdDocuments() (map[string][]byte, error) {
	docs := make(map[string][]byte, 2)
	for path, build := range map[string]func() ([]byte, error){
		cds.SCPDPath: cds.SCPD().Marshal,
		cm.SCPDPath:  cm.SCPD().Marshal,
	} {
		doc, err := build()
		if err != nil {
			return nil, fmt.Errorf("scpd %s: %w", path, err)
		}
		docs[path] = doc
	}
	return docs, nil
}

// importContent publishes the content root and tells subscribers the
// directory changed.
func importContent(ctx context.Context, logger *logging.Logger, dir *cds.MemoryDirectory, tr *transport.HTTPTransport, root, baseURL string) {
	n, err := dir.Import(ctx, os.DirFS(root), cds.RootID, baseURL)
	if err != nil {
		logger.Warn("content import incomplete", "root", root, "error", err)
	}
	logger.Info("content imported", "root", root, "items", n)

	updateID := strconv.FormatUint(uint64(dir.SystemUpdateID()), 10)
	err = tr.Notify(ctx, cds.ServiceID, upnp.StateVariable{Name: "SystemUpdateID", Value: updateID})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("notify update", "error", err)
	}
}
