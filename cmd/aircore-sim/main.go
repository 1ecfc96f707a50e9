// Command aircore-sim is a host-side demo binary that wires the flash
// parameter store, WebSocket stream codec and URL/HTTP parser-builder
// together against a file-backed flash image, for exercising the module
// without real microcontroller hardware. Grounded on ehrlich-b-go-ublk's
// cmd/ublk-mem/main.go for the flag-parse/logger-setup/run shape.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/cristidbr/aircore/backend"
	"github.com/cristidbr/aircore/config"
	"github.com/cristidbr/aircore/flash"
	"github.com/cristidbr/aircore/internal/logging"
	"github.com/cristidbr/aircore/urlhttp"
	"github.com/cristidbr/aircore/wsstream"
)

func main() {
	var (
		stateDir   = flag.String("state-dir", "aircore-sim-state", "directory holding the simulated flash sector files")
		configPath = flag.String("config", "", "path to a JSONC config file (routing table, sector overrides)")
		verbose    = flag.Bool("v", false, "verbose logging")
		request    = flag.String("request", "", "raw HTTP request text to parse and print")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	router, err := cfg.BuildRouter()
	if err != nil {
		logger.Error("invalid routing table", "error", err)
		os.Exit(1)
	}

	driver, err := backend.NewFileDriver(*stateDir, cfg.PrimaryAddr, cfg.SecondaryAddr)
	if err != nil {
		logger.Error("failed to open flash state directory", "error", err)
		os.Exit(1)
	}

	store := flash.NewStore(driver, cfg.FlashConfig(), logger)
	if err := store.Setup(); err != nil {
		logger.Error("flash setup failed", "error", err)
		os.Exit(1)
	}
	logger.Info("flash store ready", "dir", *stateDir)

	if *request != "" {
		runParseDemo(*request, router)
		return
	}

	runSaveReadDemo(store, logger)
	runFrameDemo(logger)
}

func runSaveReadDemo(store *flash.Store, logger *logging.Logger) {
	const deviceNameID = 1
	if err := store.Save(deviceNameID, []byte("aircore-node")); err != nil {
		logger.Error("save failed", "error", err)
		return
	}
	value, found, err := store.Read(deviceNameID)
	if err != nil {
		logger.Error("read failed", "error", err)
		return
	}
	if !found {
		logger.Warn("expected parameter not found after save")
		return
	}
	fmt.Printf("parameter 1 = %q\n", string(value))
}

func runFrameDemo(logger *logging.Logger) {
	frame, err := wsstream.Encode(wsstream.OpText, []byte("hello"), true, nil)
	if err != nil {
		logger.Error("encode failed", "error", err)
		return
	}

	var got string
	decoder := wsstream.NewDecoder(wsstream.FrameHandlerFunc(func(opcode wsstream.Opcode, payload []byte) {
		got = string(payload)
	}), 0)
	if _, err := decoder.Write(frame); err != nil {
		logger.Error("decode failed", "error", err)
		return
	}
	fmt.Printf("round-tripped ws frame payload = %q\n", got)
}

func runParseDemo(raw string, router *urlhttp.Router) {
	req, err := urlhttp.ParseRequest(raw, router)
	if err != nil {
		fmt.Printf("parse error: %v (method=%s)\n", err, req.Method)
		return
	}
	fmt.Printf("method=%s protocol=%s hostname=%s path=%s\n", req.Method, req.Protocol, req.URL.Hostname, req.URL.Path)
}
