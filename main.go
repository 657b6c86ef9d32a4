package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"modtap/config"
	"modtap/doctor"
	"modtap/hotkey"
	"modtap/log"
	"modtap/login"
	"modtap/monitor"
	"modtap/output"
	"modtap/shutdown"
	"modtap/tap"
)

var version = "dev"

// currentEngine backs the metrics endpoint, which reads counters from
// whatever engine the reload loop has most recently installed.
var currentEngine atomic.Pointer[tap.Engine]

func run() {
	configFlag := flag.String("config", "", "config file path (default: OS-specific location)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	windowFlag := flag.Duration("window", 0, "override the tap window (e.g. 250ms)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	calibrateFlag := flag.Bool("calibrate", false, "Measure your tap timing and suggest a window")
	setupFlag := flag.Bool("setup", false, "Select keyboard devices to monitor")
	loginFlag := flag.String("login", "", "Manage start at login: on, off or status")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("modtap %s\n", version)
		os.Exit(0)
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: resolve config path: %v\n", err)
			os.Exit(1)
		}
	}

	if *doctorFlag {
		os.Exit(doctor.Run(cfgPath))
	}
	if *setupFlag {
		os.Exit(runSetup())
	}
	if *loginFlag != "" {
		os.Exit(runLogin(*loginFlag))
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if ms := windowFlag.Milliseconds(); ms > 0 {
		cfg.Tap.WindowMS = int(ms)
	}

	// Resolve log directory early: flag, then MODTAP_LOG_PATH, then the
	// config file, then the OS default.
	dirArg := *logPathFlag
	if dirArg == "" && os.Getenv("MODTAP_LOG_PATH") == "" {
		dirArg = cfg.Log.Path
	}
	logPath, err := log.ResolveDir(dirArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *calibrateFlag {
		os.Exit(runCalibrate(cfg))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	session := xid.New().String()
	engineLog := sessionLogger(session)
	if l := log.Logger(); l != nil {
		l.Info().
			Str("session", session).
			Str("version", version).
			Str("modifier", cfg.Keys.Modifier).
			Int("window_ms", cfg.Tap.WindowMS).
			Msg("session_start")
	}

	sink, err := buildSink(cfg)
	if err != nil {
		log.Errorf("output init: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if runtime.GOOS == "linux" && cfg.Output.Driver != "fcitx" {
			fmt.Println("Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		}
		os.Exit(1)
	}

	engine, err := buildEngine(cfg, sink, engineLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	currentEngine.Store(engine)

	if cfg.Enabled {
		if err := engine.Start(); err != nil {
			log.Errorf("start monitoring: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	var hk hotkey.Hotkey
	var presses <-chan struct{}
	if cfg.Control.Hotkey != "" {
		hk, presses = registerHotkey(cfg.Control.Hotkey)
	}

	if cfg.Metrics.Listen != "" {
		go serveMetrics(cfg.Metrics.Listen)
	}

	reloads := make(chan config.Config, 4)
	stopWatch, err := config.Watch(cfgPath, func(c config.Config) {
		select {
		case reloads <- c:
		default:
		}
	})
	if err != nil {
		log.Warnf("config watch unavailable: %v", err)
	}

	fmt.Printf("modtap %s: tap left/right %s for %s/%s (window %dms)\n",
		version, cfg.Keys.Modifier, cfg.Actions.Primary, cfg.Actions.Secondary, cfg.Tap.WindowMS)
	if hk != nil {
		fmt.Printf("Press %s to pause or resume.\n", cfg.Control.Hotkey)
	}

	sigChan := shutdown.Notify()

	for {
		select {
		case <-sigChan:
			engine.Stop()
			if hk != nil {
				hk.Unregister()
			}
			if stopWatch != nil {
				stopWatch()
			}
			sink.Close()
			if l := log.Logger(); l != nil {
				l.Info().Str("session", session).Msg("session_end")
			}
			log.Close()
			os.Exit(0)

		case <-presses:
			togglePause(engine)

		case newCfg := <-reloads:
			wasRunning := engine.Running()
			shouldRun := wasRunning
			if newCfg.Enabled != cfg.Enabled {
				shouldRun = newCfg.Enabled
			}

			newSink := sink
			if newCfg.Output != cfg.Output || newCfg.Actions != cfg.Actions {
				s, err := buildSink(newCfg)
				if err != nil {
					// Keep the old config wholesale; the new actions may
					// not be expressible by the old sink.
					log.Errorf("config reload: output: %v", err)
					continue
				}
				newSink = s
			}

			newEngine, err := buildEngine(newCfg, newSink, engineLog)
			if err != nil {
				log.Errorf("config reload: %v", err)
				if newSink != sink {
					newSink.Close()
				}
				continue
			}

			if newCfg.Control.Hotkey != cfg.Control.Hotkey {
				if hk != nil {
					hk.Unregister()
					hk, presses = nil, nil
				}
				if newCfg.Control.Hotkey != "" {
					hk, presses = registerHotkey(newCfg.Control.Hotkey)
				}
			}

			// Old engine stops before the old sink closes, so nothing
			// emits into a sink whose sender has already exited.
			engine.Stop()
			if newSink != sink {
				sink.Close()
				sink = newSink
			}
			engine = newEngine
			currentEngine.Store(engine)
			cfg = newCfg

			if shouldRun {
				if err := engine.Start(); err != nil {
					log.Errorf("config reload: start monitoring: %v", err)
				}
			}
			log.Infof("config reloaded: modifier=%s window=%dms", cfg.Keys.Modifier, cfg.Tap.WindowMS)
		}
	}
}

// sessionLogger tags engine log lines with the daemon session id.
func sessionLogger(session string) *zerolog.Logger {
	l := log.Logger()
	if l == nil {
		return nil
	}
	sl := l.With().Str("session", session).Logger()
	return &sl
}

func buildSink(cfg config.Config) (output.Sink, error) {
	actions := []tap.Action{tap.Action(cfg.Actions.Primary), tap.Action(cfg.Actions.Secondary)}
	return output.New(cfg.Output.Driver, actions)
}

func buildEngine(cfg config.Config, sink tap.Sink, logger *zerolog.Logger) (*tap.Engine, error) {
	left, right, err := monitor.LookupModifier(cfg.Keys.Modifier)
	if err != nil {
		return nil, err
	}
	tapCfg := tap.Config{
		MaxTapDuration: cfg.Window(),
		Keys:           [2]tap.Key{left, right},
		Actions:        [2]tap.Action{tap.Action(cfg.Actions.Primary), tap.Action(cfg.Actions.Secondary)},
	}
	src := monitor.New(monitor.Options{Devices: cfg.Keys.Devices})
	return tap.New(tapCfg, src, sink, logger), nil
}

// togglePause flips monitoring in response to the control hotkey.
func togglePause(engine *tap.Engine) {
	if engine.Running() {
		engine.Stop()
		log.Info("monitoring paused")
	} else if err := engine.Start(); err != nil {
		log.Errorf("resume monitoring: %v", err)
	} else {
		log.Info("monitoring resumed")
	}
}

func registerHotkey(chord string) (hotkey.Hotkey, <-chan struct{}) {
	combo, err := config.ParseCombo(chord)
	if err != nil {
		log.Warnf("toggle hotkey %q: %v", chord, err)
		return nil, nil
	}
	hk := hotkey.New(combo)
	if err := hk.Register(); err != nil {
		log.Warnf("toggle hotkey unavailable: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: toggle hotkey unavailable: %v\n", err)
		return nil, nil
	}
	return hk, hk.Presses()
}

func runLogin(mode string) int {
	switch mode {
	case "on":
		if err := login.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println("modtap will start at login.")
	case "off":
		if err := login.Disable(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println("modtap will no longer start at login.")
	case "status":
		if login.Enabled() {
			fmt.Println("start at login: enabled")
		} else {
			fmt.Println("start at login: disabled")
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: -login takes on, off or status (got %q)\n", mode)
		return 1
	}
	return 0
}
