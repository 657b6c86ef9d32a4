// Package doctor walks the user through interactive checks of every
// capability the daemon needs: configuration, device access, output
// synthesis and live tap detection.
package doctor

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"modtap/config"
	"modtap/hotkey"
	"modtap/log"
	"modtap/monitor"
	"modtap/output"
	"modtap/tap"
)

// Run executes interactive diagnostic checks and returns an exit code
// (0=all pass, 1=any fail).
func Run(configPath string) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("modtap doctor - interactive system diagnostics")
	fmt.Println("===============================================")

	allPass := true

	cfg, ok := checkConfig(configPath)
	if !ok {
		allPass = false
	}
	if allPass && !checkMonitor() {
		allPass = false
	}
	if allPass && !checkOutput(cfg) {
		allPass = false
	}
	if allPass && !checkLiveTap(cfg) {
		allPass = false
	}
	if allPass && !checkHotkey(cfg) {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkConfig(path string) (config.Config, bool) {
	fmt.Println()
	fmt.Println("[1/5] Configuration")

	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			fmt.Printf("  FAIL: %v\n", err)
			return config.Config{}, false
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return config.Config{}, false
	}
	fmt.Printf("  PASS: watching %s, tap window %dms, actions %s/%s\n",
		cfg.Keys.Modifier, cfg.Tap.WindowMS, cfg.Actions.Primary, cfg.Actions.Secondary)
	return cfg, true
}

func checkMonitor() bool {
	fmt.Println()
	fmt.Println("[2/5] Keyboard monitoring")

	msg, err := monitor.Diagnose()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}

func checkOutput(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[3/5] Output driver")

	actions := []tap.Action{tap.Action(cfg.Actions.Primary), tap.Action(cfg.Actions.Secondary)}
	sink, err := output.New(cfg.Output.Driver, actions)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		if runtime.GOOS == "linux" && cfg.Output.Driver != "fcitx" {
			fmt.Println("  Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		}
		return false
	}
	sink.Close()

	driver := cfg.Output.Driver
	if driver == "" {
		driver = "keys"
	}
	fmt.Printf("  PASS: %s driver initialized\n", driver)
	return true
}

// discardSink lets the live check observe decisions without actually
// switching the user's input method.
type discardSink struct{}

func (discardSink) Emit(tap.Action) {}

func checkLiveTap(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[4/5] Live tap detection")

	left, right, err := monitor.LookupModifier(cfg.Keys.Modifier)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	decisions := make(chan tap.Decision, 8)
	engine := tap.New(tap.Config{
		MaxTapDuration: cfg.Window(),
		Keys:           [2]tap.Key{left, right},
		Actions:        [2]tap.Action{tap.Action(cfg.Actions.Primary), tap.Action(cfg.Actions.Secondary)},
		OnDecision: func(d tap.Decision) {
			select {
			case decisions <- d:
			default:
			}
		},
	}, monitor.New(monitor.Options{Devices: cfg.Keys.Devices}), discardSink{}, log.Logger())

	if err := engine.Start(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	defer engine.Stop()

	fmt.Printf("Tap and release the LEFT %s key...\n", cfg.Keys.Modifier)
	if !waitFired(decisions, tap.Primary) {
		return false
	}
	fmt.Printf("Tap and release the RIGHT %s key...\n", cfg.Keys.Modifier)
	ok := waitFired(decisions, tap.Secondary)
	resetTerminal()
	return ok
}

func waitFired(decisions <-chan tap.Decision, side tap.Side) bool {
	deadline := time.After(10 * time.Second)
	for {
		select {
		case d := <-decisions:
			if d.Side != side {
				continue
			}
			if d.Fired() {
				fmt.Printf("  PASS: %s tap detected (%dms)\n", side, d.Duration.Milliseconds())
				return true
			}
			fmt.Printf("  press not counted (%s), try again\n", d.Reason)
		case <-deadline:
			fmt.Println("  FAIL: timeout waiting for tap")
			return false
		}
	}
}

func checkHotkey(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[5/5] Toggle hotkey")

	if cfg.Control.Hotkey == "" {
		fmt.Println("  SKIP: no hotkey configured")
		return true
	}
	combo, err := config.ParseCombo(cfg.Control.Hotkey)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	hk := hotkey.New(combo)
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	fmt.Printf("Press %s...\n", cfg.Control.Hotkey)
	select {
	case <-hk.Presses():
		fmt.Println("  PASS: hotkey detected")
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func setupInterruptHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		println("\nInterrupted")
		os.Exit(1)
	}()
}
