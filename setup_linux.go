//go:build linux

package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"modtap/config"
	"modtap/monitor"
)

// runSetup walks the user through picking which keyboards to watch and
// prints the matching config snippet.
func runSetup() int {
	keyboards, err := monitor.ListKeyboards()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(keyboards) == 0 {
		fmt.Fprintln(os.Stderr, "No keyboard devices found. Are you in the 'input' group?")
		fmt.Fprintln(os.Stderr, "Fix with: sudo usermod -aG input $USER (then log out and back in)")
		return 1
	}

	selected, err := pickKeyboards(keyboards)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Println()
	if len(selected) == 0 {
		fmt.Println("No devices selected: modtap will watch every keyboard it finds.")
		fmt.Println("That is the default, so no config change is needed.")
		return 0
	}

	path, err := config.DefaultPath()
	if err != nil {
		path = "your config file"
	}
	fmt.Printf("Add this to %s:\n\n", path)
	fmt.Println("[keys]")
	fmt.Print("devices = [")
	for i, kb := range selected {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("%q", kb.Path)
	}
	fmt.Println("]")
	return 0
}

func pickKeyboards(keyboards []monitor.Keyboard) ([]monitor.Keyboard, error) {
	// Raw mode for arrow key input
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	checked := make([]bool, len(keyboards))

	renderList := func() {
		fmt.Print("\r\x1b[J") // clear from cursor to end
		fmt.Print("Select keyboards to watch (space to toggle, Enter to confirm):\r\n")
		fmt.Print("Leave everything unchecked to watch every keyboard.\r\n\r\n")
		for i, kb := range keyboards {
			mark := " "
			if checked[i] {
				mark = "x"
			}
			line := fmt.Sprintf("[%s] %s  (%s)", mark, kb.Name, kb.Path)
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s\x1b[0m\r\n", line)
			} else {
				fmt.Printf("    %s\r\n", line)
			}
		}
	}

	// Initial render
	renderList()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		if n == 1 {
			switch buf[0] {
			case 13: // Enter
				fmt.Print("\r\n")
				term.Restore(fd, oldState)
				var out []monitor.Keyboard
				for i, kb := range keyboards {
					if checked[i] {
						out = append(out, kb)
					}
				}
				return out, nil
			case 3: // Ctrl+C
				fmt.Print("\r\n")
				term.Restore(fd, oldState)
				os.Exit(0)
			case ' ':
				checked[cursor] = !checked[cursor]
			case 'j': // vim down
				if cursor < len(keyboards)-1 {
					cursor++
				}
			case 'k': // vim up
				if cursor > 0 {
					cursor--
				}
			}
		} else if n == 3 && buf[0] == 0x1b && buf[1] == '[' {
			switch buf[2] {
			case 'A': // Up arrow
				if cursor > 0 {
					cursor--
				}
			case 'B': // Down arrow
				if cursor < len(keyboards)-1 {
					cursor++
				}
			}
		}

		// Redraw: move up to overwrite
		lines := len(keyboards) + 3
		fmt.Printf("\x1b[%dA", lines)
		renderList()
	}
}
