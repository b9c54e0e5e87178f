package ui

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/eiannone/keyboard"
)

const banner = `
 _   _ ___ _   _ _____ _____ ____  ___ ____
| \ | |_ _| \ | | ____|_   _|  _ \|_ _/ ___|
|  \| || ||  \| |  _|   | | | |_) || |\___ \
| |\  || || |\  | |___  | | |  _ < | | ___) |
|_| \_|___|_| \_|_____| |_| |_| \_\___|____/
`

type MenuItem struct {
	Label string
	Value string
}

type Menu struct {
	Title    string
	Items    []MenuItem
	Selected int
	Width    int
}

func NewMenu(title string, items []MenuItem) *Menu {
	return &Menu{
		Title:    title,
		Items:    items,
		Selected: 0,
		Width:    60,
	}
}

func (m *Menu) clearScreen() {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "cls")
	} else {
		cmd = exec.Command("clear")
	}
	cmd.Stdout = os.Stdout
	cmd.Run()
}

func (m *Menu) border(left, fill, right string) string {
	return left + strings.Repeat(fill, m.Width-2) + right
}

func (m *Menu) centerText(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n >= width-2 {
		return string([]rune(text)[:width-2])
	}
	padding := (width - n - 2) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-n-padding-2)
}

// Frame draws the menu box as a string.
func (m *Menu) Frame() string {
	var b strings.Builder
	b.WriteString(m.border("╔", "═", "╗") + "\n")
	b.WriteString("║" + m.centerText(m.Title, m.Width) + "║\n")
	b.WriteString(m.border("╠", "═", "╣") + "\n")

	for i, item := range m.Items {
		prefix := "  "
		if i == m.Selected {
			prefix = "► "
		}
		text := m.centerText(prefix+item.Label, m.Width)
		if i == m.Selected {
			b.WriteString("║\033[7m" + text + "\033[0m║\n") // Highlighted
		} else {
			b.WriteString("║" + text + "║\n")
		}
	}

	b.WriteString(m.border("╚", "═", "╝") + "\n")
	return b.String()
}

func (m *Menu) render() {
	m.clearScreen()
	fmt.Print(banner)
	fmt.Println()
	fmt.Print(m.Frame())
	fmt.Println()
	fmt.Println("Use ↑/↓ arrows to navigate, Enter to select, 'q' to quit")
}

func (m *Menu) moveUp() {
	if m.Selected > 0 {
		m.Selected--
	} else {
		m.Selected = len(m.Items) - 1 // Wrap to bottom
	}
}

func (m *Menu) moveDown() {
	if m.Selected < len(m.Items)-1 {
		m.Selected++
	} else {
		m.Selected = 0 // Wrap to top
	}
}

// handleKey applies one key press. done is true once the menu has a result.
func (m *Menu) handleKey(char rune, key keyboard.Key) (value string, done bool) {
	switch key {
	case keyboard.KeyArrowUp:
		m.moveUp()
	case keyboard.KeyArrowDown:
		m.moveDown()
	case keyboard.KeyEnter:
		return m.Items[m.Selected].Value, true
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return "exit", true
	}

	switch char {
	case 'k', 'K':
		m.moveUp()
	case 'j', 'J':
		m.moveDown()
	case 'q', 'Q':
		return "exit", true
	}
	return "", false
}

// Show runs the menu until an item is chosen and returns its value, or
// "exit" when the user backs out.
func (m *Menu) Show() string {
	if len(m.Items) == 0 {
		return "exit"
	}
	if err := keyboard.Open(); err != nil {
		fmt.Printf("Failed to open keyboard: %v\n", err)
		return ""
	}
	defer keyboard.Close()

	for {
		m.render()

		char, key, err := keyboard.GetKey()
		if err != nil {
			fmt.Printf("Error reading key: %v\n", err)
			return ""
		}

		if value, done := m.handleKey(char, key); done {
			return value
		}
	}
}
