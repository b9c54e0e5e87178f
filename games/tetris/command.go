package tetris

// Command is a discrete player input as sent by hosts.
type Command string

const (
	CmdStart       Command = "start"
	CmdPause       Command = "pause"
	CmdResume      Command = "resume"
	CmdTogglePause Command = "toggle_pause"
	CmdLeft        Command = "left"
	CmdRight       Command = "right"
	CmdRotate      Command = "rotate"
	CmdSoftDrop    Command = "soft_drop"
	CmdHardDrop    Command = "hard_drop"
)

// commandAliases maps the short names used by the web and touch clients.
var commandAliases = map[string]Command{
	"down": CmdSoftDrop,
	"drop": CmdHardDrop,
	"up":   CmdRotate,
	"p":    CmdTogglePause,
}

// ParseCommand resolves a command name or alias.
func ParseCommand(s string) (Command, bool) {
	switch c := Command(s); c {
	case CmdStart, CmdPause, CmdResume, CmdTogglePause, CmdLeft, CmdRight,
		CmdRotate, CmdSoftDrop, CmdHardDrop:
		return c, true
	}
	c, ok := commandAliases[s]
	return c, ok
}

// Apply runs a command and reports whether it changed the session. Commands
// that make no sense in the current state are ignored.
func (s *Session) Apply(c Command) bool {
	switch c {
	case CmdStart:
		s.Start()
		return true
	case CmdPause:
		return s.Pause()
	case CmdResume:
		return s.Resume()
	case CmdTogglePause:
		return s.TogglePause()
	case CmdLeft:
		return s.MoveLeft()
	case CmdRight:
		return s.MoveRight()
	case CmdRotate:
		return s.Rotate()
	case CmdSoftDrop:
		return s.SoftDrop()
	case CmdHardDrop:
		return s.HardDrop()
	}
	return false
}
