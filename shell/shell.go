// Package shell is an interactive prompt for poking at the engine: load or
// generate positions, see how the search rates each move, and let it play.
package shell

import (
	"errors"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/expectimax"
	"github.com/domino14/twenty48/game"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format for option")
	errNoGame            = errors.New("no game loaded; use new or setboard")
	errQuit              = errors.New("quit")
)

type ShellController struct {
	l      *readline.Instance
	out    io.Writer
	config *config.Config
	solver *expectimax.Solver
	game   *game.Game
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[33m2048>\033[0m ",
		HistoryFile:     "/tmp/twenty48_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc := newController(cfg, l.Stdout())
	sc.l = l
	return sc
}

func newController(cfg *config.Config, out io.Writer) *ShellController {
	sc := &ShellController{
		out:    out,
		config: cfg,
		solver: expectimax.NewSolver(),
	}
	sc.applySettings()
	return sc
}

// applySettings pushes search-related settings into the solver.
func (sc *ShellController) applySettings() {
	sc.solver.SetParallel(sc.config.GetBool(config.ConfigParallelSearch))
	if sc.config.GetBool(config.ConfigSearchLog) {
		sc.solver.SetLogStream(sc.out)
	} else {
		sc.solver.SetLogStream(nil)
	}
}

func (sc *ShellController) showMessage(m string) {
	io.WriteString(sc.out, m)
	io.WriteString(sc.out, "\n")
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a command line into the command, its positional
// arguments and its -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: map[string]string{}}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		// a lone "-" is an empty cell, not an option
		if len(f) > 1 && f[0] == '-' && !isNumber(f) {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			cmd.options[f[1:]] = fields[i+1]
			i++
			continue
		}
		cmd.args = append(cmd.args, f)
	}
	return cmd, nil
}

func isNumber(s string) bool {
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Execute runs a single command line and prints its output.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.execute(line)
	if errors.Is(err, errQuit) {
		sig <- syscall.SIGINT
		return
	}
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) execute(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "quit":
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "setboard":
		return sc.setBoard(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "best":
		return sc.best(cmd)
	case "step", "n":
		return sc.step(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "eval":
		return sc.eval(cmd)
	case "set":
		return sc.set(cmd)
	default:
		log.Debug().Str("cmd", cmd.cmd).Msg("unknown-command")
		return msg("command " + cmd.cmd + " not recognized; try help"), nil
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.execute(line)
		if errors.Is(err, errQuit) {
			sig <- syscall.SIGINT
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msg("exiting-readline-loop")
}

func (sc *ShellController) Cleanup() {
	log.Debug().Msg("shell-cleanup")
}
