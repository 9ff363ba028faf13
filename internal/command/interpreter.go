package command

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	catalog "github.com/CodeAndHammer/ctfconsole/internal/catalog"
	constants "github.com/CodeAndHammer/ctfconsole/internal/constants"
	validator "github.com/CodeAndHammer/ctfconsole/internal/validator"
)

type Outcome string

const (
	OutcomeEmpty            Outcome = "empty"
	OutcomeTooLong          Outcome = "too_long"
	OutcomeHelp             Outcome = "help"
	OutcomeList             Outcome = "list"
	OutcomeChallenge        Outcome = "challenge"
	OutcomeUnknownChallenge Outcome = "unknown_challenge"
	OutcomeSolved           Outcome = "solved"
	OutcomeWrongAnswer      Outcome = "wrong_answer"
	OutcomeMalformed        Outcome = "malformed"
	OutcomeUnknownCommand   Outcome = "unknown_command"
)

const (
	MsgNoCommand        = "No command provided."
	MsgTooLong          = "Input too long. Try again.\n"
	MsgHelp             = "Commands:\nHELP - Show this help\nLIST - List challenges\nCHALLENGE <name> - Get challenge details\nSOLVE <challenge> <answer> - Submit answer\n"
	MsgInvalidChallenge = "Invalid challenge name. Use LIST to see available challenges.\n"
	MsgSolveUnknown     = "Invalid challenge name. Use LIST to see challenges.\n"
	MsgSolveUsage       = "Usage: SOLVE <challenge> <answer>\n"
	MsgWrongAnswer      = "Wrong answer. Try again.\n"
	MsgInvalidCommand   = "Invalid command. Type HELP for list of commands.\n"
)

const (
	keywordHelp     = "HELP"
	keywordList     = "LIST"
	prefixChallenge = "CHALLENGE "
	prefixSolve     = "SOLVE "
)

type Result struct {
	Text    string
	Invalid bool
	Outcome Outcome
}

type Interpreter struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Interpreter {
	return &Interpreter{catalog: cat}
}

// Interpret runs one command line. Keywords are case-sensitive, challenge
// names are not. Invalid reports whether the command counts against the
// client's invalid-attempt budget.
func (in *Interpreter) Interpret(command string) Result {
	command = strings.TrimSpace(command)
	switch {
	case command == "":
		return Result{Text: MsgNoCommand, Outcome: OutcomeEmpty}
	case utf8.RuneCountInString(command) > constants.MaxInputLength:
		return Result{Text: MsgTooLong, Invalid: true, Outcome: OutcomeTooLong}
	case command == keywordHelp:
		return Result{Text: MsgHelp, Outcome: OutcomeHelp}
	case command == keywordList:
		return Result{Text: "Available challenges: " + strings.Join(in.catalog.Names(), ", ") + "\n", Outcome: OutcomeList}
	case strings.HasPrefix(command, prefixChallenge):
		return in.challenge(command[len(prefixChallenge):])
	case strings.HasPrefix(command, prefixSolve):
		return in.solve(command[len(prefixSolve):])
	default:
		return Result{Text: MsgInvalidCommand, Invalid: true, Outcome: OutcomeUnknownCommand}
	}
}

func (in *Interpreter) challenge(arg string) Result {
	name := strings.ToLower(strings.TrimSpace(arg))
	ch, ok := in.catalog.Lookup(name)
	if !ok {
		return Result{Text: MsgInvalidChallenge, Invalid: true, Outcome: OutcomeUnknownChallenge}
	}
	text := fmt.Sprintf("Challenge: %s\nTask: %s\nHint: %s\nSubmit with: SOLVE %s <answer>\n", name, ch.Question, ch.Hint, name)
	return Result{Text: text, Outcome: OutcomeChallenge}
}

func (in *Interpreter) solve(arg string) Result {
	name, answer, ok := splitSolveArgs(arg)
	if !ok {
		return Result{Text: MsgSolveUsage, Invalid: true, Outcome: OutcomeMalformed}
	}
	name = strings.ToLower(name)
	correct, err := validator.Validate(in.catalog, name, answer)
	switch {
	case errors.Is(err, validator.ErrNotFound):
		return Result{Text: MsgSolveUnknown, Invalid: true, Outcome: OutcomeUnknownChallenge}
	case correct:
		ch, _ := in.catalog.Lookup(name)
		return Result{Text: fmt.Sprintf("Correct! Flag: %s\n", ch.Flag), Outcome: OutcomeSolved}
	default:
		return Result{Text: MsgWrongAnswer, Invalid: true, Outcome: OutcomeWrongAnswer}
	}
}

// splitSolveArgs splits "<name> <answer>" at the first whitespace run. The
// answer keeps its inner spaces.
func splitSolveArgs(arg string) (name, answer string, ok bool) {
	arg = strings.TrimSpace(arg)
	idx := strings.IndexFunc(arg, unicode.IsSpace)
	if idx < 0 {
		return "", "", false
	}
	name = arg[:idx]
	answer = strings.TrimSpace(arg[idx:])
	if name == "" || answer == "" {
		return "", "", false
	}
	return name, answer, true
}
