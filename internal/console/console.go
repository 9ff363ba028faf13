// Package console is the entry point the HTTP transport calls for every
// submitted command. It applies the abuse checks around the interpreter.
package console

import (
	"fmt"
	"time"

	abuse "github.com/CodeAndHammer/ctfconsole/internal/abuse"
	catalog "github.com/CodeAndHammer/ctfconsole/internal/catalog"
	command "github.com/CodeAndHammer/ctfconsole/internal/command"
	util "github.com/CodeAndHammer/ctfconsole/internal/util"
)

const (
	OutcomeBlocked     command.Outcome = "blocked"
	OutcomeRateLimited command.Outcome = "rate_limited"
)

type Reply struct {
	Response string
	Outcome  command.Outcome
	Blocked  bool
	// Reason is set only when Blocked is true.
	Reason abuse.BlockReason
}

type Service struct {
	tracker     *abuse.Tracker
	interpreter *command.Interpreter
}

func New(cat *catalog.Catalog, tracker *abuse.Tracker) *Service {
	return &Service{
		tracker:     tracker,
		interpreter: command.New(cat),
	}
}

func (s *Service) Tracker() *abuse.Tracker {
	return s.tracker
}

// Submit handles one raw command from clientID. Every outcome, including
// denials, is expressed as a response string.
func (s *Service) Submit(clientID, raw string, now time.Time) Reply {
	switch s.tracker.CheckAndRecordRequest(clientID, now) {
	case abuse.DeniedAlreadyBlocked:
		util.LogWarn("Blocked access attempt from %s", clientID)
		reason, _ := s.tracker.IsBlocked(clientID)
		return Reply{
			Response: fmt.Sprintf("Access denied for %s: Blocked due to repeated suspicious activity. Please try later.", clientID),
			Outcome:  OutcomeBlocked,
			Blocked:  true,
			Reason:   reason,
		}
	case abuse.DeniedRateLimited:
		util.LogWarn("Blocked %s: Too many requests per minute", clientID)
		return Reply{
			Response: fmt.Sprintf("%s has been blocked: Too many requests. Please wait before trying again.", clientID),
			Outcome:  OutcomeRateLimited,
			Blocked:  true,
			Reason:   abuse.ReasonRateLimited,
		}
	}

	res := s.interpreter.Interpret(raw)
	if !res.Invalid {
		return Reply{Response: res.Text, Outcome: res.Outcome}
	}

	reason := abuse.ReasonInvalidCommands
	if res.Outcome == command.OutcomeTooLong {
		util.LogWarn("%s sent long input (%d bytes)", clientID, len(raw))
		reason = abuse.ReasonInvalidInput
	}
	if !s.tracker.RecordInvalid(clientID, reason) {
		return Reply{Response: res.Text, Outcome: res.Outcome}
	}

	util.LogWarn("Blocked %s: Too many invalid attempts", clientID)
	msg := fmt.Sprintf("%s has been blocked: Too many invalid commands or answers.", clientID)
	if reason == abuse.ReasonInvalidInput {
		msg = fmt.Sprintf("%s has been blocked: Too many invalid attempts (long or malformed input).", clientID)
	}
	return Reply{Response: msg, Outcome: res.Outcome, Blocked: true, Reason: reason}
}
