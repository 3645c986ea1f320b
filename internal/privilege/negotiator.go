// Package privilege decides, per privileged operation, whether to proceed,
// skip, or fail, based on the configured strategy and live credential-cache
// probing.
package privilege

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Strategy selects how privileged operations are negotiated for a run.
type Strategy string

const (
	// StrategyPrompt proceeds when credentials are already cached and skips
	// otherwise on unattended runs. The negotiator itself never prompts.
	StrategyPrompt Strategy = "prompt"
	// StrategyPasswordlessAll proceeds whenever cached credentials exist.
	StrategyPasswordlessAll Strategy = "passwordless"
	// StrategyWhitelist proceeds only for whitelisted command prefixes with
	// cached credentials.
	StrategyWhitelist Strategy = "whitelist"
	// StrategySkip never runs privileged operations.
	StrategySkip Strategy = "skip"
)

// Valid reports whether the strategy is one of the known values.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyPrompt, StrategyPasswordlessAll, StrategyWhitelist, StrategySkip:
		return true
	}
	return false
}

// Outcome is the decision for one privileged operation.
type Outcome int

const (
	// Proceed allows the privileged invocation.
	Proceed Outcome = iota
	// Skip holds the operation back; the reason must reach the report.
	Skip
	// Abort marks a configuration error, fatal to the manager's update step
	// but not the whole run.
	Abort
)

// Reasons reported on Skip decisions. Downstream reporting relies on these
// exact strings to tell the user precisely what was not done and why.
const (
	ReasonDisabledByPolicy = "privileged execution disabled by policy"
	ReasonNoCredentials    = "no interactive session and no cached credentials"
	ReasonNotWhitelisted   = "command prefix not in privilege whitelist"
)

// Decision is the negotiator's answer for one operation. Not persisted;
// computed fresh per operation because credential caches expire mid-run.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// Prober checks the live sudo credential cache and resolves command names.
// It is implemented by the executor.
type Prober interface {
	ProbeSudo(ctx context.Context) bool
	LookPath(name string) bool
}

type probeState int

const (
	probeUnknown probeState = iota
	probeAvailable
	probeUnavailable
)

// Negotiator is the state machine over one conceptual resource: privileged
// execution capability for the current run.
type Negotiator struct {
	strategy    Strategy
	whitelist   map[string]bool
	prober      Prober
	interactive bool

	mu    sync.Mutex
	state probeState
}

// New creates a negotiator for one run. interactive signals whether an
// interactive terminal is attached; unattended prompt-strategy runs skip
// rather than hang.
func New(strategy Strategy, whitelist []string, prober Prober, interactive bool) *Negotiator {
	wl := make(map[string]bool, len(whitelist))
	for _, cmd := range whitelist {
		wl[cmd] = true
	}
	return &Negotiator{
		strategy:    strategy,
		whitelist:   wl,
		prober:      prober,
		interactive: interactive,
	}
}

// Decide evaluates the configured strategy for one privileged operation
// identified by its command prefix (e.g. "brew"). The skip strategy never
// probes at all.
func (n *Negotiator) Decide(ctx context.Context, command string) Decision {
	switch n.strategy {
	case StrategySkip:
		return Decision{Outcome: Skip, Reason: ReasonDisabledByPolicy}

	case StrategyWhitelist:
		if !n.whitelist[command] {
			return Decision{Outcome: Skip, Reason: ReasonNotWhitelisted}
		}
		if !n.prober.LookPath(command) {
			// Whitelisting a command that cannot be resolved is a
			// configuration error, fatal only to this manager's step.
			return Decision{Outcome: Abort, Reason: fmt.Sprintf("whitelisted command %q not found on PATH", command)}
		}
		if !n.credentialsAvailable(ctx) {
			return Decision{Outcome: Skip, Reason: ReasonNoCredentials}
		}
		return Decision{Outcome: Proceed}

	case StrategyPasswordlessAll, StrategyPrompt:
		if n.credentialsAvailable(ctx) {
			return Decision{Outcome: Proceed}
		}
		if n.strategy == StrategyPrompt && n.interactive {
			// A live terminal is attached; sudo may prompt on its own.
			return Decision{Outcome: Proceed}
		}
		return Decision{Outcome: Skip, Reason: ReasonNoCredentials}

	default:
		return Decision{Outcome: Abort, Reason: fmt.Sprintf("unknown sudo strategy %q", n.strategy)}
	}
}

// credentialsAvailable probes the sudo credential cache once per run,
// serialized so concurrent managers cannot race a credential-expiry window.
func (n *Negotiator) credentialsAvailable(ctx context.Context) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == probeUnknown {
		if n.prober.ProbeSudo(ctx) {
			n.state = probeAvailable
		} else {
			n.state = probeUnavailable
		}
		log.WithField("available", n.state == probeAvailable).Debug("probed sudo credential cache")
	}
	return n.state == probeAvailable
}
