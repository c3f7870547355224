package dialogue

import "github.com/p2p60/intake-bot/internal/catalog"

type Flow int

const (
	FlowNone Flow = iota
	FlowExchange
	FlowConnect
)

type State int

const (
	StateDirection State = iota
	StateFromCurrency
	StateToCurrency
	StateAmount
	StatePayment
	StateCity
	StateUrgency
	StateContact
	StateConfirm

	StateConnectKind
	StateConnectExchange
	StateConnectExchangeCustom
	StateConnectNetwork
	StateConnectNetworkCustom
	StateConnectIdentifier
	StateConnectConfirm
)

type InputKind int

const (
	// InputChoice is a button press; Value carries the option key.
	InputChoice InputKind = iota
	// InputText is free text typed by the user.
	InputText
	// InputContact is a structured contact share; Value carries the phone.
	InputContact
)

type Input struct {
	Kind  InputKind
	Value string
}

// Prompt is what the transport should present next. Choice names the
// callback group for the option buttons; empty Choice means free text.
type Prompt struct {
	Text           string
	Choice         string
	Options        []catalog.Option
	RequestContact bool
}

type ResultKind int

const (
	// ResultNone: no flow is active for this user, the input was ignored.
	ResultNone ResultKind = iota
	// ResultPrompt: the answer was accepted, present the next prompt.
	ResultPrompt
	// ResultInvalid: validation failed, state unchanged, re-prompt.
	ResultInvalid
	// ResultComplete: the flow finished, Answers holds the full set.
	ResultComplete
	// ResultCancelled: the user aborted at a terminal prompt.
	ResultCancelled
)

type Result struct {
	Kind      ResultKind
	Prompt    *Prompt
	ErrorText string
	Flow      Flow
	Answers   map[string]any
}
