package dialogue

import (
	"fmt"
	"strings"

	"github.com/p2p60/intake-bot/internal/catalog"
	"github.com/p2p60/intake-bot/internal/utils"
)

const (
	exchangeIdentifierPrompt = "Enter your exchange UID, email or login."
	walletIdentifierPrompt   = "Enter the wallet address."
	minIdentifierLength      = 6
)

func (e *Engine) advanceConnect(s *Session, input Input) Result {
	switch s.state {
	case StateConnectKind:
		if input.Kind != InputChoice {
			return invalid("Pick what you want to connect.")
		}
		switch input.Value {
		case "exchange":
			s.answers["kind"] = "exchange"
			s.state = StateConnectExchange
			return prompt(Prompt{Text: "Pick an exchange.", Choice: "exchange", Options: withOther(e.catalog.Exchanges)})
		case "wallet":
			s.answers["kind"] = "wallet"
			s.state = StateConnectNetwork
			return prompt(Prompt{Text: "Pick a network or wallet type.", Choice: "network", Options: withOther(e.catalog.WalletNetworks)})
		default:
			return invalid("Pick what you want to connect.")
		}

	case StateConnectExchange:
		if input.Kind != InputChoice {
			return invalid("Pick an exchange from the list.")
		}
		if input.Value == "other" {
			s.state = StateConnectExchangeCustom
			return prompt(Prompt{Text: "Type the exchange name."})
		}
		if !catalog.Contains(e.catalog.Exchanges, input.Value) {
			return invalid("Pick an exchange from the list.")
		}
		s.answers["exchange_name"] = catalog.Label(e.catalog.Exchanges, input.Value)
		s.state = StateConnectIdentifier
		return prompt(Prompt{Text: exchangeIdentifierPrompt})

	case StateConnectExchangeCustom:
		name := strings.TrimSpace(input.Value)
		if input.Kind != InputText || name == "" {
			return invalid("Please type the exchange name.")
		}
		s.answers["exchange_name"] = name
		s.state = StateConnectIdentifier
		return prompt(Prompt{Text: exchangeIdentifierPrompt})

	case StateConnectNetwork:
		if input.Kind != InputChoice {
			return invalid("Pick a network from the list.")
		}
		if input.Value == "other" {
			s.state = StateConnectNetworkCustom
			return prompt(Prompt{Text: "Type the network or wallet type."})
		}
		if !catalog.Contains(e.catalog.WalletNetworks, input.Value) {
			return invalid("Pick a network from the list.")
		}
		s.answers["network"] = catalog.Label(e.catalog.WalletNetworks, input.Value)
		s.state = StateConnectIdentifier
		return prompt(Prompt{Text: walletIdentifierPrompt})

	case StateConnectNetworkCustom:
		network := strings.TrimSpace(input.Value)
		if input.Kind != InputText || network == "" {
			return invalid("Please type the network or wallet type.")
		}
		s.answers["network"] = network
		s.state = StateConnectIdentifier
		return prompt(Prompt{Text: walletIdentifierPrompt})

	case StateConnectIdentifier:
		identifier := strings.TrimSpace(input.Value)
		if input.Kind != InputText || len([]rune(identifier)) < minIdentifierLength {
			return invalid("That identifier is too short. Check it and send again.")
		}
		s.answers["identifier"] = identifier
		s.state = StateConnectConfirm
		return prompt(e.connectSummaryPrompt(s.answers))

	case StateConnectConfirm:
		if input.Kind != InputChoice {
			return invalid("Use the buttons to save or cancel.")
		}
		switch input.Value {
		case "confirm":
			return Result{Kind: ResultComplete, Flow: FlowConnect, Answers: s.answers}
		case "cancel":
			return Result{Kind: ResultCancelled, Flow: FlowConnect}
		default:
			return invalid("Use the buttons to save or cancel.")
		}
	}

	return Result{Kind: ResultNone}
}

func (e *Engine) connectKindPrompt() Prompt {
	return Prompt{
		Text:   "What do you want to connect?\nWe only ask for public data (UID/address), never API keys.",
		Choice: "connect_kind",
		Options: []catalog.Option{
			{Key: "exchange", Label: "Exchange"},
			{Key: "wallet", Label: "Wallet"},
		},
	}
}

func (e *Engine) connectSummaryPrompt(answers map[string]any) Prompt {
	kind := "Wallet"
	if answers["kind"] == "exchange" {
		kind = "Exchange"
	}
	identifier, _ := answers["identifier"].(string)
	summary := fmt.Sprintf(
		"Review the connection\nType: %s\nExchange: %s\nNetwork: %s\nIdentifier: %s",
		kind,
		orDash(answers["exchange_name"]),
		orDash(answers["network"]),
		utils.MaskIdentifier(identifier),
	)
	return Prompt{
		Text:   summary,
		Choice: "connect_confirm",
		Options: []catalog.Option{
			{Key: "confirm", Label: "Save"},
			{Key: "cancel", Label: "Cancel"},
		},
	}
}

func withOther(options []catalog.Option) []catalog.Option {
	extended := make([]catalog.Option, 0, len(options)+1)
	extended = append(extended, options...)
	return append(extended, catalog.Option{Key: "other", Label: "Other"})
}
