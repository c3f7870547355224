package dialogue

import (
	"fmt"
	"strings"

	"github.com/p2p60/intake-bot/internal/catalog"
	"github.com/p2p60/intake-bot/internal/config"
	"github.com/p2p60/intake-bot/internal/utils"
)

// Engine drives the two guided flows. It validates each answer against the
// option catalog, stores derived values into the session and emits the next
// prompt. A failed validation never advances the state.
type Engine struct {
	catalog        catalog.Catalog
	texts          config.Texts
	phoneMinDigits int
}

func NewEngine(cat catalog.Catalog, texts config.Texts, phoneMinDigits int) *Engine {
	return &Engine{catalog: cat, texts: texts, phoneMinDigits: phoneMinDigits}
}

// StartExchange clears the session and begins the exchange-request flow.
func (e *Engine) StartExchange(s *Session) Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(FlowExchange, StateDirection)
	return e.directionPrompt()
}

// StartConnect clears the session and begins the connection flow.
func (e *Engine) StartConnect(s *Session) Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(FlowConnect, StateConnectKind)
	return e.connectKindPrompt()
}

// Advance feeds one user input into the session's flow.
func (e *Engine) Advance(s *Session, input Input) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.flow {
	case FlowExchange:
		return e.advanceExchange(s, input)
	case FlowConnect:
		return e.advanceConnect(s, input)
	default:
		return Result{Kind: ResultNone}
	}
}

func (e *Engine) advanceExchange(s *Session, input Input) Result {
	switch s.state {
	case StateDirection:
		if input.Kind != InputChoice || !catalog.Contains(e.catalog.Directions, input.Value) {
			return invalid(e.texts.QuestionDirection)
		}
		s.answers["direction_key"] = input.Value
		s.answers["direction_label"] = catalog.Label(e.catalog.Directions, input.Value)
		s.state = StateFromCurrency
		return prompt(e.currencyPrompt("from", e.texts.QuestionFrom))

	case StateFromCurrency:
		if input.Kind != InputChoice || !catalog.Contains(e.catalog.Currencies, input.Value) {
			return invalid(e.texts.QuestionFrom)
		}
		s.answers["from_currency"] = input.Value
		s.state = StateToCurrency
		return prompt(e.currencyPrompt("to", e.texts.QuestionTo))

	case StateToCurrency:
		if input.Kind != InputChoice || !catalog.Contains(e.catalog.Currencies, input.Value) {
			return invalid(e.texts.QuestionTo)
		}
		s.answers["to_currency"] = input.Value
		s.state = StateAmount
		return prompt(Prompt{Text: e.texts.QuestionAmount})

	case StateAmount:
		if input.Kind != InputText {
			return invalid(e.texts.QuestionAmount)
		}
		value, display := utils.ParseAmount(input.Value)
		if value == nil {
			return invalid("Can't see an amount there. Example: 1500 or 1500 USD.")
		}
		s.answers["amount_value"] = *value
		s.answers["amount_text"] = display
		s.state = StatePayment
		return prompt(Prompt{Text: e.texts.QuestionPayment, Choice: "payment", Options: e.catalog.PaymentMethods})

	case StatePayment:
		if input.Kind != InputChoice || !catalog.Contains(e.catalog.PaymentMethods, input.Value) {
			return invalid(e.texts.QuestionPayment)
		}
		s.answers["payment_method"] = catalog.Label(e.catalog.PaymentMethods, input.Value)
		s.state = StateCity
		return prompt(e.cityPrompt())

	case StateCity:
		city := ""
		switch input.Kind {
		case InputChoice:
			if !catalog.Contains(e.catalog.Cities, input.Value) {
				return invalid(e.texts.QuestionCity)
			}
			city = catalog.Label(e.catalog.Cities, input.Value)
		case InputText:
			city = strings.TrimSpace(input.Value)
			if city == "" {
				return invalid("Please name a city or country.")
			}
		default:
			return invalid(e.texts.QuestionCity)
		}
		s.answers["city"] = city
		s.state = StateUrgency
		return prompt(Prompt{Text: e.texts.QuestionUrgency, Choice: "urgency", Options: e.catalog.Urgencies})

	case StateUrgency:
		if input.Kind != InputChoice || !catalog.Contains(e.catalog.Urgencies, input.Value) {
			return invalid(e.texts.QuestionUrgency)
		}
		s.answers["urgency_key"] = input.Value
		s.answers["urgency_label"] = catalog.Label(e.catalog.Urgencies, input.Value)
		s.state = StateContact
		return prompt(Prompt{Text: e.texts.QuestionContact, RequestContact: true})

	case StateContact:
		if input.Kind != InputText && input.Kind != InputContact {
			return invalid(e.texts.QuestionContact)
		}
		phone := utils.NormalizePhone(input.Value, e.phoneMinDigits)
		if phone == "" {
			return invalid(fmt.Sprintf("Couldn't read that number. Enter a phone like +7XXXXXXXXXX (at least %d digits).", e.phoneMinDigits))
		}
		s.answers["phone"] = phone
		s.state = StateConfirm
		return prompt(e.exchangeSummaryPrompt(s.answers))

	case StateConfirm:
		if input.Kind != InputChoice {
			return invalid("Use the buttons to send or edit the request.")
		}
		switch input.Value {
		case "confirm":
			answers := s.answers
			return Result{Kind: ResultComplete, Flow: FlowExchange, Answers: answers}
		case "edit":
			s.reset(FlowExchange, StateDirection)
			return prompt(e.directionPrompt())
		default:
			return invalid("Use the buttons to send or edit the request.")
		}
	}

	return Result{Kind: ResultNone}
}

// SubmitDirect accepts a single structured submission carrying every field at
// once, bypassing the stateful dialogue. The phone must parse; anything else
// falls back to catalog pass-through labels.
func (e *Engine) SubmitDirect(payload map[string]any) (map[string]any, error) {
	directionKey := stringField(payload, "direction")
	urgencyKey := stringField(payload, "urgency")
	amountValue, amountText := utils.ParseAmount(stringField(payload, "amount"))

	phone := utils.NormalizePhone(stringField(payload, "phone"), e.phoneMinDigits)
	if phone == "" {
		return nil, fmt.Errorf("submission has no valid phone number")
	}

	answers := map[string]any{
		"direction_key":   directionKey,
		"direction_label": catalog.Label(e.catalog.Directions, directionKey),
		"from_currency":   stringField(payload, "from_currency"),
		"to_currency":     stringField(payload, "to_currency"),
		"amount_text":     amountText,
		"payment_method":  stringField(payload, "payment_method"),
		"city":            stringField(payload, "city"),
		"urgency_key":     urgencyKey,
		"urgency_label":   catalog.Label(e.catalog.Urgencies, urgencyKey),
		"phone":           phone,
	}
	if amountValue != nil {
		answers["amount_value"] = *amountValue
	}
	if amountText == "" {
		answers["amount_text"] = stringField(payload, "amount")
	}
	return answers, nil
}

func (e *Engine) directionPrompt() Prompt {
	return Prompt{Text: e.texts.QuestionDirection, Choice: "direction", Options: e.catalog.Directions}
}

func (e *Engine) currencyPrompt(choice, question string) Prompt {
	return Prompt{Text: question, Choice: choice, Options: e.catalog.Currencies}
}

func (e *Engine) cityPrompt() Prompt {
	if len(e.catalog.Cities) > 0 {
		return Prompt{Text: e.texts.QuestionCity, Choice: "city", Options: e.catalog.Cities}
	}
	return Prompt{Text: e.texts.QuestionCity}
}

func (e *Engine) exchangeSummaryPrompt(answers map[string]any) Prompt {
	summary := fmt.Sprintf(
		"Review your request\nDirection: %s\nYou give: %s\nYou receive: %s\nAmount: %s\nMethod: %s\nLocation: %s\nUrgency: %s\nContact: %s",
		orDash(answers["direction_label"]),
		orDash(answers["from_currency"]),
		orDash(answers["to_currency"]),
		orDash(answers["amount_text"]),
		orDash(answers["payment_method"]),
		orDash(answers["city"]),
		orDash(answers["urgency_label"]),
		orDash(answers["phone"]),
	)
	return Prompt{
		Text:   summary,
		Choice: "confirm",
		Options: []catalog.Option{
			{Key: "confirm", Label: "Send request"},
			{Key: "edit", Label: "Edit"},
		},
	}
}

func prompt(p Prompt) Result {
	return Result{Kind: ResultPrompt, Prompt: &p}
}

func invalid(text string) Result {
	return Result{Kind: ResultInvalid, ErrorText: text}
}

func orDash(value any) string {
	text, _ := value.(string)
	if text == "" {
		return "-"
	}
	return text
}

func stringField(payload map[string]any, key string) string {
	switch value := payload[key].(type) {
	case string:
		return value
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", value), "0"), ".")
	default:
		return ""
	}
}
