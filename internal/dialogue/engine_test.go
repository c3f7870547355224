package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p60/intake-bot/internal/catalog"
	"github.com/p2p60/intake-bot/internal/config"
)

func testTexts() config.Texts {
	return config.Texts{
		QuestionDirection: "What would you like to do?",
		QuestionFrom:      "What are you giving?",
		QuestionTo:        "What are you receiving?",
		QuestionAmount:    "Enter the amount.",
		QuestionPayment:   "Which payment method?",
		QuestionCity:      "Which city?",
		QuestionUrgency:   "How urgent?",
		QuestionContact:   "Share a phone number.",
	}
}

func testEngine() *Engine {
	return NewEngine(catalog.Default(), testTexts(), 10)
}

func choice(value string) Input { return Input{Kind: InputChoice, Value: value} }
func text(value string) Input   { return Input{Kind: InputText, Value: value} }

func advanceOK(t *testing.T, e *Engine, s *Session, input Input) Prompt {
	t.Helper()
	result := e.Advance(s, input)
	require.Equal(t, ResultPrompt, result.Kind, "unexpected result for input %+v: %+v", input, result)
	return *result.Prompt
}

func TestExchangeFlow_FullWalkthrough(t *testing.T) {
	engine := testEngine()
	session := NewStore().Get(1)

	start := engine.StartExchange(session)
	assert.Equal(t, "direction", start.Choice)

	p := advanceOK(t, engine, session, choice("exchange"))
	assert.Equal(t, "from", p.Choice)

	p = advanceOK(t, engine, session, choice("USD"))
	assert.Equal(t, "to", p.Choice)

	p = advanceOK(t, engine, session, choice("USDT"))
	assert.Empty(t, p.Choice) // amount is free text

	p = advanceOK(t, engine, session, text("1500 USD"))
	assert.Equal(t, "payment", p.Choice)

	p = advanceOK(t, engine, session, choice("Cash"))
	assert.Empty(t, p.Choice) // no city catalog configured, free text

	advanceOK(t, engine, session, text("Lisbon"))
	p = advanceOK(t, engine, session, choice("immediate"))
	assert.True(t, p.RequestContact)

	summary := advanceOK(t, engine, session, Input{Kind: InputContact, Value: "+7 (926) 123-45-67"})
	assert.Equal(t, "confirm", summary.Choice)
	assert.Contains(t, summary.Text, "79261234567")
	assert.Contains(t, summary.Text, "1500 USD")

	result := engine.Advance(session, choice("confirm"))
	require.Equal(t, ResultComplete, result.Kind)
	assert.Equal(t, FlowExchange, result.Flow)
	assert.Equal(t, "exchange", result.Answers["direction_key"])
	assert.Equal(t, "Exchange", result.Answers["direction_label"])
	assert.Equal(t, "USD", result.Answers["from_currency"])
	assert.Equal(t, "USDT", result.Answers["to_currency"])
	assert.Equal(t, 1500.0, result.Answers["amount_value"])
	assert.Equal(t, "Cash", result.Answers["payment_method"])
	assert.Equal(t, "Lisbon", result.Answers["city"])
	assert.Equal(t, "immediate", result.Answers["urgency_key"])
	assert.Equal(t, "79261234567", result.Answers["phone"])
}

func TestExchangeFlow_InvalidAmountDoesNotAdvance(t *testing.T) {
	engine := testEngine()
	session := NewStore().Get(1)

	engine.StartExchange(session)
	advanceOK(t, engine, session, choice("exchange"))
	advanceOK(t, engine, session, choice("USD"))
	advanceOK(t, engine, session, choice("USDT"))

	result := engine.Advance(session, text("abc"))
	assert.Equal(t, ResultInvalid, result.Kind)

	_, state, answers := session.Snapshot()
	assert.Equal(t, StateAmount, state)
	assert.NotContains(t, answers, "amount_value")
	assert.NotContains(t, answers, "amount_text")

	// A valid amount still goes through after the re-prompt.
	p := advanceOK(t, engine, session, text("1500"))
	assert.Equal(t, "payment", p.Choice)
}

func TestExchangeFlow_UnknownOptionKeyRejected(t *testing.T) {
	engine := testEngine()
	session := NewStore().Get(1)

	engine.StartExchange(session)
	result := engine.Advance(session, choice("teleport"))
	assert.Equal(t, ResultInvalid, result.Kind)

	_, state, _ := session.Snapshot()
	assert.Equal(t, StateDirection, state)
}

func TestExchangeFlow_ShortPhoneRejected(t *testing.T) {
	engine := testEngine()
	session := NewStore().Get(1)

	engine.StartExchange(session)
	advanceOK(t, engine, session, choice("exchange"))
	advanceOK(t, engine, session, choice("USD"))
	advanceOK(t, engine, session, choice("USDT"))
	advanceOK(t, engine, session, text("1500"))
	advanceOK(t, engine, session, choice("Cash"))
	advanceOK(t, engine, session, text("Lisbon"))
	advanceOK(t, engine, session, choice("same_day"))

	result := engine.Advance(session, text("12345"))
	assert.Equal(t, ResultInvalid, result.Kind)

	_, state, answers := session.Snapshot()
	assert.Equal(t, StateContact, state)
	assert.NotContains(t, answers, "phone")
}

func TestExchangeFlow_EditRestarts(t *testing.T) {
	engine := testEngine()
	session := NewStore().Get(1)

	engine.StartExchange(session)
	advanceOK(t, engine, session, choice("exchange"))
	advanceOK(t, engine, session, choice("USD"))
	advanceOK(t, engine, session, choice("USDT"))
	advanceOK(t, engine, session, text("1500"))
	advanceOK(t, engine, session, choice("Cash"))
	advanceOK(t, engine, session, text("Lisbon"))
	advanceOK(t, engine, session, choice("immediate"))
	advanceOK(t, engine, session, text("+79261234567"))

	p := advanceOK(t, engine, session, choice("edit"))
	assert.Equal(t, "direction", p.Choice)

	_, state, answers := session.Snapshot()
	assert.Equal(t, StateDirection, state)
	assert.Empty(t, answers)
}

func TestExchangeFlow_CityChoiceValidatedAgainstCatalog(t *testing.T) {
	cat := catalog.Default()
	cat.Cities = catalog.FromStrings([]string{"Lisbon", "Porto"})
	engine := NewEngine(cat, testTexts(), 10)
	session := NewStore().Get(1)

	engine.StartExchange(session)
	advanceOK(t, engine, session, choice("exchange"))
	advanceOK(t, engine, session, choice("USD"))
	advanceOK(t, engine, session, choice("USDT"))
	advanceOK(t, engine, session, text("1500"))
	p := advanceOK(t, engine, session, choice("Cash"))
	assert.Equal(t, "city", p.Choice)

	result := engine.Advance(session, choice("Madrid"))
	assert.Equal(t, ResultInvalid, result.Kind)

	p = advanceOK(t, engine, session, choice("Porto"))
	assert.Equal(t, "urgency", p.Choice)
}

func TestAdvance_NoActiveFlow(t *testing.T) {
	engine := testEngine()
	store := NewStore()
	session := store.Get(1)

	result := engine.Advance(session, text("hello"))
	assert.Equal(t, ResultNone, result.Kind)
}

func TestStore_ClearAbortsFlow(t *testing.T) {
	engine := testEngine()
	store := NewStore()
	session := store.Get(1)

	engine.StartExchange(session)
	advanceOK(t, engine, session, choice("exchange"))

	store.Clear(1)
	fresh := store.Get(1)
	result := engine.Advance(fresh, choice("USD"))
	assert.Equal(t, ResultNone, result.Kind)
}

func TestSubmitDirect(t *testing.T) {
	engine := testEngine()

	answers, err := engine.SubmitDirect(map[string]any{
		"direction":      "buy",
		"from_currency":  "EUR",
		"to_currency":    "USDT",
		"amount":         "2500",
		"payment_method": "Bank transfer",
		"city":           "Lisbon",
		"urgency":        "same_day",
		"phone":          "+7 926 123 45 67",
	})
	require.NoError(t, err)

	assert.Equal(t, "buy", answers["direction_key"])
	assert.Equal(t, "Buy", answers["direction_label"])
	assert.Equal(t, 2500.0, answers["amount_value"])
	assert.Equal(t, "2500", answers["amount_text"])
	assert.Equal(t, "Today", answers["urgency_label"])
	assert.Equal(t, "79261234567", answers["phone"])
}

func TestSubmitDirect_MissingPhoneRejected(t *testing.T) {
	engine := testEngine()

	_, err := engine.SubmitDirect(map[string]any{
		"direction": "buy",
		"amount":    "2500",
		"phone":     "123",
	})
	assert.Error(t, err)
}

func TestSubmitDirect_UnknownKeysPassThrough(t *testing.T) {
	engine := testEngine()

	answers, err := engine.SubmitDirect(map[string]any{
		"direction": "barter",
		"urgency":   "whenever",
		"amount":    "100",
		"phone":     "79261234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "barter", answers["direction_label"])
	assert.Equal(t, "whenever", answers["urgency_label"])
}
