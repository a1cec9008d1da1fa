package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTicketId(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"what happened with AP-541?", "AP-541"},
		{"status of corecm-102 please", "CORECM-102"},
		{"tell me about TST12-1599", "TST12-1599"},
		{"resumen de PFU-33", "PFU-33"},
		{"DEM-88", "DEM-88"},
		{"what is safetypay", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, findTicketId(c.query), c.query)
	}
}

func TestNormalizeStripsAccents(t *testing.T) {
	assert.Equal(t, "cuantos tickets de integraciones", normalize("Cuántos tickets de Integraciones"))
	assert.Equal(t, "que proveedor tiene mas tickets", normalize("Qué proveedor tiene más tickets"))
}

func TestAskCountsIntegrationsTickets(t *testing.T) {
	pipeline := seedPipeline(t, &fakeGenerator{reply: "unused"})

	answer, err := pipeline.Ask(context.Background(), "¿Cuántos tickets de integraciones hay?")

	require.NoError(t, err)
	assert.Equal(t, QueryTypeAnalytical, answer.QueryType)
	assert.Contains(t, answer.Text, "1 tickets from the Integrations team")
	assert.NotNil(t, answer.Analytics["teams"])
}

func TestAskCountReport(t *testing.T) {
	pipeline := seedPipeline(t, &fakeGenerator{reply: "unused"})

	answer, err := pipeline.Ask(context.Background(), "contar tickets por equipo")

	require.NoError(t, err)
	assert.Equal(t, QueryTypeAnalytical, answer.QueryType)
	assert.Contains(t, answer.Text, "By team:")
	assert.Contains(t, answer.Text, "- Core: 1 tickets")
	assert.Contains(t, answer.Text, "- Integrations: 1 tickets")
	assert.Contains(t, answer.Text, "By provider:")
	assert.Contains(t, answer.Text, "- SafetyPay: 1 tickets")
}

func TestAskTopProvider(t *testing.T) {
	pipeline := seedPipeline(t, &fakeGenerator{reply: "unused"})

	answer, err := pipeline.Ask(context.Background(), "¿Qué proveedor tiene más tickets?")

	require.NoError(t, err)
	assert.Equal(t, QueryTypeAnalytical, answer.QueryType)
	assert.Contains(t, answer.Text, "**SafetyPay**")
	assert.Contains(t, answer.Text, "Complete ranking:")
}

func TestAskRoutesTicketLookup(t *testing.T) {
	gen := &fakeGenerator{reply: "The ticket is about webhook retries."}
	pipeline := seedPipeline(t, gen)

	answer, err := pipeline.Ask(context.Background(), "what is ticket TST12-1599 about?")

	require.NoError(t, err)
	assert.Equal(t, QueryTypeTicketLookup, answer.QueryType)
	assert.Equal(t, "TST12-1599", answer.TicketId)
	assert.Equal(t, "SafetyPay", answer.ProviderName)
	assert.True(t, answer.HasProviderDocs)
	assert.Contains(t, gen.lastPrompt, "webhook retries")
}

func TestAskTicketNotFound(t *testing.T) {
	gen := &fakeGenerator{reply: "unused"}
	pipeline := seedPipeline(t, gen)

	answer, err := pipeline.Ask(context.Background(), "what about ticket AP-9999?")

	require.NoError(t, err)
	assert.Equal(t, QueryTypeTicketLookup, answer.QueryType)
	assert.Contains(t, answer.Text, "AP-9999")
	assert.Zero(t, gen.calls)
}

func TestAskWithoutTicketWordStaysSemantic(t *testing.T) {
	gen := &fakeGenerator{reply: "semantic answer"}
	pipeline := seedPipeline(t, gen)

	answer, err := pipeline.Ask(context.Background(), "what is safetypay")

	require.NoError(t, err)
	assert.Equal(t, QueryTypeSemantic, answer.QueryType)
	assert.Equal(t, "semantic answer", answer.Text)
}
