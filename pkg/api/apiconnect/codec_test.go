package apiconnect

import (
	"testing"

	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/api"
)

func TestJSONCodec(t *testing.T) {
	codec := jsonCodec{}
	if codec.Name() != "json" {
		t.Fatalf("Name() = %q, want json", codec.Name())
	}

	data, err := codec.Marshal(&api.Balance{CounterpartID: "bob", Amount: money.MustParse("12.5")})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if got, want := string(data), `{"counterpartId":"bob","amount":"12.50"}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	var empty api.GetBalancesRequest
	if err := codec.Unmarshal(nil, &empty); err != nil {
		t.Errorf("Unmarshal of empty body failed: %v", err)
	}

	var bad api.Balance
	if err := codec.Unmarshal([]byte(`{"amount":12.5}`), &bad); err == nil {
		t.Error("expected unquoted amount to be rejected")
	}
}

func TestParticipantValueIsDecimalString(t *testing.T) {
	codec := jsonCodec{}

	var req api.CreateExpenseRequest
	body := `{"amount":"30.00","strategy":"EXACT","participants":[{"userId":"bob","value":"12.5"},{"userId":"carol","value":null}]}`
	if err := codec.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got := req.Participants[0].Value.String(); got != "12.5" {
		t.Errorf("value = %s, want 12.5", got)
	}
	if !req.Participants[1].Value.IsZero() {
		t.Errorf("null value = %s, want 0", req.Participants[1].Value)
	}

	var bad api.CreateExpenseRequest
	if err := codec.Unmarshal([]byte(`{"participants":[{"userId":"bob","value":12.5}]}`), &bad); err == nil {
		t.Error("expected unquoted participant value to be rejected")
	}

	data, err := codec.Marshal(&api.Participant{UserID: "bob", Value: api.NewDecimal(req.Participants[0].Value.Decimal)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if got, want := string(data), `{"userId":"bob","value":"12.5"}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}
