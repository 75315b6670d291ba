package models

import (
	"encoding/json"
	"testing"
)

func TestAmountAcceptsBothWireShapes(t *testing.T) {
	t.Parallel()

	var a struct {
		Agreed Amount `json:"agreed_amount"`
	}

	if err := json.Unmarshal([]byte(`{"agreed_amount":"1250.50"}`), &a); err != nil {
		t.Fatal(err)
	}
	if a.Agreed != 1250.50 {
		t.Fatalf("decimal string: got %v", a.Agreed)
	}

	if err := json.Unmarshal([]byte(`{"agreed_amount":750}`), &a); err != nil {
		t.Fatal(err)
	}
	if a.Agreed != 750 {
		t.Fatalf("number: got %v", a.Agreed)
	}

	if err := json.Unmarshal([]byte(`{"agreed_amount":null}`), &a); err != nil {
		t.Fatal(err)
	}
	if a.Agreed != 0 {
		t.Fatalf("null: got %v", a.Agreed)
	}
}

func TestAmountRejectsGarbage(t *testing.T) {
	t.Parallel()

	var a Amount
	if err := json.Unmarshal([]byte(`"not-a-number"`), &a); err == nil {
		t.Fatal("expected parse error")
	}
}
