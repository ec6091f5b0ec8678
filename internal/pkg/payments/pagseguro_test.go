package payments

import (
	"encoding/xml"
	"testing"
)

func TestPagSeguroTransactionParse(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="ISO-8859-1" standalone="yes"?>
<transaction>
	<code>9E884542-81B3-4419-9A75-BCC6FB495EF1</code>
	<reference>42</reference>
	<status>3</status>
	<grossAmount>240.00</grossAmount>
</transaction>`)

	var tx PagSeguroTransaction
	if err := xml.Unmarshal(raw, &tx); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if tx.Code != "9E884542-81B3-4419-9A75-BCC6FB495EF1" {
		t.Fatalf("unexpected code %q", tx.Code)
	}
	if !tx.IsPaid() {
		t.Fatalf("expected status 3 to count as paid")
	}
	id, err := tx.PaymentID()
	if err != nil {
		t.Fatalf("unexpected reference error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected payment id 42, got %d", id)
	}
	if tx.GrossAmount != 240.00 {
		t.Fatalf("unexpected gross amount %v", tx.GrossAmount)
	}
}

func TestPagSeguroIsPaid(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{status: 1, want: false}, // awaiting payment
		{status: 2, want: false}, // under review
		{status: 3, want: true},  // paid
		{status: 4, want: true},  // available
		{status: 6, want: false}, // refunded
		{status: 7, want: false}, // canceled
	}

	for _, tt := range tests {
		tx := &PagSeguroTransaction{Status: tt.status}
		if got := tx.IsPaid(); got != tt.want {
			t.Fatalf("IsPaid() with status %d = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestPagSeguroPaymentIDBadReference(t *testing.T) {
	for _, ref := range []string{"", "abc", "12x"} {
		tx := &PagSeguroTransaction{Reference: ref}
		if _, err := tx.PaymentID(); err == nil {
			t.Fatalf("expected reference %q to be rejected", ref)
		}
	}
}
