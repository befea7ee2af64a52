package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCents int64
		wantErr   bool
	}{
		{"integer", "500", 50000, false},
		{"comma decimal", "500,50", 50050, false},
		{"dot decimal", "25.50", 2550, false},
		{"whitespace", "  120,00  ", 12000, false},
		{"zero", "0", 0, true},
		{"zero with decimals", "0,00", 0, true},
		{"negative", "-10", 0, true},
		{"not a number", "abc", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMoney(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got.Cents != tt.wantCents {
				t.Errorf("ParseMoney(%q) = %d cents, want %d", tt.input, got.Cents, tt.wantCents)
			}
		})
	}
}

func TestMoneyFromDecimal_Rounding(t *testing.T) {
	tests := []struct {
		input     string
		wantCents int64
	}{
		{"25.50", 2550},
		{"25.505", 2551}, // half-up on the third decimal
		{"25.504", 2550},
		{"0.01", 1},
	}

	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.input)
		if err != nil {
			t.Fatalf("decimal.NewFromString(%q) error = %v", tt.input, err)
		}
		if got := MoneyFromDecimal(d); got.Cents != tt.wantCents {
			t.Errorf("MoneyFromDecimal(%s) = %d cents, want %d", tt.input, got.Cents, tt.wantCents)
		}
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{2550, "25.50"},
		{100, "1.00"},
		{5, "0.05"},
		{123456, "1234.56"},
		{0, "0.00"},
		{-1500, "-15.00"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoney_Add(t *testing.T) {
	a := Money{Cents: 1050}
	b := Money{Cents: 950}
	if got := a.Add(b); got.Cents != 2000 {
		t.Errorf("Add() = %d, want 2000", got.Cents)
	}
}

func TestMoney_Validate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Errorf("Validate() on positive amount = %v, want nil", err)
	}
	if err := (Money{}).Validate(); err == nil {
		t.Error("Validate() on zero amount = nil, want error")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Error("Validate() on negative amount = nil, want error")
	}
}
